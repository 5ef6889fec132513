// Package pricing converts and formats prices. Stored prices are always in the
// base currency; conversion happens once, at display time.
package pricing

import (
	"strings"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies when the configuration does not override it.
const DefaultTaxRate = 0.15

// baseCurrency is used when no currency table is available.
var baseCurrency = models.Currency{Name: "Indian Rupees", Code: "INR", Symbol: "₹", ConvertRate: 1}

// Round2 rounds x half-up to two decimal places.
func Round2(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}

// DisplayPrice converts a base-currency amount into currency and rounds the result.
func DisplayPrice(amount float64, currency models.Currency) float64 {
	rate := currency.ConvertRate
	if rate <= 0 {
		rate = 1
	}
	f, _ := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Round(2).Float64()
	return f
}

// Format renders a base-currency amount in currency, e.g. "₹1000.00".
func Format(amount float64, currency models.Currency) string {
	return currency.Symbol + decimal.NewFromFloat(DisplayPrice(amount, currency)).StringFixed(2)
}

// Split returns the integer and fractional digits of a converted amount as the price
// widget renders them. The fraction is empty for whole amounts.
func Split(amount float64, currency models.Currency) (string, string) {
	s := decimal.NewFromFloat(DisplayPrice(amount, currency)).String()
	i, f, _ := strings.Cut(s, ".")
	return i, f
}

// Discount returns the discount percentage of price against listPrice and whether a badge
// should be shown. Only positive discounts are shown. Both prices are base-currency amounts,
// so the percentage is the same in every display currency.
func Discount(price, listPrice float64) (int, bool) {
	if listPrice <= 0 || listPrice == price {
		return 0, false
	}
	ratio := decimal.NewFromFloat(price).Div(decimal.NewFromFloat(listPrice)).Mul(decimal.NewFromInt(100))
	percent := int(decimal.NewFromInt(100).Sub(ratio).Round(0).IntPart())
	return percent, percent > 0
}

// ShowListPrice reports whether the struck-through list price is rendered next to price.
func ShowListPrice(price, listPrice float64) bool {
	return listPrice > 0 && listPrice != price
}

// FreeShipping reports whether itemsPrice reaches minPrice and how much is still missing.
// The remaining amount is never negative.
func FreeShipping(itemsPrice, minPrice float64) (bool, float64) {
	if itemsPrice >= minPrice {
		return true, 0
	}
	f, _ := decimal.NewFromFloat(minPrice).Sub(decimal.NewFromFloat(itemsPrice)).Round(2).Float64()
	return false, f
}

// ToMinorUnits converts an amount to its smallest denomination (paise, cents).
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts minor units back to a decimal amount.
func FromMinorUnits(units int64) float64 {
	f, _ := decimal.New(units, -2).Float64()
	return f
}

// Sum adds amounts without accumulating binary rounding error and rounds the total.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// LineTotal is unitPrice × quantity, rounded.
func LineTotal(unitPrice float64, quantity int) float64 {
	f, _ := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return f
}
