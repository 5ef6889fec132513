package pricing

import (
	"strings"

	"storefront/internal/models"
)

// CurrencyTable is the set of display currencies with its default.
type CurrencyTable struct {
	Currencies []models.Currency
	Default    string
}

// NewCurrencyTable builds a table from the site settings.
func NewCurrencyTable(s models.Setting) CurrencyTable {
	return CurrencyTable{Currencies: s.AvailableCurrencies, Default: s.DefaultCurrency}
}

// Lookup returns the currency for code, falling back to the default currency and then to
// the base currency, so exactly one currency is always active.
func (t CurrencyTable) Lookup(code string) models.Currency {
	if c, ok := t.find(code); ok {
		return c
	}
	if c, ok := t.find(t.Default); ok {
		return c
	}
	if len(t.Currencies) > 0 {
		return t.Currencies[0]
	}
	return baseCurrency
}

func (t CurrencyTable) find(code string) (models.Currency, bool) {
	if code == "" {
		return models.Currency{}, false
	}
	for _, c := range t.Currencies {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return models.Currency{}, false
}

// Totals are the aggregate prices of an order, in the base currency.
type Totals struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

// OrderTotals prices an order. Shipping is waived when the delivery option has a positive
// free-shipping threshold and itemsPrice reaches it.
func OrderTotals(itemsPrice float64, d models.DeliveryDate, taxRate float64) Totals {
	shipping := d.ShippingPrice
	if d.FreeShippingMinPrice > 0 && itemsPrice >= d.FreeShippingMinPrice {
		shipping = 0
	}
	tax := Round2(itemsPrice * taxRate)
	return Totals{
		ItemsPrice:    Round2(itemsPrice),
		ShippingPrice: Round2(shipping),
		TaxPrice:      tax,
		TotalPrice:    Sum(itemsPrice, shipping, tax),
	}
}
