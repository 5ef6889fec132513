package pricing_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/pricing"

	"github.com/stretchr/testify/assert"
)

var (
	inr = models.Currency{Name: "Indian Rupees", Code: "INR", Symbol: "₹", ConvertRate: 1}
	usd = models.Currency{Name: "US Dollar", Code: "USD", Symbol: "$", ConvertRate: 0.012}
)

func TestDisplayPrice(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency models.Currency
		want     float64
	}{
		{"half-up at two decimals", 999.995, inr, 1000.00},
		{"below half rounds down", 10.004, inr, 10.00},
		{"converted then rounded", 1234.5, usd, 14.81},
		{"zero rate treated as base", 50, models.Currency{Code: "XXX"}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.DisplayPrice(tt.amount, tt.currency))
		})
	}
}

func TestFormatAndSplit(t *testing.T) {
	assert.Equal(t, "₹1000.00", pricing.Format(999.995, inr))
	assert.Equal(t, "$0.60", pricing.Format(50, usd))

	i, f := pricing.Split(12.5, inr)
	assert.Equal(t, "12", i)
	assert.Equal(t, "5", f)

	i, f = pricing.Split(40, inr)
	assert.Equal(t, "40", i)
	assert.Equal(t, "", f)
}

func TestDiscount(t *testing.T) {
	percent, show := pricing.Discount(500, 1000)
	assert.Equal(t, 50, percent)
	assert.True(t, show)

	percent, show = pricing.Discount(666, 1000)
	assert.Equal(t, 33, percent)
	assert.True(t, show)

	percent, show = pricing.Discount(1200, 1000)
	assert.Equal(t, -20, percent)
	assert.False(t, show, "negative discounts are suppressed")

	percent, show = pricing.Discount(0.5, 1)
	assert.Equal(t, 50, percent, "computed on base amounts, not on rounded display amounts")
	assert.True(t, show)
	assert.Equal(t, pricing.DisplayPrice(0.5, usd), pricing.DisplayPrice(1, usd))

	_, show = pricing.Discount(500, 0)
	assert.False(t, show)
	assert.False(t, pricing.ShowListPrice(500, 0))

	_, show = pricing.Discount(500, 500)
	assert.False(t, show)
	assert.False(t, pricing.ShowListPrice(500, 500))
	assert.True(t, pricing.ShowListPrice(500, 800))
}

func TestFreeShipping(t *testing.T) {
	ok, remaining := pricing.FreeShipping(30, 35)
	assert.False(t, ok)
	assert.Equal(t, 5.0, remaining)

	ok, remaining = pricing.FreeShipping(35, 35)
	assert.True(t, ok)
	assert.Zero(t, remaining)

	ok, remaining = pricing.FreeShipping(80, 35)
	assert.True(t, ok)
	assert.Zero(t, remaining)

	_, remaining = pricing.FreeShipping(34.9, 35)
	assert.Equal(t, 0.1, remaining)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1290), pricing.ToMinorUnits(12.9))
	assert.Equal(t, int64(1150), pricing.ToMinorUnits(11.5))
	assert.Equal(t, int64(33), pricing.ToMinorUnits(0.1+0.2+0.03))
	assert.Equal(t, 12.9, pricing.FromMinorUnits(1290))
}

func TestSumAndLineTotal(t *testing.T) {
	assert.Equal(t, 0.3, pricing.Sum(0.1, 0.2))
	assert.Equal(t, 29.97, pricing.LineTotal(9.99, 3))
	assert.Zero(t, pricing.Sum())
}

func TestCurrencyTableLookup(t *testing.T) {
	table := pricing.CurrencyTable{Currencies: []models.Currency{inr, usd}, Default: "INR"}
	assert.Equal(t, usd, table.Lookup("usd"))
	assert.Equal(t, inr, table.Lookup("EUR"))
	assert.Equal(t, inr, table.Lookup(""))

	empty := pricing.CurrencyTable{}
	assert.Equal(t, 1.0, empty.Lookup("USD").ConvertRate)

	noDefault := pricing.CurrencyTable{Currencies: []models.Currency{usd}, Default: "GBP"}
	assert.Equal(t, usd, noDefault.Lookup("GBP"))

	table = pricing.NewCurrencyTable(models.DefaultSetting())
	assert.Equal(t, "INR", table.Lookup("").Code)
}

func TestOrderTotals(t *testing.T) {
	nextFive := models.DeliveryDate{Name: "Next 5 Days", ShippingPrice: 4.9, FreeShippingMinPrice: 35}
	tomorrow := models.DeliveryDate{Name: "Tomorrow", ShippingPrice: 12.9, FreeShippingMinPrice: 0}

	totals := pricing.OrderTotals(100, nextFive, 0.15)
	assert.Equal(t, pricing.Totals{ItemsPrice: 100, ShippingPrice: 0, TaxPrice: 15, TotalPrice: 115}, totals)

	totals = pricing.OrderTotals(20, nextFive, 0.15)
	assert.Equal(t, 4.9, totals.ShippingPrice)
	assert.Equal(t, 3.0, totals.TaxPrice)
	assert.Equal(t, 27.9, totals.TotalPrice)

	totals = pricing.OrderTotals(100, tomorrow, 0.15)
	assert.Equal(t, 12.9, totals.ShippingPrice, "a zero threshold never waives shipping")
	assert.Equal(t, 127.9, totals.TotalPrice)
}
