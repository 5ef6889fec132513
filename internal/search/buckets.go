package search

import (
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/apperr"
)

// PriceBucket is a named inclusive price range.
type PriceBucket struct {
	Name  string  `json:"name"`
	Value string  `json:"value"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// Contains reports whether Low <= price <= High.
func (b PriceBucket) Contains(price float64) bool {
	return b.Low <= price && price <= b.High
}

// PriceBuckets are the ranges offered in the price filter.
var PriceBuckets = []PriceBucket{
	{Name: "₹100 - ₹500", Value: "100-500", Low: 100, High: 500},
	{Name: "₹500 - ₹1000", Value: "500-1000", Low: 500, High: 1000},
	{Name: "₹1000 - ₹5000", Value: "1000-5000", Low: 1000, High: 5000},
	{Name: "₹5000+", Value: "5000-100000", Low: 5000, High: 100000},
}

// ParsePriceBucket parses a "<low>-<high>" value. Values outside PriceBuckets are accepted
// as long as they are well formed.
func ParsePriceBucket(value string) (PriceBucket, error) {
	for _, b := range PriceBuckets {
		if b.Value == value {
			return b, nil
		}
	}

	lo, hi, ok := strings.Cut(value, "-")
	if !ok {
		return PriceBucket{}, apperr.NewValidationError("price", fmt.Sprintf("%q is not a <low>-<high> range", value))
	}
	low, errLow := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	high, errHigh := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if errLow != nil || errHigh != nil || low < 0 || low > high {
		return PriceBucket{}, apperr.NewValidationError("price", fmt.Sprintf("%q is not a <low>-<high> range", value))
	}
	return PriceBucket{Name: value, Value: value, Low: low, High: high}, nil
}

// RatingOptions are the minimum-rating filters offered in the listing.
var RatingOptions = []string{"4"}
