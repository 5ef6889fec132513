package search

import (
	"sort"

	"storefront/internal/models"
)

// Sort values.
const (
	SortPriceLowToHigh    = "price-low-to-high"
	SortPriceHighToLow    = "price-high-to-low"
	SortNewestArrivals    = "newest-arrivals"
	SortAvgCustomerReview = "avg-customer-review"
	SortBestSelling       = "best-selling"

	DefaultSort = SortBestSelling
)

// Sortable fields. The names match both the SQL columns and the document keys.
const (
	FieldPrice     = "price"
	FieldCreatedAt = "created_at"
	FieldAvgRating = "avg_rating"
	FieldNumSales  = "num_sales"
	FieldID        = "id"
)

// SortKey is the primary ordering of a listing. Every store breaks ties by ID ascending.
type SortKey struct {
	Field string
	Desc  bool
}

// SortOrder is one entry of the sort selector.
type SortOrder struct {
	Value string  `json:"value"`
	Name  string  `json:"name"`
	Key   SortKey `json:"-"`
}

// SortOrders is the fixed enumeration of supported orderings.
var SortOrders = []SortOrder{
	{Value: SortPriceLowToHigh, Name: "Price: Low to high", Key: SortKey{Field: FieldPrice}},
	{Value: SortPriceHighToLow, Name: "Price: High to low", Key: SortKey{Field: FieldPrice, Desc: true}},
	{Value: SortNewestArrivals, Name: "Newest arrivals", Key: SortKey{Field: FieldCreatedAt, Desc: true}},
	{Value: SortAvgCustomerReview, Name: "Avg. customer review", Key: SortKey{Field: FieldAvgRating, Desc: true}},
	{Value: SortBestSelling, Name: "Best selling", Key: SortKey{Field: FieldNumSales, Desc: true}},
}

// LookupSort finds a sort order by value.
func LookupSort(value string) (SortOrder, bool) {
	for _, o := range SortOrders {
		if o.Value == value {
			return o, true
		}
	}
	return SortOrder{}, false
}

// Less orders a before b under key, falling back to ID.
func (k SortKey) Less(a, b models.Product) bool {
	if c := k.compare(a, b); c != 0 {
		if k.Desc {
			return c > 0
		}
		return c < 0
	}
	return a.ID < b.ID
}

func (k SortKey) compare(a, b models.Product) int {
	switch k.Field {
	case FieldPrice:
		return cmpFloat(a.Price, b.Price)
	case FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case FieldAvgRating:
		return cmpFloat(a.AvgRating, b.AvgRating)
	case FieldNumSales:
		return a.NumSales - b.NumSales
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortProducts orders products in place under key.
func SortProducts(products []models.Product, key SortKey) {
	sort.SliceStable(products, func(i, j int) bool {
		return key.Less(products[i], products[j])
	})
}
