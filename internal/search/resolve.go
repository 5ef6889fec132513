package search

import (
	"storefront/internal/models"
)

// Page is the pagination window of a listing.
type Page struct {
	Number        int `json:"page"`
	Size          int `json:"pageSize"`
	Skip          int `json:"-"`
	TotalProducts int `json:"totalProducts"`
	TotalPages    int `json:"totalPages"`
	From          int `json:"from"`
	To            int `json:"to"`
}

// Paginate computes the window for page of size over total results.
// Pages below 1 are page 1; a page past the end is an empty window whose Skip is total.
func Paginate(total, page, size int) Page {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}
	skip := total
	if page <= totalPages {
		skip = (page - 1) * size
	}
	return Page{
		Number:        page,
		Size:          size,
		Skip:          skip,
		TotalProducts: total,
		TotalPages:    totalPages,
	}
}

// InRange reports whether the window holds any results.
func (p Page) InRange() bool {
	return p.Skip < p.TotalProducts
}

// WithCount fills From and To once the number of returned items is known.
func (p Page) WithCount(n int) Page {
	if n <= 0 {
		p.From, p.To = 0, 0
		return p
	}
	p.From = p.Skip + 1
	p.To = p.Skip + n
	return p
}

// Result is a resolved product listing.
type Result struct {
	Products      []models.Product `json:"products"`
	TotalProducts int              `json:"totalProducts"`
	TotalPages    int              `json:"totalPages"`
	From          int              `json:"from"`
	To            int              `json:"to"`
	Page          int              `json:"page"`
}

// NewResult assembles a result from the window and the page's products.
func NewResult(p Page, products []models.Product) *Result {
	if products == nil {
		products = []models.Product{}
	}
	p = p.WithCount(len(products))
	return &Result{
		Products:      products,
		TotalProducts: p.TotalProducts,
		TotalPages:    p.TotalPages,
		From:          p.From,
		To:            p.To,
		Page:          p.Number,
	}
}

// Resolve filters, orders and paginates products in memory.
func Resolve(products []models.Product, c Criteria, page, size int) (*Result, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	key, err := c.SortKey()
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			filtered = append(filtered, p)
		}
	}
	SortProducts(filtered, key)

	window := Paginate(len(filtered), page, size)
	if !window.InRange() {
		return NewResult(window, nil), nil
	}
	end := window.Skip + window.Size
	if end > len(filtered) {
		end = len(filtered)
	}
	return NewResult(window, filtered[window.Skip:end]), nil
}
