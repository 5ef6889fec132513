// Package search resolves storefront filter criteria into product queries,
// deterministic orderings and pagination windows.
package search

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// All is the sentinel for an unset filter field.
const All = "all"

// ErrInvalidSortKey is returned for a sort value outside the fixed enumeration.
var ErrInvalidSortKey = fmt.Errorf("unknown sort key: %w", &apperr.ValidationError{Field: "sort", Reason: "not one of the supported sort orders"})

// Criteria is the set of search, filter and sort parameters behind a product listing.
type Criteria struct {
	Query    string `json:"q"`
	Category string `json:"category"`
	Tag      string `json:"tag"`
	Price    string `json:"price"`
	Rating   string `json:"rating"`
	Sort     string `json:"sort"`
}

// DefaultCriteria returns the cleared criteria.
func DefaultCriteria() Criteria {
	return Criteria{
		Query:    All,
		Category: All,
		Tag:      All,
		Price:    All,
		Rating:   All,
		Sort:     DefaultSort,
	}
}

// IsCleared reports whether no filter is active. Sort order is not a filter.
func (c Criteria) IsCleared() bool {
	return !c.hasQuery() &&
		isAll(c.Category) &&
		isAll(c.Tag) &&
		isAll(c.Price) &&
		isAll(c.Rating)
}

// HasActiveFilter reports whether at least one filter narrows the listing.
func (c Criteria) HasActiveFilter() bool {
	return !c.IsCleared()
}

func (c Criteria) hasQuery() bool {
	q := strings.TrimSpace(c.Query)
	return q != "" && q != All
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Normalize fills empty fields with their defaults.
func (c Criteria) Normalize() Criteria {
	if strings.TrimSpace(c.Query) == "" {
		c.Query = All
	}
	if c.Category == "" {
		c.Category = All
	}
	if c.Tag == "" {
		c.Tag = All
	}
	if c.Price == "" {
		c.Price = All
	}
	if c.Rating == "" {
		c.Rating = All
	}
	if c.Sort == "" {
		c.Sort = DefaultSort
	}
	return c
}

// Validate checks the structured fields without falling back to defaults.
func (c Criteria) Validate() error {
	c = c.Normalize()
	if _, ok := LookupSort(c.Sort); !ok {
		return ErrInvalidSortKey
	}
	if !isAll(c.Price) {
		if _, err := ParsePriceBucket(c.Price); err != nil {
			return err
		}
	}
	if !isAll(c.Rating) {
		if _, err := parseRating(c.Rating); err != nil {
			return err
		}
	}
	return nil
}

// Bucket returns the parsed price bucket, if one is selected.
func (c Criteria) Bucket() (PriceBucket, bool) {
	if isAll(c.Price) {
		return PriceBucket{}, false
	}
	b, err := ParsePriceBucket(c.Price)
	if err != nil {
		return PriceBucket{}, false
	}
	return b, true
}

// MinRating returns the rating threshold, if one is selected.
func (c Criteria) MinRating() (float64, bool) {
	if isAll(c.Rating) {
		return 0, false
	}
	r, err := parseRating(c.Rating)
	if err != nil {
		return 0, false
	}
	return r, true
}

// TextQuery returns the free-text query, if any.
func (c Criteria) TextQuery() (string, bool) {
	if !c.hasQuery() {
		return "", false
	}
	return strings.TrimSpace(c.Query), true
}

// CategoryFilter returns the selected category, if any.
func (c Criteria) CategoryFilter() (string, bool) {
	return c.Category, !isAll(c.Category)
}

// TagFilter returns the selected tag, if any.
func (c Criteria) TagFilter() (string, bool) {
	return c.Tag, !isAll(c.Tag)
}

// SortKey returns the ordering for the criteria's sort value, or ErrInvalidSortKey.
func (c Criteria) SortKey() (SortKey, error) {
	s := c.Sort
	if s == "" {
		s = DefaultSort
	}
	o, ok := LookupSort(s)
	if !ok {
		return SortKey{}, ErrInvalidSortKey
	}
	return o.Key, nil
}

// Matches reports whether p passes every active predicate. Unpublished products never match.
func (c Criteria) Matches(p models.Product) bool {
	if !p.IsPublished {
		return false
	}
	if q, ok := c.TextQuery(); ok && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
		return false
	}
	if cat, ok := c.CategoryFilter(); ok && p.Category != cat {
		return false
	}
	if tag, ok := c.TagFilter(); ok && !p.Tags.Has(tag) {
		return false
	}
	if b, ok := c.Bucket(); ok && !b.Contains(p.Price) {
		return false
	}
	if r, ok := c.MinRating(); ok && p.AvgRating < r {
		return false
	}
	return true
}

func parseRating(v string) (float64, error) {
	r, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || r < 0 || r > 5 {
		return 0, apperr.NewValidationError("rating", fmt.Sprintf("%q is not a rating between 0 and 5", v))
	}
	return r, nil
}

// ParseCriteria reads criteria and the page number from URL query values.
// Malformed price and rating values fall back to "all" and a malformed page
// falls back to 1; an unknown sort key is rejected with ErrInvalidSortKey.
func ParseCriteria(values url.Values) (Criteria, int, error) {
	c := Criteria{
		Query:    values.Get("q"),
		Category: values.Get("category"),
		Tag:      values.Get("tag"),
		Price:    values.Get("price"),
		Rating:   values.Get("rating"),
		Sort:     values.Get("sort"),
	}.Normalize()

	if !isAll(c.Price) {
		if _, err := ParsePriceBucket(c.Price); err != nil {
			c.Price = All
		}
	}
	if !isAll(c.Rating) {
		if _, err := parseRating(c.Rating); err != nil {
			c.Rating = All
		}
	}

	page := ParsePage(values.Get("page"))

	if _, ok := LookupSort(c.Sort); !ok {
		return c, page, ErrInvalidSortKey
	}
	return c, page, nil
}

// ParsePage parses a 1-based page number. Anything unparseable or below 1 is page 1.
func ParsePage(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// IsInvalidSortKey reports whether err was caused by an unknown sort key.
func IsInvalidSortKey(err error) bool {
	return errors.Is(err, ErrInvalidSortKey)
}
