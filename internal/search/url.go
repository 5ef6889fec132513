package search

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// Override carries the fields a filter link changes. Empty strings and a zero page mean "keep".
type Override struct {
	Query    string
	Category string
	Tag      string
	Price    string
	Rating   string
	Sort     string
	Page     int
}

// FilterURL builds the canonical listing URL for c with o applied. All six fields are always
// written in a fixed order, defaults included. The page is dropped whenever o changes a
// non-page field, so a new filter always starts from the first page.
func FilterURL(c Criteria, page int, o Override) string {
	c = c.Normalize()
	next := c
	apply := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	apply(&next.Query, o.Query)
	apply(&next.Category, o.Category)
	apply(&next.Tag, o.Tag)
	apply(&next.Price, o.Price)
	apply(&next.Rating, o.Rating)
	apply(&next.Sort, o.Sort)

	if next != c {
		page = 0
	}
	if o.Page > 0 {
		page = o.Page
	}

	var b strings.Builder
	b.WriteString("/search?")
	pairs := [][2]string{
		{"q", next.Query},
		{"category", next.Category},
		{"tag", next.Tag},
		{"price", next.Price},
		{"rating", next.Rating},
		{"sort", next.Sort},
	}
	for i, kv := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	if page > 0 {
		b.WriteString("&page=")
		b.WriteString(strconv.Itoa(page))
	}
	return b.String()
}

// ClearURL is the listing URL with every filter reset.
func ClearURL() string {
	return "/search"
}

// ToSlug lower-cases s and joins its alphanumeric runs with '-'.
func ToSlug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}
