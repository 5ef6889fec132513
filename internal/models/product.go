package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Product represents a catalog entry in the store.
type Product struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id" validate:"omitempty,uuid"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;type:varchar(160)" bson:"slug" validate:"omitempty,max=160"`
	Name         string    `json:"name" gorm:"index" bson:"name" validate:"required,min=3,max=120"`
	Category     string    `json:"category" gorm:"index;type:varchar(100)" bson:"category" validate:"required,max=100"`
	Brand        string    `json:"brand" bson:"brand" validate:"omitempty,max=100"`
	Description  string    `json:"description" bson:"description" validate:"omitempty,max=2000"`
	Images       []string  `json:"images" gorm:"serializer:json;type:text" bson:"images" validate:"omitempty,dive,url"`
	Tags         Tags      `json:"tags" gorm:"type:text" bson:"tags" validate:"omitempty,dive,required,excludesall=|"`
	Colors       []string  `json:"colors" gorm:"serializer:json;type:text" bson:"colors"`
	Sizes        []string  `json:"sizes" gorm:"serializer:json;type:text" bson:"sizes"`
	Price        float64   `json:"price" bson:"price" validate:"gte=0"`
	ListPrice    float64   `json:"listPrice" bson:"list_price" validate:"gte=0"`
	CountInStock int       `json:"countInStock" bson:"count_in_stock" validate:"gte=0"`
	AvgRating    float64   `json:"avgRating" bson:"avg_rating" validate:"gte=0,lte=5"`
	NumReviews   int       `json:"numReviews" bson:"num_reviews" validate:"gte=0"`
	NumSales     int       `json:"numSales" bson:"num_sales" validate:"gte=0"`
	IsPublished  bool      `json:"isPublished" gorm:"index" bson:"is_published"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// Tags is a set of product labels. In SQL stores it is kept as a single
// `|a|b|` column so that membership is a LIKE '%|tag|%' lookup.
type Tags []string

// Has reports whether tag is one of the labels.
func (t Tags) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "", nil
	}
	return "|" + strings.Join(t, "|") + "|", nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
	s = strings.Trim(s, "|")
	if s == "" {
		*t = nil
		return nil
	}
	*t = strings.Split(s, "|")
	return nil
}

// TagPattern returns the LIKE pattern matching rows that carry tag.
func TagPattern(tag string) string {
	return "%|" + tag + "|%"
}
