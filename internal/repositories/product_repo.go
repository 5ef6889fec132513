package repositories

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/search"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// FindProducts returns the published products matching c, ordered by its sort key
	// and cut to the requested page.
	FindProducts(ctx context.Context, c search.Criteria, page, pageSize int) (*search.Result, error)
	// ListCategories returns the distinct categories of published products.
	ListCategories(ctx context.Context) ([]string, error)
	// ListTags returns the distinct tags of published products.
	ListTags(ctx context.Context) ([]string, error)
	// List returns every product, published or not, newest first.
	List(ctx context.Context, page, pageSize int) (*search.Result, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
