package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/search"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository(seed ...models.Product) *MockProductRepository {
	r := &MockProductRepository{
		products: make(map[string]models.Product),
	}
	for _, p := range seed {
		r.products[p.ID] = p
	}
	return r
}

func (r *MockProductRepository) snapshot() []models.Product {
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList
}

// FindProducts resolves c against every stored product.
func (r *MockProductRepository) FindProducts(_ context.Context, c search.Criteria, page, pageSize int) (*search.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return search.Resolve(r.snapshot(), c, page, pageSize)
}

// List returns every product, newest first.
func (r *MockProductRepository) List(_ context.Context, page, pageSize int) (*search.Result, error) {
	r.mu.RLock()
	all := r.snapshot()
	r.mu.RUnlock()

	search.SortProducts(all, search.SortKey{Field: search.FieldCreatedAt, Desc: true})
	window := search.Paginate(len(all), page, pageSize)
	if !window.InRange() {
		return search.NewResult(window, nil), nil
	}
	end := window.Skip + window.Size
	if end > len(all) {
		end = len(all)
	}
	return search.NewResult(window, all[window.Skip:end]), nil
}

// ListCategories returns the distinct categories of published products.
func (r *MockProductRepository) ListCategories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range r.products {
		if _, ok := seen[p.Category]; ok || !p.IsPublished {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

// ListTags returns the distinct tags of published products.
func (r *MockProductRepository) ListTags(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range r.products {
		if !p.IsPublished {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.NewNotFoundError("product", id)
	}
	return &product, nil
}

// GetBySlug returns a product by its slug.
func (r *MockProductRepository) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, apperr.NewNotFoundError("product", slug)
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for _, p := range r.products {
		if p.Slug == product.Slug {
			return apperr.NewValidationError("slug", "\""+product.Slug+"\" is already used")
		}
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperr.NewNotFoundError("product", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperr.NewNotFoundError("product", id)
	}
	delete(r.products, id)
	return nil
}
