package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/search"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindProducts runs the filtered, sorted and paginated catalog query.
func (r *GORMProductRepository) FindProducts(ctx context.Context, c search.Criteria, page, pageSize int) (*search.Result, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	key, err := c.SortKey()
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_published = ?", true)
	if text, ok := c.TextQuery(); ok {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(text))+"%")
	}
	if category, ok := c.CategoryFilter(); ok {
		q = q.Where("category = ?", category)
	}
	if tag, ok := c.TagFilter(); ok {
		q = q.Where(`tags LIKE ? ESCAPE '\'`, models.TagPattern(escapeLike(tag)))
	}
	if b, ok := c.Bucket(); ok {
		q = q.Where("price >= ? AND price <= ?", b.Low, b.High)
	}
	if rating, ok := c.MinRating(); ok {
		q = q.Where("avg_rating >= ?", rating)
	}

	return r.page(q.Session(&gorm.Session{}), key, page, pageSize)
}

// List returns every product for the admin panel, newest first.
func (r *GORMProductRepository) List(ctx context.Context, page, pageSize int) (*search.Result, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Session(&gorm.Session{})
	return r.page(q, search.SortKey{Field: search.FieldCreatedAt, Desc: true}, page, pageSize)
}

func (r *GORMProductRepository) page(q *gorm.DB, key search.SortKey, page, pageSize int) (*search.Result, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	window := search.Paginate(int(total), page, pageSize)
	if !window.InRange() {
		return search.NewResult(window, nil), nil
	}

	var products []models.Product
	err := q.Order(orderClause(key)).
		Order("id ASC").
		Offset(window.Skip).
		Limit(window.Size).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return search.NewResult(window, products), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func orderClause(key search.SortKey) string {
	if key.Desc {
		return key.Field + " DESC"
	}
	return key.Field + " ASC"
}

// ListCategories returns the distinct categories of published products.
func (r *GORMProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("is_published = ?", true).
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListTags returns the distinct tags of published products.
func (r *GORMProductRepository) ListTags(ctx context.Context) ([]string, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Select("tags").
		Where("is_published = ? AND tags <> ''", true).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range rows {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetBySlug retrieves a single product by its slug from the database.
func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("product", slug)
		}
		return nil, fmt.Errorf("failed to get product by slug %s: %w", slug, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.NewValidationError("slug", fmt.Sprintf("%q is already used", product.Slug))
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(product)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperr.NewValidationError("slug", fmt.Sprintf("%q is already used", product.Slug))
		}
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError("product", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError("product", id)
	}
	return nil
}
