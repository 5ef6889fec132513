package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/search"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a repository over the "products" collection of db.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

// CreateIndexes creates the indexes backing slug lookups and catalog filters.
func (m *MongoProductRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "is_published", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func criteriaFilter(c search.Criteria) bson.M {
	filter := bson.M{"is_published": true}
	if text, ok := c.TextQuery(); ok {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"}
	}
	if category, ok := c.CategoryFilter(); ok {
		filter["category"] = category
	}
	if tag, ok := c.TagFilter(); ok {
		filter["tags"] = tag
	}
	if b, ok := c.Bucket(); ok {
		filter["price"] = bson.M{"$gte": b.Low, "$lte": b.High}
	}
	if rating, ok := c.MinRating(); ok {
		filter["avg_rating"] = bson.M{"$gte": rating}
	}
	return filter
}

func sortDocument(key search.SortKey) bson.D {
	dir := 1
	if key.Desc {
		dir = -1
	}
	field := key.Field
	if field == search.FieldID {
		return bson.D{{Key: "_id", Value: dir}}
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

// FindProducts runs the filtered, sorted and paginated catalog query.
func (m *MongoProductRepository) FindProducts(ctx context.Context, c search.Criteria, page, pageSize int) (*search.Result, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	key, err := c.SortKey()
	if err != nil {
		return nil, err
	}
	return m.page(ctx, criteriaFilter(c), key, page, pageSize)
}

// List returns every product for the admin panel, newest first.
func (m *MongoProductRepository) List(ctx context.Context, page, pageSize int) (*search.Result, error) {
	return m.page(ctx, bson.M{}, search.SortKey{Field: search.FieldCreatedAt, Desc: true}, page, pageSize)
}

func (m *MongoProductRepository) page(ctx context.Context, filter bson.M, key search.SortKey, page, pageSize int) (*search.Result, error) {
	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	window := search.Paginate(int(total), page, pageSize)
	if !window.InRange() {
		return search.NewResult(window, nil), nil
	}

	opts := options.Find().
		SetSort(sortDocument(key)).
		SetSkip(int64(window.Skip)).
		SetLimit(int64(window.Size))

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return search.NewResult(window, products), nil
}

func (m *MongoProductRepository) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := m.collection.Distinct(ctx, field, bson.M{"is_published": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListCategories returns the distinct categories of published products.
func (m *MongoProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	return m.distinct(ctx, "category")
}

// ListTags returns the distinct tags of published products.
func (m *MongoProductRepository) ListTags(ctx context.Context) ([]string, error) {
	return m.distinct(ctx, "tags")
}

func (m *MongoProductRepository) findOne(ctx context.Context, filter bson.M, ref string) (*models.Product, error) {
	var product models.Product
	if err := m.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFoundError("product", ref)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", ref, err)
	}
	return &product, nil
}

// GetByID returns the product with id.
func (m *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return m.findOne(ctx, bson.M{"_id": id}, id)
}

// GetBySlug returns the product with slug.
func (m *MongoProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return m.findOne(ctx, bson.M{"slug": slug}, slug)
}

// Create inserts a new product document.
func (m *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.NewValidationError("slug", fmt.Sprintf("%q is already used", product.Slug))
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update replaces an existing product document.
func (m *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	existing, err := m.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.NewValidationError("slug", fmt.Sprintf("%q is already used", product.Slug))
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NewNotFoundError("product", product.ID)
	}
	return nil
}

// Delete removes the product with id.
func (m *MongoProductRepository) Delete(ctx context.Context, id string) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NewNotFoundError("product", id)
	}
	return nil
}
