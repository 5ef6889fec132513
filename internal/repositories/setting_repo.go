package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// SettingID is the key of the single settings record.
const SettingID = "site"

// SettingRepository stores the site-wide settings record.
type SettingRepository interface {
	// Get returns the stored settings, or a NotFoundError when none were saved yet.
	Get(ctx context.Context) (*models.Setting, error)
	// Save creates or replaces the settings record.
	Save(ctx context.Context, setting *models.Setting) error
}

// GORMSettingRepository is a GORM implementation of SettingRepository.
type GORMSettingRepository struct {
	db *gorm.DB
}

// NewGORMSettingRepository creates a new instance of GORMSettingRepository.
func NewGORMSettingRepository(db *gorm.DB) *GORMSettingRepository {
	return &GORMSettingRepository{db: db}
}

// Get loads the settings row.
func (r *GORMSettingRepository) Get(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).First(&setting, "id = ?", SettingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("setting", SettingID)
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &setting, nil
}

// Save upserts the settings row.
func (r *GORMSettingRepository) Save(ctx context.Context, setting *models.Setting) error {
	setting.ID = SettingID
	if err := r.db.WithContext(ctx).Save(setting).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// MongoSettingRepository is a MongoDB implementation of SettingRepository.
type MongoSettingRepository struct {
	collection *mongo.Collection
}

// NewMongoSettingRepository creates a repository over the "settings" collection of db.
func NewMongoSettingRepository(db *mongo.Database) *MongoSettingRepository {
	return &MongoSettingRepository{collection: db.Collection("settings")}
}

// Get loads the settings document.
func (m *MongoSettingRepository) Get(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	if err := m.collection.FindOne(ctx, bson.M{"_id": SettingID}).Decode(&setting); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFoundError("setting", SettingID)
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &setting, nil
}

// Save upserts the settings document.
func (m *MongoSettingRepository) Save(ctx context.Context, setting *models.Setting) error {
	now := time.Now().UTC()
	setting.ID = SettingID
	if setting.CreatedAt.IsZero() {
		setting.CreatedAt = now
	}
	setting.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": SettingID}, setting, opts); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// MockSettingRepository is an in-memory implementation of SettingRepository.
type MockSettingRepository struct {
	setting *models.Setting
	mu      sync.RWMutex
}

// NewMockSettingRepository creates a new instance of MockSettingRepository.
func NewMockSettingRepository() *MockSettingRepository {
	return &MockSettingRepository{}
}

// Get returns a copy of the stored settings.
func (r *MockSettingRepository) Get(_ context.Context) (*models.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.setting == nil {
		return nil, apperr.NewNotFoundError("setting", SettingID)
	}
	s := *r.setting
	return &s, nil
}

// Save stores a copy of setting.
func (r *MockSettingRepository) Save(_ context.Context, setting *models.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	setting.ID = SettingID
	s := *setting
	r.setting = &s
	return nil
}
