package repositories_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var epoch = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.Setting{}, &models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func fixture(id, name, category string, price, rating float64, sales int, tags ...string) models.Product {
	n := 0
	fmt.Sscanf(id, "p%d", &n)
	return models.Product{
		ID:           id,
		Slug:         strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + id,
		Name:         name,
		Category:     category,
		Tags:         tags,
		Price:        price,
		ListPrice:    price,
		CountInStock: 10,
		AvgRating:    rating,
		NumSales:     sales,
		IsPublished:  true,
		CreatedAt:    epoch.Add(time.Duration(n) * time.Hour),
		UpdatedAt:    epoch,
	}
}

func catalog() []models.Product {
	hidden := fixture("p08", "Hidden Shoe", "Shoes", 700, 5, 99)
	hidden.IsPublished = false
	return []models.Product{
		fixture("p01", "Trail Shoe", "Shoes", 650, 4.5, 30, "new-arrival", "featured"),
		fixture("p02", "Road Shoe", "Shoes", 900, 4, 30, "featured"),
		fixture("p03", "Court Shoe", "Shoes", 500, 4.2, 10),
		fixture("p04", "Linen Shirt", "Shirts", 450, 3.5, 50, "best-seller"),
		fixture("p05", "Denim Jeans", "Jeans", 1500, 4.8, 5, "new-arrival"),
		fixture("p06", "Cotton Shirt", "Shirts", 300, 2.9, 70),
		fixture("p07", "Leather Shoe", "Shoes", 5200, 4.9, 1, "todays-deal"),
		hidden,
	}
}
