package repositories_test

import (
	"context"
	"math"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productIDs(r *search.Result) []string {
	out := make([]string, 0, len(r.Products))
	for _, p := range r.Products {
		out = append(out, p.ID)
	}
	return out
}

func stores(t *testing.T) map[string]repositories.ProductRepository {
	ctx := context.Background()
	gormRepo := repositories.NewGORMProductRepository(setupTestDB(t))
	for _, p := range catalog() {
		p := p
		require.NoError(t, gormRepo.Create(ctx, &p))
	}
	return map[string]repositories.ProductRepository{
		"gorm":   gormRepo,
		"memory": repositories.NewMockProductRepository(catalog()...),
	}
}

func TestFindProducts_MatchesInMemoryResolver(t *testing.T) {
	criteria := []search.Criteria{
		search.DefaultCriteria(),
		{Category: "Shoes", Price: "500-1000", Rating: "4"},
		{Query: "SHIRT", Sort: search.SortPriceLowToHigh},
		{Tag: "featured", Sort: search.SortPriceHighToLow},
		{Tag: "new", Sort: search.SortNewestArrivals},
		{Sort: search.SortAvgCustomerReview},
		{Price: "5000-100000"},
	}

	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, c := range criteria {
				want, err := search.Resolve(catalog(), c, 1, 3)
				require.NoError(t, err)

				got, err := repo.FindProducts(context.Background(), c, 1, 3)
				require.NoError(t, err)
				assert.Equal(t, productIDs(want), productIDs(got), "criteria %+v", c)
				assert.Equal(t, want.TotalProducts, got.TotalProducts)
				assert.Equal(t, want.TotalPages, got.TotalPages)
				assert.Equal(t, want.From, got.From)
				assert.Equal(t, want.To, got.To)
			}
		})
	}
}

func TestFindProducts_CombinedFilterAndPaging(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := search.Criteria{Category: "Shoes", Price: "500-1000", Rating: "4"}

			res, err := repo.FindProducts(ctx, c, 1, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"p01", "p02"}, productIDs(res))
			assert.Equal(t, 3, res.TotalProducts)
			assert.Equal(t, 2, res.TotalPages)

			res, err = repo.FindProducts(ctx, c, 2, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"p03"}, productIDs(res))
			assert.Equal(t, 3, res.From)
			assert.Equal(t, 3, res.To)

			res, err = repo.FindProducts(ctx, c, 9, 2)
			require.NoError(t, err)
			assert.Empty(t, res.Products)
			assert.Zero(t, res.From)

			res, err = repo.FindProducts(ctx, search.DefaultCriteria(), 1024819115206086202, 9)
			require.NoError(t, err)
			assert.Empty(t, res.Products)
			assert.Zero(t, res.From)
			assert.Zero(t, res.To)

			res, err = repo.List(ctx, math.MaxInt, 20)
			require.NoError(t, err)
			assert.Empty(t, res.Products)

			_, err = repo.FindProducts(ctx, search.Criteria{Sort: "cheapest"}, 1, 2)
			assert.True(t, search.IsInvalidSortKey(err))
		})
	}
}

func TestCategoriesAndTags(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			categories, err := repo.ListCategories(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Jeans", "Shirts", "Shoes"}, categories)

			tags, err := repo.ListTags(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"best-seller", "featured", "new-arrival", "todays-deal"}, tags)
		})
	}
}

func TestProductCRUD(t *testing.T) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := models.Product{Name: "Canvas Tote", Slug: "canvas-tote", Category: "Bags", Price: 120, CountInStock: 4, IsPublished: true}
			require.NoError(t, repo.Create(ctx, &p))
			assert.NotEmpty(t, p.ID)

			dup := models.Product{Name: "Canvas Tote", Slug: "canvas-tote", Category: "Bags"}
			assert.True(t, apperr.IsValidation(repo.Create(ctx, &dup)))

			got, err := repo.GetBySlug(ctx, "canvas-tote")
			require.NoError(t, err)
			assert.Equal(t, p.ID, got.ID)

			got.Price = 99
			got.Tags = models.Tags{"sale"}
			require.NoError(t, repo.Update(ctx, got))

			got, err = repo.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 99.0, got.Price)
			assert.Equal(t, models.Tags{"sale"}, got.Tags)

			missing := models.Product{ID: "nope", Name: "Nope"}
			assert.True(t, apperr.IsNotFound(repo.Update(ctx, &missing)))

			require.NoError(t, repo.Delete(ctx, p.ID))
			_, err = repo.GetByID(ctx, p.ID)
			assert.True(t, apperr.IsNotFound(err))
			assert.True(t, apperr.IsNotFound(repo.Delete(ctx, p.ID)))

			all, err := repo.List(ctx, 1, 20)
			require.NoError(t, err)
			assert.Equal(t, 8, all.TotalProducts, "admin listing includes unpublished products")
			assert.Equal(t, "p08", all.Products[0].ID)
		})
	}
}
