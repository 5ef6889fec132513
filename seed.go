package main

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd(load func() (*config.Config, *zap.Logger, error)) *cobra.Command {
	var admin models.User

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog and create the first administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync()

			st, closeStores, err := openStores(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeStores()

			products := services.NewProductService(st.products, services.NewSettingService(st.settings, log), log)
			auth := services.NewAuthService(st.users, cfg.JWTSecret, log)
			return seed(cmd.Context(), st, products, auth, admin, log)
		},
	}
	cmd.Flags().StringVar(&admin.Username, "admin-username", "admin", "username of the first administrator")
	cmd.Flags().StringVar(&admin.Email, "admin-email", "admin@example.com", "email of the first administrator")
	cmd.Flags().StringVar(&admin.Password, "admin-password", "", "password of the first administrator (skipped when empty)")
	return cmd
}

// seed stores the sample products that are not there yet and creates the first administrator.
func seed(ctx context.Context, st *stores, products *services.ProductService, auth *services.AuthService, admin models.User, log *zap.Logger) error {
	created := 0
	for _, p := range sampleProducts() {
		p := p
		if _, err := st.products.GetBySlug(ctx, p.Slug); err == nil {
			continue
		} else if !apperr.IsNotFound(err) {
			return err
		}
		if err := products.CreateProduct(ctx, &p); err != nil {
			return err
		}
		created++
	}
	log.Info("catalog seeded", zap.Int("created", created))

	if admin.Password == "" {
		return nil
	}
	ok, err := auth.EnsureAdmin(ctx, &admin)
	if err != nil {
		return err
	}
	if ok {
		log.Info("administrator created", zap.String("username", admin.Username))
	} else {
		log.Info("administrator already exists, skipped")
	}
	return nil
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			Slug: "nike-mens-slim-fit-long-sleeve-t-shirt", Name: "Nike Mens Slim-fit Long-Sleeve T-Shirt",
			Category: "T-Shirts", Brand: "Nike", Tags: models.Tags{"new-arrival"},
			Colors: []string{"Green", "Red", "Black"}, Sizes: []string{"M", "L", "XL"},
			Price: 21.8, ListPrice: 0, CountInStock: 54, AvgRating: 4.71, NumReviews: 7, NumSales: 9, IsPublished: true,
		},
		{
			Slug: "jerzees-long-sleeve-heavyweight-blend-t-shirt", Name: "Jerzees Long-Sleeve Heavyweight Blend T-Shirt",
			Category: "T-Shirts", Brand: "Jerzees", Tags: models.Tags{"featured"},
			Colors: []string{"White", "Red", "Black"}, Sizes: []string{"S", "M", "L"},
			Price: 23.78, ListPrice: 0, CountInStock: 12, AvgRating: 4.2, NumReviews: 10, NumSales: 29, IsPublished: true,
		},
		{
			Slug: "levis-mens-505-regular-fit-jeans", Name: "Levi's Men's 505 Regular Fit Jeans",
			Category: "Jeans", Brand: "Levi's", Tags: models.Tags{"best-seller"},
			Colors: []string{"Blue"}, Sizes: []string{"30", "32", "34"},
			Price: 59.99, ListPrice: 69.99, CountInStock: 31, AvgRating: 4.5, NumReviews: 22, NumSales: 74, IsPublished: true,
		},
		{
			Slug: "wrangler-authentics-mens-relaxed-fit-boot-cut-jean", Name: "Wrangler Authentics Men's Relaxed Fit Boot Cut Jean",
			Category: "Jeans", Brand: "Wrangler", Tags: models.Tags{"todays-deal", "featured"},
			Colors: []string{"Blue", "Black"}, Sizes: []string{"32", "34", "36"},
			Price: 24.35, ListPrice: 32, CountInStock: 0, AvgRating: 3.9, NumReviews: 15, NumSales: 41, IsPublished: true,
		},
		{
			Slug: "adidas-mens-ultimate-running-shoe", Name: "Adidas Men's Ultimate Running Shoe",
			Category: "Shoes", Brand: "Adidas", Tags: models.Tags{"new-arrival", "todays-deal"},
			Colors: []string{"White", "Black"}, Sizes: []string{"8", "9", "10", "11"},
			Price: 599, ListPrice: 899, CountInStock: 18, AvgRating: 4.8, NumReviews: 38, NumSales: 120, IsPublished: true,
		},
		{
			Slug: "kerala-handloom-kasavu-wrap", Name: "Kerala Handloom Kasavu Wrap",
			Category: "Wraps", Brand: "KSPYN", Tags: models.Tags{"featured"},
			Colors: []string{"Gold"}, Sizes: []string{"One Size"},
			Price: 1499, ListPrice: 1499, CountInStock: 6, AvgRating: 5, NumReviews: 3, NumSales: 4, IsPublished: false,
		},
	}
}
