package services

import (
	"context"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/search"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	settings *SettingService
	validate *validator.Validate
	log      *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, settings *SettingService, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		settings: settings,
		validate: validator.New(),
		log:      log,
	}
}

// ProductView is a product with its prices converted for display.
type ProductView struct {
	models.Product
	DisplayPrice     float64 `json:"displayPrice"`
	DisplayListPrice float64 `json:"displayListPrice"`
	FormattedPrice   string  `json:"formattedPrice"`
	ShowListPrice    bool    `json:"showListPrice"`
	Discount         int     `json:"discount"`
	ShowDiscount     bool    `json:"showDiscount"`
}

// GetProductBySlug returns a published product for the product page.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug, currencyCode string) (*ProductView, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.External("get product", err)
	}
	if !product.IsPublished {
		return nil, apperr.NewNotFoundError("product", slug)
	}
	currency, err := s.settings.Currency(ctx, currencyCode)
	if err != nil {
		return nil, err
	}
	view := newProductView(*product, currency)
	return &view, nil
}

// ListProducts returns every product for the admin panel, newest first.
func (s *ProductService) ListProducts(ctx context.Context, page, pageSize int) (*search.Result, error) {
	res, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, apperr.External("list products", err)
	}
	return res, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.External("get product", err)
	}
	return product, nil
}

// CreateProduct validates a new product, derives its slug when missing and stores it.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = ""
	if err := s.prepare(product); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return apperr.External("create product", err)
	}
	s.log.Info("product created", zap.String("product_id", product.ID), zap.String("slug", product.Slug))
	return nil
}

// UpdateProduct validates and overwrites an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.prepare(product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return apperr.External("update product", err)
	}
	s.log.Info("product updated", zap.String("product_id", product.ID))
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.External("delete product", err)
	}
	s.log.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *ProductService) prepare(product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	product.Slug = strings.TrimSpace(product.Slug)
	if product.Slug == "" {
		product.Slug = search.ToSlug(product.Name)
	}
	if err := s.validate.Struct(product); err != nil {
		return validationError(err)
	}
	if product.Slug == "" {
		return apperr.NewValidationError("slug", "must contain at least one letter or digit")
	}
	if product.ListPrice == 0 {
		product.ListPrice = product.Price
	}
	return nil
}

func newProductView(p models.Product, currency models.Currency) ProductView {
	percent, show := pricing.Discount(p.Price, p.ListPrice)
	return ProductView{
		Product:          p,
		DisplayPrice:     pricing.DisplayPrice(p.Price, currency),
		DisplayListPrice: pricing.DisplayPrice(p.ListPrice, currency),
		FormattedPrice:   pricing.Format(p.Price, currency),
		ShowListPrice:    pricing.ShowListPrice(p.Price, p.ListPrice),
		Discount:         percent,
		ShowDiscount:     show,
	}
}
