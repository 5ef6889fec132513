package services

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/search"

	"go.uber.org/zap"
)

// SearchService resolves storefront listings.
type SearchService struct {
	repo     repositories.ProductRepository
	settings *SettingService
	log      *zap.Logger
}

// NewSearchService creates a new SearchService.
func NewSearchService(repo repositories.ProductRepository, settings *SettingService, log *zap.Logger) *SearchService {
	return &SearchService{repo: repo, settings: settings, log: log}
}

// SearchPage is one resolved page of the search listing.
type SearchPage struct {
	Criteria      search.Criteria      `json:"criteria"`
	IsCleared     bool                 `json:"isCleared"`
	Products      []ProductView        `json:"products"`
	TotalProducts int                  `json:"totalProducts"`
	TotalPages    int                  `json:"totalPages"`
	From          int                  `json:"from"`
	To            int                  `json:"to"`
	Page          int                  `json:"page"`
	PageSize      int                  `json:"pageSize"`
	Currency      models.Currency      `json:"currency"`
	PriceBuckets  []search.PriceBucket `json:"priceBuckets"`
	SortOrders    []search.SortOrder   `json:"sortOrders"`
	ClearURL      string               `json:"clearUrl"`
}

// Search returns the page of published products matching c, sized by the site settings.
func (s *SearchService) Search(ctx context.Context, c search.Criteria, page int, currencyCode string) (*SearchPage, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	currency, err := s.settings.Currency(ctx, currencyCode)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.FindProducts(ctx, c, page, setting.Common.PageSize)
	if err != nil {
		s.log.Error("product search failed", zap.Any("criteria", c), zap.Error(err))
		return nil, apperr.External("find products", err)
	}

	views := make([]ProductView, 0, len(res.Products))
	for _, p := range res.Products {
		views = append(views, newProductView(p, currency))
	}

	return &SearchPage{
		Criteria:      c,
		IsCleared:     c.IsCleared(),
		Products:      views,
		TotalProducts: res.TotalProducts,
		TotalPages:    res.TotalPages,
		From:          res.From,
		To:            res.To,
		Page:          res.Page,
		PageSize:      setting.Common.PageSize,
		Currency:      currency,
		PriceBuckets:  search.PriceBuckets,
		SortOrders:    search.SortOrders,
		ClearURL:      search.ClearURL(),
	}, nil
}

// Categories returns the categories offered in the category filter.
func (s *SearchService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperr.External("list categories", err)
	}
	return categories, nil
}

// Tags returns the tags offered in the tag filter.
func (s *SearchService) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, apperr.External("list tags", err)
	}
	return tags, nil
}
