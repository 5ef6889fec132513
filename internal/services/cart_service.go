package services

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// CartService loads, mutates and stores session carts.
type CartService struct {
	store    repositories.CartStore
	products repositories.ProductRepository
	settings *SettingService
	log      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.CartStore, products repositories.ProductRepository, settings *SettingService, log *zap.Logger) *CartService {
	return &CartService{store: store, products: products, settings: settings, log: log}
}

// AddItemRequest selects a product variant to put into the cart.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CartLineView is a line item with its prices converted for display.
type CartLineView struct {
	cart.LineItem
	DisplayPrice float64 `json:"displayPrice"`
	LineTotal    float64 `json:"lineTotal"`
}

// CartView is the cart as rendered by the storefront.
type CartView struct {
	Items                 []CartLineView  `json:"items"`
	ItemsPrice            float64         `json:"itemsPrice"`
	Count                 int             `json:"count"`
	Currency              models.Currency `json:"currency"`
	DisplayItemsPrice     float64         `json:"displayItemsPrice"`
	FormattedItemsPrice   string          `json:"formattedItemsPrice"`
	FreeShipping          bool            `json:"freeShipping"`
	FreeShippingRemaining float64         `json:"freeShippingRemaining"`
}

// CartChange reports the line touched by a mutation.
type CartChange struct {
	ClientID string    `json:"clientId"`
	Quantity int       `json:"quantity"`
	Cart     *CartView `json:"cart"`
}

// GetCart returns the session's cart.
func (s *CartService) GetCart(ctx context.Context, sessionID, currencyCode string) (*CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c, currencyCode)
}

// AddItem adds a product variant with the current catalog price and stock.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest, currencyCode string) (*CartChange, error) {
	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, apperr.External("get product", err)
	}
	if !product.IsPublished {
		return nil, apperr.NewNotFoundError("product", req.ProductID)
	}

	color, err := pickOption("color", req.Color, product.Colors)
	if err != nil {
		return nil, err
	}
	size, err := pickOption("size", req.Size, product.Sizes)
	if err != nil {
		return nil, err
	}

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	clientID, qty, err := c.AddItem(lineFromProduct(product, color, size), req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}

	if qty < req.Quantity {
		s.log.Info("cart quantity clamped to stock",
			zap.String("product_id", product.ID),
			zap.Int("requested", req.Quantity),
			zap.Int("quantity", qty))
	}
	return s.change(ctx, c, clientID, qty, currencyCode)
}

// UpdateItem sets the quantity of a line. A quantity of zero removes it.
func (s *CartService) UpdateItem(ctx context.Context, sessionID, clientID string, quantity int, currencyCode string) (*CartChange, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	qty, err := c.UpdateItem(cart.LineItem{ClientID: clientID}, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.change(ctx, c, clientID, qty, currencyCode)
}

// RemoveItem deletes a line.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, clientID, currencyCode string) (*CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(cart.LineItem{ClientID: clientID}); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c, currencyCode)
}

// ClearCart empties the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return apperr.External("clear cart", err)
	}
	return nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, apperr.External("load cart", err)
	}
	return c, nil
}

func (s *CartService) save(ctx context.Context, sessionID string, c *cart.Cart) error {
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return apperr.External("save cart", err)
	}
	return nil
}

func (s *CartService) change(ctx context.Context, c *cart.Cart, clientID string, qty int, currencyCode string) (*CartChange, error) {
	view, err := s.view(ctx, c, currencyCode)
	if err != nil {
		return nil, err
	}
	return &CartChange{ClientID: clientID, Quantity: qty, Cart: view}, nil
}

func (s *CartService) view(ctx context.Context, c *cart.Cart, currencyCode string) (*CartView, error) {
	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	currency := pricing.NewCurrencyTable(setting).Lookup(currencyCode)

	lines := make([]CartLineView, 0, len(c.Items))
	for _, l := range c.Items {
		lines = append(lines, CartLineView{
			LineItem:     l,
			DisplayPrice: pricing.DisplayPrice(l.Price, currency),
			LineTotal:    pricing.DisplayPrice(pricing.LineTotal(l.Price, l.Quantity), currency),
		})
	}

	free, remaining := pricing.FreeShipping(c.ItemsPrice, setting.Common.FreeShippingMinPrice)
	return &CartView{
		Items:                 lines,
		ItemsPrice:            c.ItemsPrice,
		Count:                 c.Count(),
		Currency:              currency,
		DisplayItemsPrice:     pricing.DisplayPrice(c.ItemsPrice, currency),
		FormattedItemsPrice:   pricing.Format(c.ItemsPrice, currency),
		FreeShipping:          free,
		FreeShippingRemaining: pricing.DisplayPrice(remaining, currency),
	}, nil
}

func lineFromProduct(p *models.Product, color, size string) cart.LineItem {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return cart.LineItem{
		ProductID:    p.ID,
		Slug:         p.Slug,
		Name:         p.Name,
		Image:        image,
		Category:     p.Category,
		Color:        color,
		Size:         size,
		Price:        p.Price,
		CountInStock: p.CountInStock,
	}
}

// pickOption defaults an empty choice to the first option and rejects unknown ones.
func pickOption(field, value string, options []string) (string, error) {
	if len(options) == 0 {
		return value, nil
	}
	if value == "" {
		return options[0], nil
	}
	for _, o := range options {
		if o == value {
			return value, nil
		}
	}
	return "", apperr.NewValidationError(field, "\""+value+"\" is not offered for this product")
}
