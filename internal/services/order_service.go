package services

import (
	"context"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"

	"go.uber.org/zap"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	carts       repositories.CartStore
	settings    *SettingService
	publisher   EventPublisher
	taxRate     float64
	log         *zap.Logger
	now         func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	carts repositories.CartStore,
	settings *SettingService,
	publisher EventPublisher,
	taxRate float64,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		settings:    settings,
		publisher:   publisher,
		taxRate:     taxRate,
		log:         log,
		now:         time.Now,
	}
}

// PlaceOrderRequest carries the checkout choices.
type PlaceOrderRequest struct {
	ShippingAddress  models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod    string                 `json:"paymentMethod"`
	DeliveryDateName string                 `json:"deliveryDateName"`
}

// PlaceOrder turns the session's cart into an order. Every line is re-priced from the
// catalog and must still be in stock; the cart is emptied once the order is stored.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, sessionID string, req PlaceOrderRequest) (*models.Order, error) {
	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, apperr.External("load cart", err)
	}
	if c.IsEmpty() {
		return nil, apperr.NewValidationError("cart", "is empty")
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = setting.DefaultPaymentMethod
	}
	if !setting.HasPaymentMethod(paymentMethod) {
		return nil, apperr.NewValidationError("paymentMethod", "\""+paymentMethod+"\" is not available")
	}
	delivery, ok := setting.DeliveryDateByName(req.DeliveryDateName)
	if !ok {
		return nil, apperr.NewValidationError("deliveryDateName", "\""+req.DeliveryDateName+"\" is not available")
	}

	for i := range c.Items {
		line := &c.Items[i]
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, apperr.External("get product", err)
		}
		if !product.IsPublished {
			return nil, apperr.NewNotFoundError("product", line.ProductID)
		}
		if product.CountInStock < line.Quantity {
			return nil, apperr.NewOutOfStockError(product.ID, line.Quantity, product.CountInStock)
		}
		line.Price = product.Price
		line.CountInStock = product.CountInStock
	}
	c.Recompute()

	totals := pricing.OrderTotals(c.ItemsPrice, delivery, s.taxRate)
	now := s.now()
	order := &models.Order{
		UserID:               userID,
		Items:                c.OrderItems(),
		ShippingAddress:      req.ShippingAddress,
		DeliveryDateName:     delivery.Name,
		ExpectedDeliveryDate: now.AddDate(0, 0, delivery.DaysToDeliver),
		PaymentMethod:        paymentMethod,
		ItemsPrice:           totals.ItemsPrice,
		ShippingPrice:        totals.ShippingPrice,
		TaxPrice:             totals.TaxPrice,
		TotalPrice:           totals.TotalPrice,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, apperr.External("create order", err)
	}
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.log.Warn("failed to clear cart after checkout", zap.String("order_id", order.ID), zap.Error(err))
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Float64("total_price", order.TotalPrice))
	publishOrderEvent(s.publisher, s.log, rabbitmq.RoutingOrderCreated, order)
	return order, nil
}

// GetOrder returns an order. Customers only see their own orders.
func (s *OrderService) GetOrder(ctx context.Context, id, userID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.External("get order", err)
	}
	if !isAdmin && order.UserID != userID {
		return nil, apperr.NewNotFoundError("order", id)
	}
	return order, nil
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
}

// ListOrders returns a page of orders, newest first. An empty userID lists every order.
func (s *OrderService) ListOrders(ctx context.Context, userID string, page, pageSize int) (*OrderList, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		setting, err := s.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		pageSize = setting.Common.PageSize
	}
	orders, total, err := s.orderRepo.List(ctx, userID, page, pageSize)
	if err != nil {
		return nil, apperr.External("list orders", err)
	}
	return &OrderList{
		Orders:     orders,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
		Page:       page,
	}, nil
}

// MarkDelivered records the delivery of an order.
func (s *OrderService) MarkDelivered(ctx context.Context, id string) (*models.Order, error) {
	if err := s.orderRepo.MarkDelivered(ctx, id, s.now()); err != nil {
		return nil, apperr.External("mark order delivered", err)
	}
	s.log.Info("order delivered", zap.String("order_id", id))
	return s.GetOrder(ctx, id, "", true)
}

// MarkPaid records a cash payment collected for an order.
func (s *OrderService) MarkPaid(ctx context.Context, id string) (*models.Order, error) {
	if err := s.orderRepo.MarkPaid(ctx, id, s.now()); err != nil {
		return nil, apperr.External("mark order paid", err)
	}
	order, err := s.GetOrder(ctx, id, "", true)
	if err != nil {
		return nil, err
	}
	s.log.Info("order marked paid", zap.String("order_id", id))
	publishOrderEvent(s.publisher, s.log, rabbitmq.RoutingOrderPaid, order)
	return order, nil
}
