package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// List returns a page of orders, newest first. An empty userID lists every order.
	List(ctx context.Context, userID string, page, pageSize int) ([]models.Order, int, error)
	// RecordPayment stores a verified payment. It succeeds at most once per order and
	// returns apperr.ErrAlreadyPaid afterwards.
	RecordPayment(ctx context.Context, id string, result models.PaymentResult, isPaid bool, paidAt time.Time) error
	// MarkPaid flags an unpaid order as paid.
	MarkPaid(ctx context.Context, id string, at time.Time) error
	// MarkDelivered flags an undelivered order as delivered.
	MarkDelivered(ctx context.Context, id string, at time.Time) error
}
