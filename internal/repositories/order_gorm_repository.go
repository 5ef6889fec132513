package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/search"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("order", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// List returns a page of orders, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, userID string, page, pageSize int) ([]models.Order, int, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders := []models.Order{}
	window := search.Paginate(int(total), page, pageSize)
	if !window.InRange() {
		return orders, int(total), nil
	}
	err := q.Order("created_at DESC").
		Order("id ASC").
		Offset(window.Skip).
		Limit(window.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, int(total), nil
}

// RecordPayment stores the payment result unless one was stored before.
func (r *GORMOrderRepository) RecordPayment(ctx context.Context, id string, result models.PaymentResult, isPaid bool, paidAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND paid_at IS NULL", id).
		Updates(map[string]interface{}{
			"is_paid":               isPaid,
			"paid_at":               paidAt,
			"payment_id":            result.ID,
			"payment_status":        result.Status,
			"payment_email_address": result.EmailAddress,
			"payment_price_paid":    result.PricePaid,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to record payment for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return r.conflict(ctx, id, apperr.ErrAlreadyPaid)
	}
	return nil
}

// MarkPaid flags an unpaid order as paid, keeping an earlier paid_at.
func (r *GORMOrderRepository) MarkPaid(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{
			"is_paid": true,
			"paid_at": gorm.Expr("COALESCE(paid_at, ?)", at),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return r.conflict(ctx, id, apperr.ErrAlreadyPaid)
	}
	return nil
}

// MarkDelivered flags an undelivered order as delivered.
func (r *GORMOrderRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND is_delivered = ?", id, false).
		Updates(map[string]interface{}{
			"is_delivered": true,
			"delivered_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark order %s delivered: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return r.conflict(ctx, id, apperr.NewValidationError("order", "already delivered"))
	}
	return nil
}

// conflict distinguishes a missing order from one whose state rejected the update.
func (r *GORMOrderRepository) conflict(ctx context.Context, id string, stateErr error) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up order %s: %w", id, err)
	}
	if count == 0 {
		return apperr.NewNotFoundError("order", id)
	}
	return stateErr
}
