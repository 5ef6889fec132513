package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/search"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperr.NewNotFoundError("order", id)
	}
	return &order, nil
}

// List returns a page of orders, newest first.
func (r *MockOrderRepository) List(_ context.Context, userID string, page, pageSize int) ([]models.Order, int, error) {
	r.mu.RLock()
	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if userID == "" || order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	r.mu.RUnlock()

	sort.Slice(orderList, func(i, j int) bool {
		if !orderList[i].CreatedAt.Equal(orderList[j].CreatedAt) {
			return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
		}
		return orderList[i].ID < orderList[j].ID
	})

	window := search.Paginate(len(orderList), page, pageSize)
	if !window.InRange() {
		return []models.Order{}, len(orderList), nil
	}
	end := window.Skip + window.Size
	if end > len(orderList) {
		end = len(orderList)
	}
	return orderList[window.Skip:end], len(orderList), nil
}

// RecordPayment stores the payment result once.
func (r *MockOrderRepository) RecordPayment(_ context.Context, id string, result models.PaymentResult, isPaid bool, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return apperr.NewNotFoundError("order", id)
	}
	if order.PaidAt != nil {
		return apperr.ErrAlreadyPaid
	}
	order.IsPaid = isPaid
	order.PaidAt = &paidAt
	order.PaymentResult = result
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// MarkPaid flags an unpaid order as paid.
func (r *MockOrderRepository) MarkPaid(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return apperr.NewNotFoundError("order", id)
	}
	if order.IsPaid {
		return apperr.ErrAlreadyPaid
	}
	order.IsPaid = true
	if order.PaidAt == nil {
		order.PaidAt = &at
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// MarkDelivered flags an undelivered order as delivered.
func (r *MockOrderRepository) MarkDelivered(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return apperr.NewNotFoundError("order", id)
	}
	if order.IsDelivered {
		return apperr.NewValidationError("order", "already delivered")
	}
	order.IsDelivered = true
	order.DeliveredAt = &at
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
