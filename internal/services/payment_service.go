package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"

	"go.uber.org/zap"
)

// PaymentService verifies UPI payments reported by the checkout page.
type PaymentService struct {
	orders    repositories.OrderRepository
	publisher EventPublisher
	timeout   time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewPaymentService creates a new PaymentService. Each verification is bounded by timeout.
func NewPaymentService(orders repositories.OrderRepository, publisher EventPublisher, timeout time.Duration, log *zap.Logger) *PaymentService {
	return &PaymentService{
		orders:    orders,
		publisher: publisher,
		timeout:   timeout,
		log:       log,
		now:       time.Now,
	}
}

// VerifyUPIRequest is the payment confirmation sent by the client. Amount is in minor units.
type VerifyUPIRequest struct {
	OrderID       string `json:"orderId" validate:"required"`
	TransactionID string `json:"transactionId" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Amount        int64  `json:"amount" validate:"gt=0"`
	PaymentMethod string `json:"paymentMethod"`
}

// ExpectedAmount is what a payment under method must cover, in minor units. A COD Advance
// covers the shipping price only; every other method covers the order total.
func ExpectedAmount(order *models.Order, method string) int64 {
	if method == models.PaymentMethodCODAdvance {
		return pricing.ToMinorUnits(order.ShippingPrice)
	}
	return pricing.ToMinorUnits(order.TotalPrice)
}

// VerifyUPI checks the reported amount against the order and records the payment once.
// A COD Advance records the payment but leaves the order unpaid.
func (s *PaymentService) VerifyUPI(ctx context.Context, userID string, req VerifyUPIRequest) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, s.wrap(ctx, "get order", err)
	}
	if userID != "" && order.UserID != userID {
		return nil, apperr.NewNotFoundError("order", req.OrderID)
	}
	if order.PaidAt != nil {
		return nil, apperr.ErrAlreadyPaid
	}

	method := req.PaymentMethod
	if method == "" {
		method = order.PaymentMethod
	}
	expected := ExpectedAmount(order, method)
	if req.Amount != expected {
		s.log.Warn("payment amount mismatch",
			zap.String("order_id", order.ID),
			zap.Int64("expected", expected),
			zap.Int64("got", req.Amount))
		return nil, apperr.NewAmountMismatchError(expected, req.Amount)
	}

	paidAt := s.now()
	result := models.PaymentResult{
		ID:           req.TransactionID,
		Status:       models.PaymentStatusCompleted,
		EmailAddress: req.Email,
		PricePaid:    strconv.FormatInt(req.Amount, 10),
	}
	isPaid := method != models.PaymentMethodCODAdvance
	if err := s.orders.RecordPayment(ctx, order.ID, result, isPaid, paidAt); err != nil {
		return nil, s.wrap(ctx, "record payment", err)
	}

	order.IsPaid = isPaid
	order.PaidAt = &paidAt
	order.PaymentResult = result

	s.log.Info("upi payment verified",
		zap.String("order_id", order.ID),
		zap.String("transaction_id", req.TransactionID),
		zap.String("payment_method", method),
		zap.Bool("is_paid", isPaid))
	publishOrderEvent(s.publisher, s.log, rabbitmq.RoutingOrderPaid, order)
	return order, nil
}

// wrap reports a blown deadline as an external failure even when the driver hid the context error.
func (s *PaymentService) wrap(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !apperr.IsDomain(err) {
		return &apperr.ExternalServiceError{Op: op, Err: context.DeadlineExceeded}
	}
	return apperr.External(op, err)
}
