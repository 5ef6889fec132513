package services

import (
	"encoding/json"
	"time"

	"storefront/internal/models"

	"go.uber.org/zap"
)

// EventPublisher sends domain events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEvent is the payload of order.created and order.paid.
type OrderEvent struct {
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalPrice    float64   `json:"totalPrice"`
	IsPaid        bool      `json:"isPaid"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func newOrderEvent(o *models.Order) OrderEvent {
	return OrderEvent{
		OrderID:       o.ID,
		UserID:        o.UserID,
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice,
		IsPaid:        o.IsPaid,
		OccurredAt:    time.Now().UTC(),
	}
}

// publishOrderEvent never fails the caller: the order is already committed.
func publishOrderEvent(p EventPublisher, log *zap.Logger, routingKey string, o *models.Order) {
	if p == nil {
		return
	}
	body, err := json.Marshal(newOrderEvent(o))
	if err != nil {
		log.Error("failed to marshal order event", zap.String("order_id", o.ID), zap.Error(err))
		return
	}
	if err := p.Publish(routingKey, body); err != nil {
		log.Warn("failed to publish order event",
			zap.String("routing_key", routingKey),
			zap.String("order_id", o.ID),
			zap.Error(err))
	}
}
