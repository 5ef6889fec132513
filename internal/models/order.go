package models

import "time"

// Payment method names with special verification rules.
const (
	PaymentMethodCOD        = "Cash On Delivery"
	PaymentMethodCODAdvance = "COD Advance"
	PaymentMethodUPI        = "UPI"
)

// PaymentStatusCompleted is recorded on a verified payment.
const PaymentStatusCompleted = "COMPLETED"

// OrderItem represents a single line within an order. Price is the unit price at the time of order.
type OrderItem struct {
	ClientID  string  `json:"clientId"`
	ProductID string  `json:"productId"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	Province   string `json:"province" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

// PaymentResult holds the payment details recorded by verification.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	EmailAddress string `json:"emailAddress"`
	PricePaid    string `json:"pricePaid"`
}

// Order represents a customer order.
type Order struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID               string          `json:"userId" gorm:"index;type:varchar(36)"`
	Items                []OrderItem     `json:"items" gorm:"serializer:json;type:text"`
	ShippingAddress      ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	DeliveryDateName     string          `json:"deliveryDateName"`
	ExpectedDeliveryDate time.Time       `json:"expectedDeliveryDate"`
	PaymentMethod        string          `json:"paymentMethod"`
	PaymentResult        PaymentResult   `json:"paymentResult" gorm:"embedded;embeddedPrefix:payment_"`
	ItemsPrice           float64         `json:"itemsPrice"`
	ShippingPrice        float64         `json:"shippingPrice"`
	TaxPrice             float64         `json:"taxPrice"`
	TotalPrice           float64         `json:"totalPrice"`
	IsPaid               bool            `json:"isPaid"`
	PaidAt               *time.Time      `json:"paidAt"`
	IsDelivered          bool            `json:"isDelivered"`
	DeliveredAt          *time.Time      `json:"deliveredAt"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}
