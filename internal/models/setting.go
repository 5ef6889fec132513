package models

import (
	"slices"
	"time"
)

// Setting is the single site-wide configuration document managed from the admin panel.
type Setting struct {
	ID                      string          `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Common                  CommonSetting   `json:"common" gorm:"serializer:json;type:text" bson:"common" validate:"required"`
	Site                    SiteSetting     `json:"site" gorm:"serializer:json;type:text" bson:"site" validate:"required"`
	AvailableCurrencies     []Currency      `json:"availableCurrencies" gorm:"serializer:json;type:text" bson:"available_currencies" validate:"required,min=1,dive"`
	DefaultCurrency         string          `json:"defaultCurrency" bson:"default_currency" validate:"required"`
	AvailablePaymentMethods []PaymentMethod `json:"availablePaymentMethods" gorm:"serializer:json;type:text" bson:"available_payment_methods" validate:"required,min=1,dive"`
	DefaultPaymentMethod    string          `json:"defaultPaymentMethod" bson:"default_payment_method" validate:"required"`
	AvailableDeliveryDates  []DeliveryDate  `json:"availableDeliveryDates" gorm:"serializer:json;type:text" bson:"available_delivery_dates" validate:"required,min=1,dive"`
	DefaultDeliveryDate     string          `json:"defaultDeliveryDate" bson:"default_delivery_date" validate:"required"`
	CreatedAt               time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt               time.Time       `json:"updatedAt" bson:"updated_at"`
}

// Clone returns a copy that shares no slices with s.
func (s Setting) Clone() Setting {
	s.AvailableCurrencies = slices.Clone(s.AvailableCurrencies)
	s.AvailablePaymentMethods = slices.Clone(s.AvailablePaymentMethods)
	s.AvailableDeliveryDates = slices.Clone(s.AvailableDeliveryDates)
	return s
}

// CommonSetting groups storefront-wide knobs.
type CommonSetting struct {
	PageSize             int     `json:"pageSize" bson:"page_size" validate:"required,min=1,max=100"`
	IsMaintenanceMode    bool    `json:"isMaintenanceMode" bson:"is_maintenance_mode"`
	FreeShippingMinPrice float64 `json:"freeShippingMinPrice" bson:"free_shipping_min_price" validate:"gte=0"`
	DefaultTheme         string  `json:"defaultTheme" bson:"default_theme"`
	DefaultColor         string  `json:"defaultColor" bson:"default_color"`
}

// SiteSetting describes the shop itself.
type SiteSetting struct {
	Name        string `json:"name" bson:"name" validate:"required"`
	URL         string `json:"url" bson:"url" validate:"required,url"`
	Logo        string `json:"logo" bson:"logo"`
	Slogan      string `json:"slogan" bson:"slogan"`
	Description string `json:"description" bson:"description"`
	Keywords    string `json:"keywords" bson:"keywords"`
	Email       string `json:"email" bson:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" bson:"phone"`
	Author      string `json:"author" bson:"author"`
	UpiID       string `json:"upiId" bson:"upi_id"`
	Copyright   string `json:"copyright" bson:"copyright"`
	Address     string `json:"address" bson:"address"`
}

// Currency is a display currency. ConvertRate multiplies base-currency amounts.
type Currency struct {
	Name        string  `json:"name" bson:"name" validate:"required"`
	Code        string  `json:"code" bson:"code" validate:"required,len=3"`
	Symbol      string  `json:"symbol" bson:"symbol" validate:"required"`
	ConvertRate float64 `json:"convertRate" bson:"convert_rate" validate:"gt=0"`
}

// PaymentMethod is a payment option offered at checkout.
type PaymentMethod struct {
	Name       string  `json:"name" bson:"name" validate:"required"`
	Commission float64 `json:"commission" bson:"commission" validate:"gte=0"`
}

// DeliveryDate is a shipping speed option with its own price and free-shipping threshold.
type DeliveryDate struct {
	Name                 string  `json:"name" bson:"name" validate:"required"`
	DaysToDeliver        int     `json:"daysToDeliver" bson:"days_to_deliver" validate:"gte=0"`
	ShippingPrice        float64 `json:"shippingPrice" bson:"shipping_price" validate:"gte=0"`
	FreeShippingMinPrice float64 `json:"freeShippingMinPrice" bson:"free_shipping_min_price" validate:"gte=0"`
}

// DefaultSetting returns the settings used until an administrator saves their own.
func DefaultSetting() Setting {
	return Setting{
		Common: CommonSetting{
			PageSize:             9,
			FreeShippingMinPrice: 35,
			DefaultTheme:         "Star",
			DefaultColor:         "Green",
		},
		Site: SiteSetting{
			Name:        "kspyn",
			URL:         "https://kspyn-ecom.vercel.app",
			Slogan:      "From Kerala, with vibes.",
			Description: "From local to global.",
			Email:       "admin@example.com",
			Phone:       "+1 (123) 456-7890",
			Author:      "Next Ecommerce",
			Copyright:   "2025 KSPYN",
			Address:     "Kerala",
		},
		AvailableCurrencies: []Currency{
			{Name: "Indian Rupees", Code: "INR", Symbol: "₹", ConvertRate: 1},
		},
		DefaultCurrency: "INR",
		AvailablePaymentMethods: []PaymentMethod{
			{Name: PaymentMethodCOD},
			{Name: "Online"},
			{Name: PaymentMethodUPI},
			{Name: PaymentMethodCODAdvance},
		},
		DefaultPaymentMethod: PaymentMethodCOD,
		AvailableDeliveryDates: []DeliveryDate{
			{Name: "Tomorrow", DaysToDeliver: 1, ShippingPrice: 12.9, FreeShippingMinPrice: 0},
			{Name: "Next 3 Days", DaysToDeliver: 3, ShippingPrice: 6.9, FreeShippingMinPrice: 0},
			{Name: "Next 5 Days", DaysToDeliver: 5, ShippingPrice: 4.9, FreeShippingMinPrice: 35},
		},
		DefaultDeliveryDate: "Tomorrow",
	}
}

// DeliveryDateByName returns the named delivery option, or the default one when name is empty or unknown.
func (s Setting) DeliveryDateByName(name string) (DeliveryDate, bool) {
	if name == "" {
		name = s.DefaultDeliveryDate
	}
	for _, d := range s.AvailableDeliveryDates {
		if d.Name == name {
			return d, true
		}
	}
	return DeliveryDate{}, false
}

// HasPaymentMethod reports whether name is one of the available payment methods.
func (s Setting) HasPaymentMethod(name string) bool {
	for _, m := range s.AvailablePaymentMethods {
		if m.Name == name {
			return true
		}
	}
	return false
}
