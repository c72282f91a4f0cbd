package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order and payment lifecycle values set at assembly time.
const (
	OrderStatusPending   = "pending"
	PaymentStatusPending = "pending"
)

// DefaultCountry is used when the customer leaves the country blank.
const DefaultCountry = "Bangladesh"

// CustomerInfo holds the customer and delivery details entered at checkout.
type CustomerInfo struct {
	Name         string `json:"name" validate:"notblank"`
	Email        string `json:"email" validate:"notblank"`
	Phone        string `json:"phone" validate:"notblank"`
	AddressLine1 string `json:"address_line1" validate:"notblank"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city" validate:"notblank"`
	PostalCode   string `json:"postal_code" validate:"notblank"`
	Country      string `json:"country"`
}

// OrderLineItem is a snapshot of one cart line at assembly time.
type OrderLineItem struct {
	ProductID    string          `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// Order is the payload submitted to the payment initiation endpoint.
// It is never mutated locally once assembled.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	Customer      CustomerInfo    `json:"customer"`
	Items         []OrderLineItem `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// UpdateFieldRequest sets a single checkout form field.
type UpdateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// CheckoutView is the read model of a session's checkout state.
type CheckoutView struct {
	Customer   CustomerInfo      `json:"customer"`
	Valid      bool              `json:"valid"`
	Errors     map[string]string `json:"errors,omitempty"`
	State      string            `json:"state"`
	Processing bool              `json:"processing"`
	Cart       CartView          `json:"cart"`
}
