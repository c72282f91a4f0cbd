package checkout

import (
	"strings"
	"time"

	"tea-kart/internal/cart"
	"tea-kart/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Assembler turns cart lines and customer details into an Order payload.
type Assembler struct {
	shipping decimal.Decimal
	now      func() time.Time
	newID    func() uuid.UUID
}

// Option customises an Assembler.
type Option func(*Assembler)

// WithClock overrides the clock used for Order.CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithIDGenerator overrides how order ids are generated.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(a *Assembler) { a.newID = fn }
}

// WithShippingCost overrides the flat shipping rate.
func WithShippingCost(d decimal.Decimal) Option {
	return func(a *Assembler) { a.shipping = d }
}

// NewAssembler creates an assembler using the flat shipping rate.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		shipping: model.ShippingCost,
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ShippingCost returns the flat rate added to every order.
func (a *Assembler) ShippingCost() decimal.Decimal {
	return a.shipping
}

// Assemble builds a pending order from a snapshot of the cart. It fails with
// model.ErrEmptyCart before looking at the customer, then with an
// *model.IncompleteCustomerInfoError. The order is returned, not submitted.
func (a *Assembler) Assemble(lines []model.CartLine, customer model.CustomerInfo) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}
	if fields := ValidateCustomer(customer); len(fields) > 0 {
		return nil, &model.IncompleteCustomerInfoError{Fields: fields}
	}

	items := make([]model.OrderLineItem, len(lines))
	for i, line := range lines {
		items[i] = model.OrderLineItem{
			ProductID:    line.Product.ID,
			ProductTitle: line.Product.Title,
			Quantity:     line.Quantity,
			UnitPrice:    line.Product.Price,
			TotalPrice:   line.LineTotal(),
		}
	}

	if strings.TrimSpace(customer.Country) == "" {
		customer.Country = model.DefaultCountry
	}

	subtotal := cart.TotalAmount(lines)
	return &model.Order{
		ID:            a.newID(),
		Customer:      customer,
		Items:         items,
		Subtotal:      subtotal,
		ShippingCost:  a.shipping,
		TotalAmount:   subtotal.Add(a.shipping),
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		CreatedAt:     a.now().UTC(),
	}, nil
}
