package service

import (
	"context"
	"net/url"

	"tea-kart/internal/model"
	"tea-kart/internal/session"
)

// ProductService defines read operations over the product catalogue.
type ProductService interface {
	// GetAll retrieves every product.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByCategory retrieves the products of one category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)
}

// CartService defines operations on a session's cart.
type CartService interface {
	// View returns the cart with its totals.
	View(sess *session.Session) model.CartView

	// AddItem resolves the product through the catalogue and adds it.
	AddItem(ctx context.Context, sess *session.Session, req *model.AddToCartRequest) (model.CartView, error)

	// UpdateQuantity sets a line's quantity exactly; zero or less removes it.
	UpdateQuantity(sess *session.Session, productID string, quantity int) model.CartView

	// RemoveItem drops a line.
	RemoveItem(sess *session.Session, productID string) model.CartView

	// Clear empties the cart.
	Clear(sess *session.Session) model.CartView
}

// CheckoutService defines the checkout flow of a session.
type CheckoutService interface {
	// View opens the checkout page and returns the form and cart state.
	View(sess *session.Session) model.CheckoutView

	// UpdateField sets one customer field.
	UpdateField(sess *session.Session, req *model.UpdateFieldRequest) (model.CheckoutView, error)

	// Submit assembles the order and initiates payment. On success the cart is
	// already cleared and the caller must send the user to the gateway URL.
	Submit(ctx context.Context, sess *session.Session) (*model.PaymentSession, error)

	// Abandon discards any in-flight checkout attempt.
	Abandon(sess *session.Session) model.CheckoutView

	// Land resolves a gateway return redirect. ok is false for unknown routes.
	Land(ctx context.Context, sess *session.Session, path string, query url.Values) (resp model.OutcomeResponse, ok bool)

	// PaymentStatus looks up a transaction at the payment service.
	PaymentStatus(ctx context.Context, transactionID string) (*model.PaymentStatus, error)
}
