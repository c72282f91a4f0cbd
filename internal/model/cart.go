package model

import "github.com/shopspring/decimal"

// CartLine pairs a product with the quantity selected for it.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price × quantity for the line.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is the read model of a cart returned to clients.
type CartView struct {
	Lines          []CartLine `json:"lines"`
	TotalAmount    Money      `json:"total_amount"`
	TotalItemCount int        `json:"total_item_count"`
	ShippingCost   Money      `json:"shipping_cost"`
	CheckoutTotal  Money      `json:"checkout_total"`
}

// AddToCartRequest is the payload for adding a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// UpdateQuantityRequest is the payload for setting a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
