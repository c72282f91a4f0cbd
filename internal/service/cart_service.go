package service

import (
	"context"

	"tea-kart/internal/cart"
	"tea-kart/internal/model"
	"tea-kart/internal/session"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	products ProductService
	shipping decimal.Decimal
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(products ProductService, shipping decimal.Decimal, logger zerolog.Logger) CartService {
	return &cartService{
		products: products,
		shipping: shipping,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) View(sess *session.Session) model.CartView {
	return newCartView(sess.Cart.Lines(), s.shipping)
}

// AddItem adds one unit unless a quantity is given. The product must exist
// in the catalogue; its current details are stored on the line.
func (s *cartService) AddItem(ctx context.Context, sess *session.Session, req *model.AddToCartRequest) (model.CartView, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return model.CartView{}, err
	}

	sess.Cart.Add(*product, quantity)

	s.logger.Debug().
		Str("session_id", sess.ID.String()).
		Str("product_id", product.ID).
		Int("quantity", quantity).
		Msg("item added to cart")

	return s.View(sess), nil
}

func (s *cartService) UpdateQuantity(sess *session.Session, productID string, quantity int) model.CartView {
	sess.Cart.UpdateQuantity(productID, quantity)
	return s.View(sess)
}

func (s *cartService) RemoveItem(sess *session.Session, productID string) model.CartView {
	sess.Cart.Remove(productID)
	return s.View(sess)
}

func (s *cartService) Clear(sess *session.Session) model.CartView {
	sess.Cart.Clear()
	return s.View(sess)
}

func newCartView(lines []model.CartLine, shipping decimal.Decimal) model.CartView {
	if lines == nil {
		lines = []model.CartLine{}
	}
	total := cart.TotalAmount(lines)
	return model.CartView{
		Lines:          lines,
		TotalAmount:    model.NewMoney(total),
		TotalItemCount: cart.TotalItemCount(lines),
		ShippingCost:   model.NewMoney(shipping),
		CheckoutTotal:  model.NewMoney(total.Add(shipping)),
	}
}
