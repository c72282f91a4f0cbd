package payment

import (
	"context"
	"errors"
	"time"

	"tea-kart/internal/model"

	"github.com/rs/zerolog"
)

// CartClearer is the part of the cart the initiator needs.
type CartClearer interface {
	Clear()
}

// Handoff carries the local side effects of a confirmed initiation.
type Handoff struct {
	// Cart is cleared once the payment service has accepted the order.
	Cart CartClearer

	// Navigate sends the user to the gateway. It is a one-way transition.
	Navigate func(gatewayURL string)

	// Live reports whether the checkout attempt is still the active one.
	// A nil Live is always live.
	Live func() bool
}

// Initiator submits assembled orders and performs the gateway handoff.
type Initiator struct {
	gateway Gateway
	timeout time.Duration
	logger  zerolog.Logger
}

// NewInitiator creates an initiator. timeout bounds the whole initiation call.
func NewInitiator(gateway Gateway, timeout time.Duration, logger zerolog.Logger) *Initiator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Initiator{
		gateway: gateway,
		timeout: timeout,
		logger:  logger.With().Str("component", "payment-initiator").Logger(),
	}
}

// Initiate submits order and, only after the payment service confirms it,
// clears the cart and navigates to the gateway URL. Any failure leaves the
// cart untouched and returns a *model.PaymentInitiationError. A confirmation
// that arrives for a stale attempt returns model.ErrStaleCheckout without side
// effects.
func (i *Initiator) Initiate(ctx context.Context, order *model.Order, h Handoff) (*model.PaymentSession, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	session, err := i.gateway.Initiate(ctx, order)
	if err != nil {
		reason := "payment service unavailable"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "payment service timed out"
		}
		i.logger.Error().Err(err).Str("order_id", order.ID.String()).Str("reason", reason).Msg("payment initiation failed")
		return nil, &model.PaymentInitiationError{Reason: reason, Err: err}
	}

	if !session.Success {
		reason := session.Error
		if reason == "" {
			reason = "payment session creation failed"
		}
		i.logger.Warn().Str("order_id", order.ID.String()).Str("reason", reason).Msg("payment initiation declined")
		return nil, &model.PaymentInitiationError{Reason: reason}
	}

	if session.GatewayURL == "" {
		i.logger.Error().Str("order_id", order.ID.String()).Msg("payment session has no gateway url")
		return nil, &model.PaymentInitiationError{Reason: "payment service returned no gateway url"}
	}

	if h.Live != nil && !h.Live() {
		i.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("transaction_id", session.TransactionID).
			Msg("discarding payment session for abandoned checkout")
		return nil, model.ErrStaleCheckout
	}

	if h.Cart != nil {
		h.Cart.Clear()
	}
	if h.Navigate != nil {
		h.Navigate(session.GatewayURL)
	}

	i.logger.Info().
		Str("order_id", order.ID.String()).
		Str("transaction_id", session.TransactionID).
		Msg("payment session created, handing off to gateway")

	return session, nil
}
