package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"tea-kart/internal/checkout"
	"tea-kart/internal/model"
	"tea-kart/internal/payment"
	"tea-kart/internal/session"

	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	assembler     *checkout.Assembler
	initiator     *payment.Initiator
	gateway       payment.Gateway
	statusTimeout time.Duration
	logger        zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	assembler *checkout.Assembler,
	initiator *payment.Initiator,
	gateway payment.Gateway,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		assembler:     assembler,
		initiator:     initiator,
		gateway:       gateway,
		statusTimeout: 5 * time.Second,
		logger:        logger.With().Str("service", "checkout").Logger(),
	}
}

func (s *checkoutService) View(sess *session.Session) model.CheckoutView {
	sess.OpenCheckout()
	return s.view(sess)
}

func (s *checkoutService) view(sess *session.Session) model.CheckoutView {
	valid, errs := sess.Form.Validate()
	return model.CheckoutView{
		Customer:   sess.Form.Customer(),
		Valid:      valid,
		Errors:     errs,
		State:      sess.State().String(),
		Processing: sess.Processing(),
		Cart:       newCartView(sess.Cart.Lines(), s.assembler.ShippingCost()),
	}
}

func (s *checkoutService) UpdateField(sess *session.Session, req *model.UpdateFieldRequest) (model.CheckoutView, error) {
	if err := sess.Form.SetField(req.Field, req.Value); err != nil {
		s.logger.Debug().Str("field", req.Field).Msg("unknown checkout field")
		return model.CheckoutView{}, err
	}
	return s.view(sess), nil
}

// Submit runs one checkout attempt. The payment call ignores ctx
// cancellation and is bounded by the initiator's timeout instead.
func (s *checkoutService) Submit(ctx context.Context, sess *session.Session) (*model.PaymentSession, error) {
	attempt, err := sess.BeginSubmit()
	if err != nil {
		s.logger.Debug().Err(err).Str("session_id", sess.ID.String()).Msg("checkout not started")
		return nil, err
	}

	order, err := s.assembler.Assemble(sess.Cart.Lines(), sess.Form.Customer())
	if err != nil {
		attempt.Fail()
		s.logger.Debug().Err(err).Str("session_id", sess.ID.String()).Msg("order assembly failed")
		return nil, err
	}

	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Str("order_id", order.ID.String()).
		Str("total", order.TotalAmount.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("initiating payment")

	result, err := s.initiator.Initiate(context.WithoutCancel(ctx), order, payment.Handoff{
		Cart:     sess.Cart,
		Navigate: func(string) { attempt.HandedOff() },
		Live:     attempt.Live,
	})
	if err != nil {
		if !errors.Is(err, model.ErrStaleCheckout) {
			attempt.Fail()
		}
		return nil, err
	}

	return result, nil
}

func (s *checkoutService) Abandon(sess *session.Session) model.CheckoutView {
	sess.Abandon()
	s.logger.Debug().Str("session_id", sess.ID.String()).Msg("checkout abandoned")
	return s.view(sess)
}

// Land never fails for a known route. The transaction status is attached
// when the payment service knows it.
func (s *checkoutService) Land(ctx context.Context, sess *session.Session, path string, query url.Values) (model.OutcomeResponse, bool) {
	outcome, ok := payment.Resolve(path, query)
	if !ok {
		return model.OutcomeResponse{}, false
	}

	state := sess.Land(outcome.Kind)

	resp := model.OutcomeResponse{
		Outcome:     outcome,
		NextActions: outcome.NextActions(),
		CartItems:   sess.Cart.TotalItemCount(),
	}

	if outcome.TransactionID != nil {
		status, err := s.PaymentStatus(ctx, *outcome.TransactionID)
		if err != nil {
			s.logger.Warn().Err(err).Str("transaction_id", *outcome.TransactionID).Msg("payment status unavailable")
		} else {
			resp.Status = status
		}
	}

	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Str("outcome", string(outcome.Kind)).
		Str("state", state.String()).
		Msg("payment outcome landed")

	return resp, true
}

func (s *checkoutService) PaymentStatus(ctx context.Context, transactionID string) (*model.PaymentStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.statusTimeout)
	defer cancel()

	status, err := s.gateway.Status(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return status, nil
}
