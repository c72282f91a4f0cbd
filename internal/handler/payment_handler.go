package handler

import (
	"errors"
	"net/http"

	"tea-kart/internal/model"
	"tea-kart/internal/payment"
	"tea-kart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PaymentHandler serves the gateway return routes and the status proxy.
type PaymentHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.CheckoutService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Landing handles GET /payment/success, /payment/failed and /payment/cancelled.
func (h *PaymentHandler) Landing(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	resp, ok := h.service.Land(r.Context(), sess, r.URL.Path, r.URL.Query())
	if !ok {
		writeError(w, http.StatusNotFound, model.ErrCodeUnknownOutcome, "unknown payment outcome", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /api/payments/status/{transaction_id} requests.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transaction_id")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "transaction ID is required", h.logger)
		return
	}

	status, err := h.service.PaymentStatus(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, model.ErrCodeTransactionNotFound, "transaction not found", h.logger)
			return
		}
		h.logger.Warn().Err(err).Str("transaction_id", transactionID).Msg("payment status lookup failed")
		writeError(w, http.StatusBadGateway, model.ErrCodePaymentStatusFailed, "payment service unavailable", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
