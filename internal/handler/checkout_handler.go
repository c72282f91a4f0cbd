package handler

import (
	"net/http"
	"strings"

	"tea-kart/internal/model"
	"tea-kart/internal/service"

	"github.com/rs/zerolog"
)

// GatewayRedirect is returned instead of a redirect to clients that ask for JSON.
type GatewayRedirect struct {
	GatewayURL    string `json:"gateway_url"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// CheckoutHandler handles the checkout page and payment submission.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Get handles GET /api/checkout requests.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.service.View(sess))
}

// UpdateField handles PATCH /api/checkout/form requests.
func (h *CheckoutHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var req model.UpdateFieldRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	view, err := h.service.UpdateField(sess, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /api/checkout requests. On success the browser is sent
// to the payment gateway with a 303; JSON clients get the URL in the body.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Submit(r.Context(), sess)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, GatewayRedirect{
			GatewayURL:    result.GatewayURL,
			TransactionID: result.TransactionID,
		})
		return
	}

	http.Redirect(w, r, result.GatewayURL, http.StatusSeeOther)
}

// Abandon handles DELETE /api/checkout requests.
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.service.Abandon(sess))
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
