package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tea-kart/internal/middleware"
	"tea-kart/internal/model"
	"tea-kart/internal/session"

	"github.com/rs/zerolog"
)

// statusByCode maps domain error codes to HTTP status codes.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:             http.StatusBadRequest,
	model.ErrCodeMissingField:            http.StatusBadRequest,
	model.ErrCodeUnknownField:            http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:         http.StatusBadRequest,
	model.ErrCodeProductNotFound:         http.StatusNotFound,
	model.ErrCodeEmptyCart:               http.StatusConflict,
	model.ErrCodeCheckoutInProgress:      http.StatusConflict,
	model.ErrCodeStaleCheckout:           http.StatusConflict,
	model.ErrCodeIncompleteCustomerInfo:  http.StatusUnprocessableEntity,
	model.ErrCodePaymentInitiationFailed: http.StatusBadGateway,
	model.ErrCodeCatalogUnavailable:      http.StatusServiceUnavailable,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError translates err into a response. Errors without a domain
// code become a 500 and their text is only logged.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	code, ok := model.CodeOf(err)
	if !ok {
		logger.Error().Err(err).Msg("unexpected error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		})
		return
	}

	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := model.ErrorResponse{Error: code, Message: err.Error()}

	var de *model.DomainError
	if errors.As(err, &de) {
		resp.Message = de.Message
	}

	var incomplete *model.IncompleteCustomerInfoError
	if errors.As(err, &incomplete) {
		resp.Fields = incomplete.Fields
	}

	var initiation *model.PaymentInitiationError
	if errors.As(err, &initiation) {
		resp.Message = initiation.Reason
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("code", code).Int("status", status).Msg("handler error")
	} else {
		logger.Debug().Err(err).Str("code", code).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads the request body into v, writing an INVALID_JSON error on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// requireSession returns the request's session or writes a 500.
func requireSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*session.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "session unavailable", logger)
		return nil, false
	}
	return sess, true
}
