package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeMissingField            = "MISSING_FIELD"
	ErrCodeUnknownField            = "UNKNOWN_FIELD"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeEmptyCart               = "EMPTY_CART"
	ErrCodeIncompleteCustomerInfo  = "INCOMPLETE_CUSTOMER_INFO"
	ErrCodePaymentInitiationFailed = "PAYMENT_INITIATION_FAILED"
	ErrCodeCheckoutInProgress      = "CHECKOUT_IN_PROGRESS"
	ErrCodeStaleCheckout           = "STALE_CHECKOUT"
	ErrCodeCatalogUnavailable      = "CATALOG_UNAVAILABLE"
	ErrCodeUnknownOutcome          = "UNKNOWN_OUTCOME"
	ErrCodeTransactionNotFound     = "TRANSACTION_NOT_FOUND"
	ErrCodePaymentStatusFailed     = "PAYMENT_STATUS_UNAVAILABLE"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound        = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrUnknownField           = NewDomainError(ErrCodeUnknownField, "Unknown checkout field")
	ErrEmptyCart              = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrIncompleteCustomerInfo = NewDomainError(ErrCodeIncompleteCustomerInfo, "Please fill in all required fields")
	ErrPaymentInitiation      = NewDomainError(ErrCodePaymentInitiationFailed, "Payment could not be started, please try again")
	ErrCheckoutInProgress     = NewDomainError(ErrCodeCheckoutInProgress, "Checkout is already being processed")
	ErrStaleCheckout          = NewDomainError(ErrCodeStaleCheckout, "Checkout was abandoned")
	ErrCatalogUnavailable     = NewDomainError(ErrCodeCatalogUnavailable, "Product catalogue is unavailable")
)

// IncompleteCustomerInfoError lists the required fields that are blank.
type IncompleteCustomerInfoError struct {
	Fields map[string]string
}

func (e *IncompleteCustomerInfoError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("incomplete customer info: %s", strings.Join(names, ", "))
}

func (e *IncompleteCustomerInfoError) Unwrap() error {
	return ErrIncompleteCustomerInfo
}

// PaymentInitiationError reports a rejected, failed or timed out initiation.
type PaymentInitiationError struct {
	Reason string
	Err    error
}

func (e *PaymentInitiationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment initiation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("payment initiation failed: %s", e.Reason)
}

func (e *PaymentInitiationError) Is(target error) bool {
	return target == ErrPaymentInitiation
}

func (e *PaymentInitiationError) Unwrap() error {
	return e.Err
}

// CodeOf returns the domain code carried by err, if any.
func CodeOf(err error) (string, bool) {
	if errors.Is(err, ErrPaymentInitiation) {
		return ErrCodePaymentInitiationFailed, true
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}
