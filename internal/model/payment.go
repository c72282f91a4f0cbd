package model

import "github.com/shopspring/decimal"

// PaymentSession is the payment initiation endpoint's answer.
type PaymentSession struct {
	Success       bool   `json:"success"`
	GatewayURL    string `json:"gateway_url,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	SessionKey    string `json:"session_key,omitempty"`
	Error         string `json:"error,omitempty"`
}

// OutcomeKind names a terminal state of the checkout flow.
type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// Forward navigation offered on an outcome page.
const (
	ActionBrowse        = "browse"
	ActionRetryCheckout = "retry_checkout"
)

// PaymentOutcome is derived from the gateway's return redirect.
// TransactionID is only ever set for a successful payment.
type PaymentOutcome struct {
	Kind          OutcomeKind `json:"kind"`
	TransactionID *string     `json:"transaction_id,omitempty"`
}

// NextActions lists where the user may go from this outcome.
func (o PaymentOutcome) NextActions() []string {
	if o.Kind == OutcomeSuccess {
		return []string{ActionBrowse}
	}
	return []string{ActionRetryCheckout, ActionBrowse}
}

// PaymentStatus is the payment endpoint's view of a transaction.
type PaymentStatus struct {
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

// OutcomeResponse is rendered on the payment landing routes.
type OutcomeResponse struct {
	Outcome     PaymentOutcome `json:"outcome"`
	NextActions []string       `json:"next_actions"`
	Status      *PaymentStatus `json:"status,omitempty"`
	CartItems   int            `json:"cart_items"`
}
