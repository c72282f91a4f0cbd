package payment

import (
	"net/url"
	"strings"

	"tea-kart/internal/model"
)

// Return redirect schema, version 1. The gateway sends the browser back to one
// of the landing paths with an optional transaction id query parameter.
const (
	ReturnSchemaVersion = 1

	SuccessPath   = "/payment/success"
	FailedPath    = "/payment/failed"
	CancelledPath = "/payment/cancelled"

	TransactionIDParam = "transaction_id"
)

var landingRoutes = map[string]model.OutcomeKind{
	SuccessPath:   model.OutcomeSuccess,
	FailedPath:    model.OutcomeFailed,
	CancelledPath: model.OutcomeCancelled,
}

// LandingPath returns the route for an outcome kind.
func LandingPath(kind model.OutcomeKind) string {
	for path, k := range landingRoutes {
		if k == kind {
			return path
		}
	}
	return ""
}

// Resolve maps a landing path and its query to an outcome. It never fails:
// ok is false only when path is not a landing route, and a missing or blank
// transaction id is simply omitted.
func Resolve(path string, query url.Values) (model.PaymentOutcome, bool) {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	kind, ok := landingRoutes[path]
	if !ok {
		return model.PaymentOutcome{}, false
	}

	outcome := model.PaymentOutcome{Kind: kind}
	if kind == model.OutcomeSuccess {
		if id := strings.TrimSpace(query.Get(TransactionIDParam)); id != "" {
			outcome.TransactionID = &id
		}
	}
	return outcome, true
}

// ResolveURL is Resolve for a full return URL.
func ResolveURL(raw string) (model.PaymentOutcome, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return model.PaymentOutcome{}, false
	}
	return Resolve(u.Path, u.Query())
}
