package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tea-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Gateway is the payment initiation collaborator.
type Gateway interface {
	// Initiate submits the order. A rejected order is reported through
	// PaymentSession.Success, transport and server failures through err.
	Initiate(ctx context.Context, order *model.Order) (*model.PaymentSession, error)

	// Status looks up the payment state of a transaction.
	Status(ctx context.Context, transactionID string) (*model.PaymentStatus, error)
}

// ErrTransactionNotFound is returned by Status for unknown transactions.
var ErrTransactionNotFound = errors.New("transaction not found")

// serverDetailError is a 5xx answer carrying the endpoint's JSON error body.
// The payment service reports declined orders this way, so it does not count
// against the breaker.
type serverDetailError struct {
	status int
	detail string
}

func (e *serverDetailError) Error() string {
	return fmt.Sprintf("payment service error: status=%d detail=%s", e.status, e.detail)
}

// GatewayConfig configures the HTTP payment gateway client.
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration

	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32

	// BreakerCooldown is how long the breaker stays open before probing again.
	BreakerCooldown time.Duration
}

// DefaultGatewayConfig returns the gateway defaults for baseURL.
func DefaultGatewayConfig(baseURL string) GatewayConfig {
	return GatewayConfig{
		BaseURL:         baseURL,
		Timeout:         15 * time.Second,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// HTTPGateway talks JSON to the payment initiation endpoint.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  zerolog.Logger
}

// NewHTTPGateway creates a gateway client. A nil client gets an
// otelhttp-instrumented default.
func NewHTTPGateway(cfg GatewayConfig, client *http.Client, logger zerolog.Logger) *HTTPGateway {
	logger = logger.With().Str("component", "payment-gateway").Logger()

	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			var detailErr *serverDetailError
			return err == nil || errors.As(err, &detailErr)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

type orderItemPayload struct {
	ProductID    string      `json:"product_id"`
	ProductTitle string      `json:"product_title"`
	Quantity     int         `json:"quantity"`
	UnitPrice    json.Number `json:"unit_price"`
	TotalPrice   json.Number `json:"total_price"`
}

type orderPayload struct {
	ID            string             `json:"id"`
	Customer      model.CustomerInfo `json:"customer"`
	Items         []orderItemPayload `json:"items"`
	Subtotal      json.Number        `json:"subtotal"`
	ShippingCost  json.Number        `json:"shipping_cost"`
	TotalAmount   json.Number        `json:"total_amount"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	CreatedAt     time.Time          `json:"created_at"`
}

// errorPayload is the endpoint's error body.
type errorPayload struct {
	Detail string `json:"detail"`
}

func newOrderPayload(order *model.Order) orderPayload {
	items := make([]orderItemPayload, len(order.Items))
	for i, item := range order.Items {
		items[i] = orderItemPayload{
			ProductID:    item.ProductID,
			ProductTitle: item.ProductTitle,
			Quantity:     item.Quantity,
			UnitPrice:    model.JSONNumber(item.UnitPrice),
			TotalPrice:   model.JSONNumber(item.TotalPrice),
		}
	}
	return orderPayload{
		ID:            order.ID.String(),
		Customer:      order.Customer,
		Items:         items,
		Subtotal:      model.JSONNumber(order.Subtotal),
		ShippingCost:  model.JSONNumber(order.ShippingCost),
		TotalAmount:   model.JSONNumber(order.TotalAmount),
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		CreatedAt:     order.CreatedAt,
	}
}

// Initiate posts the order to /api/payments/initiate.
func (g *HTTPGateway) Initiate(ctx context.Context, order *model.Order) (*model.PaymentSession, error) {
	body, err := json.Marshal(newOrderPayload(order))
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	resp, err := g.do(ctx, http.MethodPost, "/api/payments/initiate", body)
	var detailErr *serverDetailError
	if errors.As(err, &detailErr) {
		g.logger.Warn().
			Int("status", detailErr.status).
			Str("detail", detailErr.detail).
			Str("order_id", order.ID.String()).
			Msg("payment initiation declined by server error")
		return &model.PaymentSession{Success: false, Error: detailErr.detail}, nil
	}
	if err != nil {
		g.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("payment initiation request failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail := readDetail(resp.Body)
		g.logger.Warn().
			Int("status", resp.StatusCode).
			Str("detail", detail).
			Str("order_id", order.ID.String()).
			Msg("payment initiation rejected")
		return &model.PaymentSession{Success: false, Error: detail}, nil
	}

	var session model.PaymentSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode payment session: %w", err)
	}

	g.logger.Debug().
		Bool("success", session.Success).
		Str("transaction_id", session.TransactionID).
		Str("order_id", order.ID.String()).
		Msg("payment initiation answered")

	return &session, nil
}

// Status fetches /api/payments/status/{transactionID}.
func (g *HTTPGateway) Status(ctx context.Context, transactionID string) (*model.PaymentStatus, error) {
	resp, err := g.do(ctx, http.MethodGet, "/api/payments/status/"+url.PathEscape(transactionID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTransactionNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("payment status request failed: status=%d detail=%s", resp.StatusCode, readDetail(resp.Body))
	}

	var status model.PaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode payment status: %w", err)
	}
	return &status, nil
}

// do sends a request through the circuit breaker. Transport errors and 5xx
// answers without a JSON detail count as breaker failures. The response body
// of a 5xx is consumed.
func (g *HTTPGateway) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	return g.breaker.Execute(func() (*http.Response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("payment service unreachable: %w", err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			detail, structured := readDetailBody(resp.Body)
			resp.Body.Close()
			if structured {
				return nil, &serverDetailError{status: resp.StatusCode, detail: detail}
			}
			return nil, fmt.Errorf("payment service error: status=%d detail=%s", resp.StatusCode, detail)
		}

		return resp, nil
	})
}

func readDetail(r io.Reader) string {
	detail, _ := readDetailBody(r)
	return detail
}

// readDetailBody returns the error message of a response body and whether it
// came from a JSON detail field.
func readDetailBody(r io.Reader) (string, bool) {
	raw, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil {
		return "", false
	}

	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		return payload.Detail, true
	}
	return strings.TrimSpace(string(raw)), false
}
