package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tea-kart/internal/model"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// HTTPCatalog reads products from the catalogue service's JSON API.
type HTTPCatalog struct {
	baseURL string
	client  *http.Client
	group   singleflight.Group
	logger  zerolog.Logger
}

// NewHTTPCatalog creates a catalogue client for baseURL. A nil client gets an
// otelhttp-instrumented default with the given timeout.
func NewHTTPCatalog(baseURL string, timeout time.Duration, client *http.Client, logger zerolog.Logger) *HTTPCatalog {
	if client == nil {
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &HTTPCatalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger.With().Str("component", "catalog-client").Logger(),
	}
}

// List returns all products. Concurrent calls share one upstream request.
func (c *HTTPCatalog) List(ctx context.Context) ([]model.Product, error) {
	v, err, shared := c.group.Do("list", func() (interface{}, error) {
		var products []model.Product
		if err := c.get(ctx, "/api/products", &products); err != nil {
			return nil, err
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	products := v.([]model.Product)
	c.logger.Debug().Int("count", len(products)).Bool("shared", shared).Msg("products listed")

	out := make([]model.Product, len(products))
	copy(out, products)
	return out, nil
}

// Get returns a single product or model.ErrProductNotFound.
func (c *HTTPCatalog) Get(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	if err := c.get(ctx, "/api/products/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByCategory returns the products of one category.
func (c *HTTPCatalog) ListByCategory(ctx context.Context, category model.TeaCategory) ([]model.Product, error) {
	products := make([]model.Product, 0)
	if err := c.get(ctx, "/api/products/category/"+url.PathEscape(string(category)), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPCatalog) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("catalog request failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.ErrProductNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Error().Int("status", resp.StatusCode).Str("path", path).Msg("catalog service error")
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("catalog request rejected: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}
