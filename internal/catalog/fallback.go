package catalog

import (
	"context"
	"errors"
	"sync"

	"tea-kart/internal/model"

	"github.com/rs/zerolog"
)

// FallbackCatalog serves the live catalogue and switches to a product
// snapshot for calls that fail with ErrUnavailable.
type FallbackCatalog struct {
	live     Catalog
	loader   SnapshotLoader
	path     string
	logger   zerolog.Logger
	mu       sync.Mutex
	snapshot Catalog
}

// NewFallbackCatalog wraps live. The snapshot at path is loaded lazily on the
// first outage and kept for the process lifetime.
func NewFallbackCatalog(live Catalog, loader SnapshotLoader, path string, logger zerolog.Logger) *FallbackCatalog {
	return &FallbackCatalog{
		live:   live,
		loader: loader,
		path:   path,
		logger: logger.With().Str("component", "fallback-catalog").Logger(),
	}
}

func (c *FallbackCatalog) List(ctx context.Context) ([]model.Product, error) {
	products, err := c.live.List(ctx)
	if !errors.Is(err, ErrUnavailable) {
		return products, err
	}
	snap, serr := c.fallback(ctx, err)
	if serr != nil {
		return nil, serr
	}
	return snap.List(ctx)
}

func (c *FallbackCatalog) Get(ctx context.Context, id string) (*model.Product, error) {
	product, err := c.live.Get(ctx, id)
	if !errors.Is(err, ErrUnavailable) {
		return product, err
	}
	snap, serr := c.fallback(ctx, err)
	if serr != nil {
		return nil, serr
	}
	return snap.Get(ctx, id)
}

func (c *FallbackCatalog) ListByCategory(ctx context.Context, category model.TeaCategory) ([]model.Product, error) {
	products, err := c.live.ListByCategory(ctx, category)
	if !errors.Is(err, ErrUnavailable) {
		return products, err
	}
	snap, serr := c.fallback(ctx, err)
	if serr != nil {
		return nil, serr
	}
	return snap.ListByCategory(ctx, category)
}

func (c *FallbackCatalog) fallback(ctx context.Context, cause error) (Catalog, error) {
	c.logger.Warn().Err(cause).Msg("catalog unavailable, serving snapshot")

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil {
		return c.snapshot, nil
	}
	if c.loader == nil || c.path == "" {
		return nil, model.ErrCatalogUnavailable
	}

	products, err := c.loader.Load(ctx, c.path)
	if err != nil {
		c.logger.Error().Err(err).Str("path", c.path).Msg("failed to load catalog snapshot")
		return nil, model.ErrCatalogUnavailable
	}

	c.snapshot = NewStaticCatalog(products)
	return c.snapshot, nil
}
