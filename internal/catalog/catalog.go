package catalog

import (
	"context"
	"errors"

	"tea-kart/internal/model"
)

// Catalog is the read-only product catalogue collaborator.
type Catalog interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	ListByCategory(ctx context.Context, category model.TeaCategory) ([]model.Product, error)
}

// ErrUnavailable wraps failures to reach the catalogue service.
var ErrUnavailable = errors.New("catalog service unavailable")

// staticCatalog serves a fixed product list, typically a snapshot.
type staticCatalog struct {
	products []model.Product
	byID     map[string]int
}

// NewStaticCatalog creates a Catalog over products. Later duplicates of an id
// are ignored.
func NewStaticCatalog(products []model.Product) Catalog {
	c := &staticCatalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if _, seen := c.byID[p.ID]; seen {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

func (c *staticCatalog) List(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

func (c *staticCatalog) Get(ctx context.Context, id string) (*model.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	p := c.products[i]
	return &p, nil
}

func (c *staticCatalog) ListByCategory(ctx context.Context, category model.TeaCategory) ([]model.Product, error) {
	out := make([]model.Product, 0)
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}
