package service

import (
	"context"
	"errors"
	"fmt"

	"tea-kart/internal/catalog"
	"tea-kart/internal/model"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	catalog catalog.Catalog
	logger  zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(c catalog.Catalog, logger zerolog.Logger) ProductService {
	return &productService{
		catalog: c,
		logger:  logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves every product.
func (s *productService) GetAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get all products")
		return nil, catalogError("failed to get products", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")
	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, model.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, catalogError("failed to get product", err)
	}

	return product, nil
}

// GetByCategory retrieves the products of one category. Unknown categories
// yield an empty list.
func (s *productService) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	c := model.TeaCategory(category)
	if !c.Valid() {
		s.logger.Debug().Str("category", category).Msg("unknown category")
		return []model.Product{}, nil
	}

	products, err := s.catalog.ListByCategory(ctx, c)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("failed to get products by category")
		return nil, catalogError("failed to get products", err)
	}

	return products, nil
}

// catalogError keeps an outage recognisable to handlers.
func catalogError(msg string, err error) error {
	if errors.Is(err, catalog.ErrUnavailable) || errors.Is(err, model.ErrCatalogUnavailable) {
		return fmt.Errorf("%s: %w", msg, model.ErrCatalogUnavailable)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
