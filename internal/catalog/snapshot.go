package catalog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"tea-kart/internal/model"

	"github.com/rs/zerolog"
)

// SnapshotLoader loads a gzipped JSON product list.
type SnapshotLoader interface {
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// fileLoader implements SnapshotLoader for the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based snapshot loader.
func NewFileLoader(logger zerolog.Logger) SnapshotLoader {
	return &fileLoader{
		logger: logger.With().Str("component", "snapshot-loader").Logger(),
	}
}

// Load reads a gzipped snapshot file.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Product, error) {
	l.logger.Info().Str("file", filePath).Msg("loading catalog snapshot")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open snapshot file")
		return nil, fmt.Errorf("failed to open snapshot file %s: %w", filePath, err)
	}
	defer file.Close()

	products, err := decodeSnapshot(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read snapshot file")
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("products_loaded", len(products)).
		Msg("catalog snapshot loaded")

	return products, nil
}

// decodeSnapshot gunzips r and decodes the product list, skipping entries
// without an id.
func decodeSnapshot(ctx context.Context, r io.Reader) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	var raw []model.Product
	if err := json.NewDecoder(gzipReader).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(raw))
	for _, p := range raw {
		if p.ID == "" {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// WriteSnapshot gzips products as JSON to w.
func WriteSnapshot(w io.Writer, products []model.Product) error {
	gzipWriter := gzip.NewWriter(w)
	enc := json.NewEncoder(gzipWriter)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		gzipWriter.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return gzipWriter.Close()
}
