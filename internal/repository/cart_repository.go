package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tea-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Load retrieves the cart lines of a session in cart order.
func (r *cartRepository) Load(ctx context.Context, sessionID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT product, quantity
		FROM cart_lines
		WHERE session_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]model.CartLine, 0)
	for rows.Next() {
		var (
			raw  []byte
			line model.CartLine
		)
		if err := rows.Scan(&raw, &line.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		if err := json.Unmarshal(raw, &line.Product); err != nil {
			return nil, fmt.Errorf("failed to decode cart product: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart lines")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	r.logger.Debug().
		Str("session_id", sessionID.String()).
		Int("count", len(lines)).
		Msg("loaded cart lines")

	return lines, nil
}

// Save replaces the stored cart of a session within one transaction.
func (r *cartRepository) Save(ctx context.Context, sessionID uuid.UUID, lines []model.CartLine) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM cart_lines WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to clear cart lines: %w", err)
	}

	if err = r.insertLines(ctx, tx, sessionID, lines); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to save cart: %w", err)
	}

	r.logger.Debug().
		Str("session_id", sessionID.String()).
		Int("count", len(lines)).
		Msg("cart saved")

	return nil
}

func (r *cartRepository) insertLines(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, lines []model.CartLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO cart_lines (session_id, position, product_id, product, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for i, line := range lines {
		product, err := json.Marshal(line.Product)
		if err != nil {
			return fmt.Errorf("failed to encode cart product: %w", err)
		}
		batch.Queue(query, sessionID, i, line.Product.ID, product, line.Quantity, now)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range lines {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("session_id", sessionID.String()).
				Str("product_id", lines[i].Product.ID).
				Msg("failed to insert cart line")
			return fmt.Errorf("failed to insert cart line: %w", err)
		}
	}

	return nil
}

// Delete removes the stored cart of a session.
func (r *cartRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE session_id = $1`, sessionID); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
