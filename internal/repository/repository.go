package repository

import (
	"context"

	"tea-kart/internal/model"

	"github.com/google/uuid"
)

// CartRepository defines the interface for session cart persistence.
type CartRepository interface {
	// Load retrieves the cart lines of a session in cart order.
	// An unknown session yields an empty cart.
	Load(ctx context.Context, sessionID uuid.UUID) ([]model.CartLine, error)

	// Save replaces the stored cart of a session.
	Save(ctx context.Context, sessionID uuid.UUID, lines []model.CartLine) error

	// Delete removes the stored cart of a session.
	Delete(ctx context.Context, sessionID uuid.UUID) error
}
