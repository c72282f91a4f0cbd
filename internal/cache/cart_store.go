package cache

import (
	"context"
	"errors"

	"tea-kart/internal/model"
	"tea-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartStore persists session carts cache-aside: reads try Redis first and
// fill it from the repository, writes go to the repository and then Redis.
// Without a repository Redis is the only store.
type CartStore struct {
	cache   *RedisCache
	backing repository.CartRepository
	logger  zerolog.Logger
}

// NewCartStore creates a cache-aside cart store. backing may be nil.
func NewCartStore(cache *RedisCache, backing repository.CartRepository, logger zerolog.Logger) *CartStore {
	return &CartStore{
		cache:   cache,
		backing: backing,
		logger:  logger.With().Str("component", "cart-cache").Logger(),
	}
}

func (s *CartStore) Load(ctx context.Context, sessionID uuid.UUID) ([]model.CartLine, error) {
	lines, err := s.cache.Get(ctx, sessionID)
	if err == nil {
		return lines, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("cart cache read failed")
	}

	if s.backing == nil {
		return []model.CartLine{}, nil
	}

	lines, err = s.backing.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, sessionID, lines); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("cart cache fill failed")
	}
	return lines, nil
}

func (s *CartStore) Save(ctx context.Context, sessionID uuid.UUID, lines []model.CartLine) error {
	if s.backing != nil {
		if err := s.backing.Save(ctx, sessionID, lines); err != nil {
			s.invalidate(ctx, sessionID)
			return err
		}
	}

	if err := s.cache.Set(ctx, sessionID, lines); err != nil {
		if s.backing == nil {
			return err
		}
		s.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("cart cache write failed")
		s.invalidate(ctx, sessionID)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if s.backing != nil {
		if err := s.backing.Delete(ctx, sessionID); err != nil {
			return err
		}
	}
	return s.cache.Delete(ctx, sessionID)
}

// invalidate drops a possibly stale entry so the next read goes to the repository.
func (s *CartStore) invalidate(ctx context.Context, sessionID uuid.UUID) {
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID.String()).Msg("cart cache invalidation failed")
	}
}
