package session

import (
	"context"
	"sync"
	"time"

	"tea-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartPersister stores session cart snapshots outside the process.
type CartPersister interface {
	Load(ctx context.Context, sessionID uuid.UUID) ([]model.CartLine, error)
	Save(ctx context.Context, sessionID uuid.UUID, lines []model.CartLine) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// Manager owns the live sessions of the process.
type Manager struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*Session
	persister   CartPersister
	saveTimeout time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithPersister restores and saves carts through p.
func WithPersister(p CartPersister) Option {
	return func(m *Manager) { m.persister = p }
}

// WithClock overrides the clock used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an empty session manager.
func NewManager(logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		sessions:    make(map[uuid.UUID]*Session),
		saveTimeout: 2 * time.Second,
		now:         time.Now,
		logger:      logger.With().Str("component", "session-manager").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session for id, creating it when id is unknown or not a
// valid session id. created reports whether a new id was issued. A session
// is only handed out once its cart has been restored and subscribed.
func (m *Manager) Get(ctx context.Context, id string) (s *Session, created bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		parsed = uuid.New()
		created = true
	}

	m.mu.Lock()
	s, ok := m.sessions[parsed]
	if !ok {
		s = newSession(parsed, m.now())
		m.sessions[parsed] = s
	}
	m.mu.Unlock()

	if ok {
		s.waitReady(ctx)
		s.touch(m.now())
		return s, created
	}

	defer close(s.ready)
	m.attach(ctx, s, !created)
	return s, created
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// attach restores a returning session's cart and persists every later change.
func (m *Manager) attach(ctx context.Context, s *Session, returning bool) {
	if m.persister == nil {
		return
	}

	if returning {
		lines, err := m.persister.Load(ctx, s.ID)
		if err != nil {
			m.logger.Warn().Err(err).Str("session_id", s.ID.String()).Msg("failed to restore cart")
		} else if len(lines) > 0 {
			s.Cart.Restore(lines)
			m.logger.Debug().Str("session_id", s.ID.String()).Int("lines", len(lines)).Msg("cart restored")
		}
	}

	s.Cart.Subscribe(func(lines []model.CartLine) {
		ctx, cancel := context.WithTimeout(context.Background(), m.saveTimeout)
		defer cancel()

		var err error
		if len(lines) == 0 {
			err = m.persister.Delete(ctx, s.ID)
		} else {
			err = m.persister.Save(ctx, s.ID, lines)
		}
		if err != nil {
			m.logger.Error().Err(err).Str("session_id", s.ID.String()).Msg("failed to persist cart")
		}
	})
}

// Expire drops sessions idle for longer than maxIdle. Persisted carts are
// kept so a returning browser gets its cart back.
func (m *Manager) Expire(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for id, s := range m.sessions {
		if s.Processing() {
			continue
		}
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			expired++
		}
	}
	return expired
}

// Run expires idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Expire(maxIdle); n > 0 {
				m.logger.Info().Int("expired", n).Int("live", m.Len()).Msg("idle sessions expired")
			}
		}
	}
}
