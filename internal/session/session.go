package session

import (
	"context"
	"sync"
	"time"

	"tea-kart/internal/cart"
	"tea-kart/internal/checkout"
	"tea-kart/internal/model"

	"github.com/google/uuid"
)

// Session is one browser's storefront state. Cart and Form are safe for
// concurrent use on their own; the flow state and the checkout attempt
// bookkeeping are guarded by the session lock.
type Session struct {
	ID   uuid.UUID
	Cart *cart.Store
	Form *checkout.Form

	ready chan struct{}

	mu         sync.Mutex
	flow       *checkout.Flow
	processing bool
	generation uint64
	lastSeen   time.Time
}

func newSession(id uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:       id,
		Cart:     cart.NewStore(),
		Form:     checkout.NewForm(),
		flow:     checkout.NewFlow(),
		ready:    make(chan struct{}),
		lastSeen: now,
	}
}

// waitReady blocks until the creating request has restored the cart.
func (s *Session) waitReady(ctx context.Context) {
	select {
	case <-s.ready:
	case <-ctx.Done():
	}
}

// State returns the current flow state, first syncing the browsing states
// with the cart contents.
func (s *Session) State() checkout.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow.Sync(s.Cart.Len())
	return s.flow.State()
}

// Transition moves the flow along an edge.
func (s *Session) Transition(to checkout.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow.Sync(s.Cart.Len())
	return s.flow.Transition(to)
}

// Processing reports whether a checkout attempt is in flight.
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Attempt is one checkout submission.
type Attempt struct {
	session    *Session
	generation uint64
}

// BeginSubmit starts a checkout attempt and moves the flow to Initiating.
// Only one attempt may be in flight per session.
func (s *Session) BeginSubmit() (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return nil, model.ErrCheckoutInProgress
	}
	if s.Cart.Len() == 0 {
		return nil, model.ErrEmptyCart
	}

	s.openCheckout()
	if err := s.flow.Transition(checkout.StateInitiating); err != nil {
		return nil, err
	}

	s.processing = true
	s.generation++
	return &Attempt{session: s, generation: s.generation}, nil
}

// Live reports whether the attempt is still the session's current one.
func (a *Attempt) Live() bool {
	a.session.mu.Lock()
	defer a.session.mu.Unlock()
	return a.live()
}

func (a *Attempt) live() bool {
	return a.session.processing && a.session.generation == a.generation
}

// Fail ends a live attempt and returns the flow to form editing.
func (a *Attempt) Fail() {
	a.finish(checkout.StateCheckoutFormEditing)
}

// HandedOff ends a live attempt once the user has been sent to the gateway.
// The flow stays in Initiating until the gateway redirects back.
func (a *Attempt) HandedOff() {
	a.session.mu.Lock()
	defer a.session.mu.Unlock()
	if a.live() {
		a.session.processing = false
	}
}

func (a *Attempt) finish(to checkout.State) {
	a.session.mu.Lock()
	defer a.session.mu.Unlock()
	if !a.live() {
		return
	}
	a.session.processing = false
	_ = a.session.flow.Transition(to)
}

// Abandon drops any in-flight attempt: a late answer for it is discarded.
// The flow returns to form editing if it was initiating.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.processing = false
	if s.flow.State() == checkout.StateInitiating {
		_ = s.flow.Transition(checkout.StateCheckoutFormEditing)
	}
}

// Land records the payment outcome the gateway redirected back with. It
// only moves the flow when the edge exists, e.g. a reloaded outcome page
// leaves the state alone.
func (s *Session) Land(kind model.OutcomeKind) checkout.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if to, ok := outcomeStates[kind]; ok && checkout.CanTransition(s.flow.State(), to) {
		s.processing = false
		s.generation++
		_ = s.flow.Transition(to)
	}
	return s.flow.State()
}

// Browse leaves an outcome page for the catalogue.
func (s *Session) Browse() checkout.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.browse()
	return s.flow.State()
}

func (s *Session) browse() {
	switch s.flow.State() {
	case checkout.StateSuccess, checkout.StateFailed, checkout.StateCancelled, checkout.StateCheckoutFormEditing:
		_ = s.flow.Transition(checkout.StateBrowsing)
	}
	s.flow.Sync(s.Cart.Len())
}

// OpenCheckout enters form editing when the cart has items. From a failed or
// cancelled payment this is the retry path; with nothing left to retry the
// flow goes back to browsing. An attempt in flight keeps the flow in
// Initiating.
func (s *Session) OpenCheckout() checkout.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openCheckout()
	return s.flow.State()
}

func (s *Session) openCheckout() {
	if s.processing {
		return
	}

	switch s.flow.State() {
	case checkout.StateSuccess:
		s.browse()
	case checkout.StateFailed, checkout.StateCancelled:
		if s.Cart.Len() == 0 {
			s.browse()
		}
	case checkout.StateBrowsing, checkout.StateCartNonEmpty:
		s.flow.Sync(s.Cart.Len())
	}

	if s.Cart.Len() > 0 && checkout.CanTransition(s.flow.State(), checkout.StateCheckoutFormEditing) {
		_ = s.flow.Transition(checkout.StateCheckoutFormEditing)
	}
}

var outcomeStates = map[model.OutcomeKind]checkout.State{
	model.OutcomeSuccess:   checkout.StateSuccess,
	model.OutcomeFailed:    checkout.StateFailed,
	model.OutcomeCancelled: checkout.StateCancelled,
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
