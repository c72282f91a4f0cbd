package checkout

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a flow edge does not exist.
var ErrIllegalTransition = errors.New("illegal checkout state transition")

// State is a node of the storefront checkout flow.
type State string

const (
	StateBrowsing            State = "browsing"
	StateCartNonEmpty        State = "cart_non_empty"
	StateCheckoutFormEditing State = "checkout_form_editing"
	StateInitiating          State = "initiating"
	StateSuccess             State = "success"
	StateFailed              State = "failed"
	StateCancelled           State = "cancelled"
)

var transitions = map[State][]State{
	StateBrowsing:            {StateBrowsing, StateCartNonEmpty},
	StateCartNonEmpty:        {StateBrowsing, StateCartNonEmpty, StateCheckoutFormEditing},
	StateCheckoutFormEditing: {StateBrowsing, StateCartNonEmpty, StateCheckoutFormEditing, StateInitiating},
	StateInitiating:          {StateCheckoutFormEditing, StateSuccess, StateFailed, StateCancelled},
	StateSuccess:             {StateBrowsing},
	StateFailed:              {StateCheckoutFormEditing, StateBrowsing, StateCartNonEmpty},
	StateCancelled:           {StateCheckoutFormEditing, StateBrowsing, StateCartNonEmpty},
}

// IsTerminal reports whether s is a payment outcome.
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFailed || s == StateCancelled
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// CanTransition reports whether the flow may move from one state to another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Flow tracks the current state of one session's checkout.
// It is not safe for concurrent use; callers hold the session lock.
type Flow struct {
	state State
}

// NewFlow starts a flow in StateBrowsing.
func NewFlow() *Flow {
	return &Flow{state: StateBrowsing}
}

// State returns the current state.
func (f *Flow) State() State {
	return f.state
}

// Transition moves to the given state if the edge exists.
func (f *Flow) Transition(to State) error {
	if !CanTransition(f.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.state, to)
	}
	f.state = to
	return nil
}

// Sync moves between the browsing states to match the cart contents. It
// leaves checkout, initiation and outcome states alone.
func (f *Flow) Sync(cartLines int) {
	switch f.state {
	case StateBrowsing, StateCartNonEmpty:
		if cartLines > 0 {
			f.state = StateCartNonEmpty
		} else {
			f.state = StateBrowsing
		}
	}
}
