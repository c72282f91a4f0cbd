package cart

import (
	"sync"

	"tea-kart/internal/model"

	"github.com/shopspring/decimal"
)

// Listener is notified with a copy of the cart lines after every mutation.
// Listeners must not mutate the store they are subscribed to.
type Listener func(lines []model.CartLine)

// Store holds one session's cart lines in first-add order.
// Every consumer shares the same *Store; there is no package-level state.
type Store struct {
	// notifyMu is held from a mutation through its notifications so
	// listeners see snapshots in mutation order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	lines     []model.CartLine
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty cart.
func NewStore() *Store {
	return &Store{
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for change notifications and returns a func that
// removes it again.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Add puts quantity units of product into the cart. An existing line keeps its
// position and has its quantity increased. A quantity of zero or less removes
// the product instead.
func (s *Store) Add(product model.Product, quantity int) {
	if quantity <= 0 {
		s.Remove(product.ID)
		return
	}

	s.mutate(func() bool {
		if i := s.indexOf(product.ID); i >= 0 {
			s.lines[i].Quantity += quantity
			return true
		}
		s.lines = append(s.lines, model.CartLine{Product: product, Quantity: quantity})
		return true
	})
}

// Remove drops the line for productID. Missing ids are ignored.
func (s *Store) Remove(productID string) {
	s.mutate(func() bool {
		i := s.indexOf(productID)
		if i < 0 {
			return false
		}
		s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
		return true
	})
}

// UpdateQuantity sets the quantity of an existing line exactly.
// A quantity of zero or less is the same as Remove.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(productID)
		return
	}

	s.mutate(func() bool {
		i := s.indexOf(productID)
		if i < 0 || s.lines[i].Quantity == quantity {
			return false
		}
		s.lines[i].Quantity = quantity
		return true
	})
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.lines) == 0 {
			return false
		}
		s.lines = nil
		return true
	})
}

// Restore replaces the cart contents, e.g. from a persisted snapshot.
// Duplicate product ids are merged and non-positive quantities dropped.
func (s *Store) Restore(lines []model.CartLine) {
	s.mutate(func() bool {
		s.lines = nil
		for _, line := range lines {
			if line.Quantity <= 0 {
				continue
			}
			if i := s.indexOf(line.Product.ID); i >= 0 {
				s.lines[i].Quantity += line.Quantity
				continue
			}
			s.lines = append(s.lines, line)
		}
		return true
	})
}

// Lines returns a copy of the cart lines.
func (s *Store) Lines() []model.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Len returns the number of distinct products in the cart.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// TotalAmount returns Σ price × quantity over all lines.
func (s *Store) TotalAmount() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalAmount(s.lines)
}

// TotalItemCount returns Σ quantity over all lines.
func (s *Store) TotalItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalItemCount(s.lines)
}

// TotalAmount sums price × quantity for lines.
func TotalAmount(lines []model.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// TotalItemCount sums the quantities of lines.
func TotalItemCount(lines []model.CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

// mutate applies fn under the write lock and notifies listeners outside it
// when fn reports a change.
func (s *Store) mutate(fn func() bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	changed := fn()
	var (
		lines     []model.CartLine
		listeners []Listener
	)
	if changed {
		lines = s.snapshot()
		listeners = make([]Listener, 0, len(s.listeners))
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(lines)
	}
}

func (s *Store) indexOf(productID string) int {
	for i, line := range s.lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []model.CartLine {
	out := make([]model.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}
