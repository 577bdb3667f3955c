package webhook

import (
	"sync"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
)

// StateStore tracks the last known canonical status per provider order and
// enforces the transition rules when a new status arrives.
type StateStore interface {
	// Apply records the event's status if the transition from the current
	// status is legal. It returns the previous status and whether the event
	// was applied; an out-of-order or duplicate event is reported, not stored.
	Apply(provider domain.ProviderID, providerOrderID string, next domain.Status) (domain.Status, bool)
	// Current returns the last applied status for the order, if any.
	Current(provider domain.ProviderID, providerOrderID string) (domain.Status, bool)
}

// InMemoryStateStore is a mutex-guarded map keyed by provider and order id.
// Process-local: a restart forgets history and the next event for an order is
// accepted as its new baseline.
type InMemoryStateStore struct {
	mu     sync.Mutex
	states map[stateKey]domain.Status
}

type stateKey struct {
	provider domain.ProviderID
	orderID  string
}

func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{states: make(map[stateKey]domain.Status)}
}

func (s *InMemoryStateStore) Apply(provider domain.ProviderID, providerOrderID string, next domain.Status) (domain.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey{provider: provider, orderID: providerOrderID}
	current, seen := s.states[key]
	if !seen {
		s.states[key] = next
		return "", true
	}
	if err := current.CanTransitionTo(next); err != nil {
		return current, false
	}
	s.states[key] = next
	return current, true
}

func (s *InMemoryStateStore) Current(provider domain.ProviderID, providerOrderID string) (domain.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.states[stateKey{provider: provider, orderID: providerOrderID}]
	return status, ok
}
