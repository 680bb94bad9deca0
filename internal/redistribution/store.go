package redistribution

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store records distribution requests. Append-only, like the audit trail.
type Store interface {
	Save(ctx context.Context, p Proposition) error
	ListByFacility(ctx context.Context, facilityID uuid.UUID) ([]Proposition, error)
}

type InMemoryStore struct {
	mu           sync.RWMutex
	propositions []Proposition
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Save(_ context.Context, p Proposition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.propositions = append(s.propositions, p)
	return nil
}

func (s *InMemoryStore) ListByFacility(_ context.Context, facilityID uuid.UUID) ([]Proposition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Proposition
	for _, p := range s.propositions {
		if p.RequestedBy == facilityID {
			out = append(out, p)
		}
	}
	return out, nil
}
