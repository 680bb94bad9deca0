package supply

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	dErrors "medcycle/pkg/domain-errors"
)

var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "supply not found")

type InMemoryStore struct {
	mu       sync.RWMutex
	supplies map[uuid.UUID]*Supply
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{supplies: make(map[uuid.UUID]*Supply)}
}

func (s *InMemoryStore) Create(_ context.Context, item *Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.supplies[item.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "supply already exists")
	}
	s.supplies[item.ID] = item.Clone()
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Supply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.supplies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, item *Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.supplies[item.ID]; !ok {
		return ErrNotFound
	}
	s.supplies[item.ID] = item.Clone()
	return nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]*Supply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Supply
	for _, item := range s.supplies {
		if item.Active {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
