package medicine

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	dErrors "medcycle/pkg/domain-errors"
)

// ErrNotFound keeps store-level 404s consistent across the in-memory and
// postgres implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "medicine not found")

// InMemoryStore keeps records in a map guarded by a RWMutex. Used in tests
// and when no database is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[uuid.UUID]*Record)}
}

func (s *InMemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "medicine already exists")
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; !ok {
		return ErrNotFound
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, rec := range s.records {
		if rec.Status == status {
			out = append(out, rec.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemoryStore) ListByDeclarer(_ context.Context, declaredBy uuid.UUID) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, rec := range s.records {
		if rec.DeclaredBy == declaredBy {
			out = append(out, rec.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func sortByCreation(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID.String() < recs[j].ID.String()
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
}
