package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	dErrors "medcycle/pkg/domain-errors"
)

// ErrNotFound keeps store-level 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "user not found")

type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*User
	byName map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[uuid.UUID]*User),
		byName: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Username)
	if _, exists := s.byName[key]; exists {
		return dErrors.New(dErrors.CodeConflict, "username already taken")
	}
	s.byID[user.ID] = user.Clone()
	s.byName[key] = user.ID
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user.Clone(), nil
}

func (s *InMemoryStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	user.Active = active
	return nil
}

func (s *InMemoryStore) GetByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].Clone(), nil
}
