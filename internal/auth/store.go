package auth

import (
	"context"

	"github.com/google/uuid"
)

// Store persists user accounts.
type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// SetActive flips the account's active flag. Deactivated accounts keep
	// their history but can no longer log in.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
