// Package auth holds user accounts and credential verification. The medicine
// workflow trusts the Actor this package (via the JWT middleware) supplies.
package auth

import (
	"time"

	"github.com/google/uuid"

	"medcycle/internal/domain"
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves this package.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         domain.Role
	Active       bool
	CreatedAt    time.Time
}

// Actor converts the account into the identity domain services consume.
func (u *User) Actor() domain.Actor {
	return domain.Actor{ID: u.ID, Role: u.Role}
}

// Clone returns a copy so the in-memory store never hands out aliased
// pointers.
func (u *User) Clone() *User {
	out := *u
	return &out
}
