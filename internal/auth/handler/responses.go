package handler

import (
	"time"

	"github.com/google/uuid"

	"medcycle/internal/auth"
)

// UserResponse is the public representation of an account. The password hash
// never appears here.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// FromUser converts a domain user to its HTTP representation.
func FromUser(u *auth.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// LoginResponse is the HTTP response for POST /auth/login.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
	User        *UserResponse `json:"user"`
}
