package handler

import (
	"strings"

	"medcycle/internal/domain"
	dErrors "medcycle/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	parsedRole domain.Role
}

// Validate normalizes and checks the signup fields.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	role := domain.Role(strings.ToUpper(strings.TrimSpace(r.Role)))
	if !role.Valid() {
		return dErrors.New(dErrors.CodeValidation, "unknown role "+r.Role)
	}
	r.parsedRole = role
	return nil
}

// ParsedRole returns the validated role.
func (r *RegisterRequest) ParsedRole() domain.Role {
	return r.parsedRole
}

// LoginRequest is the HTTP request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks both credentials are present.
func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "username and password are required")
	}
	return nil
}
