// Package service implements account registration and login. Token issuance
// is delegated to the jwttoken service so tests can stub it.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"medcycle/internal/audit"
	"medcycle/internal/auth"
	"medcycle/internal/domain"
	dErrors "medcycle/pkg/domain-errors"
	"medcycle/pkg/requestcontext"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, role domain.Role) (string, error)
}

type Service struct {
	store   auth.Store
	tokens  TokenIssuer
	auditor *audit.Publisher
}

func New(store auth.Store, tokens TokenIssuer, auditor *audit.Publisher) *Service {
	return &Service{store: store, tokens: tokens, auditor: auditor}
}

// RegisterInput carries the signup fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// Register creates a new account. Admin accounts cannot be self-registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*auth.User, error) {
	if in.Username == "" || in.Email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username and email are required")
	}
	if !in.Role.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown role "+string(in.Role))
	}
	if in.Role == domain.RoleAdmin {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "admin accounts cannot be self-registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &auth.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:    user.ID,
		Action:     audit.ActionUserRegistered,
		EntityType: audit.EntityUser,
		EntityID:   user.ID.String(),
		Notes:      "role " + string(user.Role),
	})
	return user, nil
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User        *auth.User
	AccessToken string
	ExpiresAt   time.Time
}

// Login verifies credentials and issues an access token. Inactive accounts
// are rejected with the same error as bad credentials to avoid account
// probing.
func (s *Service) Login(ctx context.Context, username, password string, tokenTTL time.Duration) (*LoginResult, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if !user.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue access token")
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:    user.ID,
		Action:     audit.ActionUserLoggedIn,
		EntityType: audit.EntityUser,
		EntityID:   user.ID.String(),
	})
	return &LoginResult{
		User:        user,
		AccessToken: token,
		ExpiresAt:   requestcontext.Now(ctx).Add(tokenTTL),
	}, nil
}
