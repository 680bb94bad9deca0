// Package jwttoken issues and validates the HS256 access tokens used by the
// HTTP layer. Domain services never see tokens; they receive an Actor.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medcycle/internal/domain"
	dErrors "medcycle/pkg/domain-errors"
)

// Claims are the access token claims.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewService(signingKey string, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// GenerateAccessToken signs a token naming the user and role.
func (s *Service) GenerateAccessToken(userID uuid.UUID, role domain.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID.String(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateAccessToken satisfies the middleware TokenValidator contract.
func (s *Service) ValidateAccessToken(tokenString string) (uuid.UUID, domain.Role, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return uuid.Nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	return userID, role, nil
}
