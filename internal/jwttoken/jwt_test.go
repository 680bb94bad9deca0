package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcycle/internal/domain"
	dErrors "medcycle/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "medcycle", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, domain.RolePharmacist)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotID, gotRole, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, domain.RolePharmacist, gotRole)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewService("key-one", "medcycle", time.Hour)
	verifier := NewService("key-two", "medcycle", time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), domain.RoleCitizen)
	require.NoError(t, err)

	_, _, err = verifier.ValidateAccessToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key", "medcycle", -time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), domain.RoleCitizen)
	require.NoError(t, err)

	_, _, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "medcycle", time.Hour)

	_, _, err := svc.ValidateAccessToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	svc := NewService("test-signing-key", "medcycle", time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), domain.Role("SUPERUSER"))
	require.NoError(t, err)

	_, _, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
