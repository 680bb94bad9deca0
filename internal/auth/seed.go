package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"medcycle/internal/domain"
)

// SeedDevUsers creates one account per role for local development. Gated by
// config; never enabled in production. Existing usernames are left alone.
func SeedDevUsers(ctx context.Context, store Store, logger *slog.Logger) {
	seeds := []struct {
		username string
		email    string
		password string
		role     domain.Role
	}{
		{"citizen_test", "citizen@test.local", "citizenpass", domain.RoleCitizen},
		{"pharmacist_test", "pharmacist@test.local", "pharmacistpass", domain.RolePharmacist},
		{"regulatory_test", "regulatory@test.local", "regulatorypass", domain.RoleRegulatoryAgent},
		{"facility_test", "facility@test.local", "facilitypass", domain.RoleHealthFacility},
		{"admin", "admin@test.local", "adminpass", domain.RoleAdmin},
	}

	for _, seed := range seeds {
		if _, err := store.GetByUsername(ctx, seed.username); err == nil {
			continue
		}
		hash, err := HashPassword(seed.password)
		if err != nil {
			logger.Error("seed user hash failed", "username", seed.username, "error", err)
			continue
		}
		user := &User{
			ID:           uuid.New(),
			Username:     seed.username,
			Email:        seed.email,
			PasswordHash: hash,
			Role:         seed.role,
			Active:       true,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.Create(ctx, user); err != nil {
			logger.Error("seed user create failed", "username", seed.username, "error", err)
			continue
		}
		logger.Info("seeded dev user", "username", seed.username, "role", string(seed.role))
	}
}
