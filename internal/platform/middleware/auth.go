package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"medcycle/internal/domain"
	"medcycle/pkg/requestcontext"
)

// TokenValidator verifies an access token and returns the actor it names.
// Implemented by the jwttoken service; kept as an interface so tests can
// stub authentication without signing real tokens.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (uuid.UUID, domain.Role, error)
}

// RequireAuth rejects requests without a valid bearer token and injects the
// authenticated actor into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			userID, role, err := validator.ValidateAccessToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithRole(ctx, string(role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom rebuilds the authenticated actor from the context. The second
// return is false when authentication middleware did not run.
func ActorFrom(r *http.Request) (domain.Actor, bool) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	role := domain.Role(requestcontext.Role(ctx))
	if userID == uuid.Nil || !role.Valid() {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: userID, Role: role}, true
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
