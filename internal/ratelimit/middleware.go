package ratelimit

import (
	"log/slog"
	"net/http"

	"medcycle/pkg/requestcontext"
)

// Middleware applies the limiter keyed by client IP and route. A limiter
// error fails open: an unreachable Redis must not take down login.
func Middleware(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := requestcontext.ClientIP(ctx) + ":" + r.URL.Path

			allowed, err := limiter.Allow(ctx, key)
			if err != nil {
				logger.WarnContext(ctx, "rate limiter unavailable, failing open",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				allowed = true
			}
			if !allowed {
				logger.WarnContext(ctx, "rate limit exceeded",
					"key", key,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"Too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
