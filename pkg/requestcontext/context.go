// Package requestcontext provides HTTP-independent accessors for
// request-scoped values. Middleware sets them; services read them. Keeping the
// package free of net/http lets services import only what they need.
package requestcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type (
	userIDKey      struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyUserID      = userIDKey{}
	ContextKeyRole        = roleKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
)

// UserID retrieves the authenticated user ID, or uuid.Nil when unset.
func UserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID injects a user ID into the context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, id)
}

// Role retrieves the authenticated actor's role string, or "" when unset.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(ContextKeyRole).(string); ok {
		return role
	}
	return ""
}

// WithRole injects a role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ContextKeyRole, role)
}

// RequestID retrieves the correlation ID set by middleware.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// Now returns the request time snapshot taken by middleware. Every expiry
// check inside one operation must use this single reading so a medicine
// cannot expire halfway through a request. Falls back to the wall clock when
// no snapshot was taken (e.g. in background workers).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}

// WithTime injects a fixed request time. Tests use this to pin the clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// ClientIP retrieves the remote address recorded by middleware.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP injects the remote address into the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// UserAgent retrieves the client user agent summary recorded by middleware.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithUserAgent injects a user agent summary into the context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ContextKeyUserAgent, ua)
}
