package testutil

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"medcycle/internal/domain"
	"medcycle/pkg/requestcontext"
)

// WithActor stamps the request context the way the auth middleware would for
// an authenticated caller.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	ctx := req.Context()
	ctx = context.WithValue(ctx, requestcontext.ContextKeyUserID, actor.ID)
	ctx = context.WithValue(ctx, requestcontext.ContextKeyRole, string(actor.Role))
	return req.WithContext(ctx)
}

// WithRequestTime pins the per-request time snapshot so handlers under test
// observe a deterministic clock.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// ActorContext builds a service-level context for a given actor, bypassing
// the HTTP layer.
func ActorContext(actor domain.Actor) context.Context {
	ctx := context.WithValue(context.Background(), requestcontext.ContextKeyUserID, actor.ID)
	return context.WithValue(ctx, requestcontext.ContextKeyRole, string(actor.Role))
}

// ActorContextAt is ActorContext with a pinned request time.
func ActorContextAt(actor domain.Actor, now time.Time) context.Context {
	return requestcontext.WithTime(ActorContext(actor), now)
}

// NewActor returns a fresh actor with the given role.
func NewActor(role domain.Role) domain.Actor {
	return domain.Actor{ID: uuid.New(), Role: role}
}
