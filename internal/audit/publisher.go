package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"medcycle/pkg/requestcontext"
)

// Publisher records audit events on behalf of domain services. Appends are
// fire-and-forget: a persistence failure is logged and counted but never
// propagated, so the triggering domain mutation stands. This is a deliberate,
// documented exception to surfacing every error.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
	onFail func()
}

// NewPublisher builds a publisher. onFail is invoked once per failed append
// so callers can wire a metrics counter; it may be nil.
func NewPublisher(store Store, logger *slog.Logger, onFail func(), sinks ...Sink) *Publisher {
	return &Publisher{store: store, sinks: sinks, logger: logger, onFail: onFail}
}

// Record stamps identity and metadata from the context, then appends the
// event and forwards it to every sink.
func (p *Publisher) Record(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		p.fail(ctx, "audit append failed", event, err)
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.fail(ctx, "audit sink publish failed", event, err)
		}
	}
}

func (p *Publisher) fail(ctx context.Context, msg string, event Event, err error) {
	if p.onFail != nil {
		p.onFail()
	}
	p.logger.ErrorContext(ctx, msg,
		"action", string(event.Action),
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"error", err,
	)
}

// ListByEntity returns the recorded trail for one entity, oldest first.
func (p *Publisher) ListByEntity(ctx context.Context, entityType, entityID string) ([]Event, error) {
	return p.store.ListByEntity(ctx, entityType, entityID)
}
