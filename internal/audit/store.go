package audit

import "context"

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks Store

// Store persists audit events. Append-only; no update or delete exists.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]Event, error)
}

// Sink receives a copy of every event for out-of-band delivery (e.g. a Kafka
// topic). Sinks are best-effort like the store itself.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
