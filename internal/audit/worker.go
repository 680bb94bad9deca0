package audit

import (
	"context"
	"log/slog"
)

// Buffer is a Sink that hands events to a background worker over a bounded
// channel, keeping slow downstream sinks (Kafka) off the request path. When
// the buffer is full the event is dropped and logged; audit forwarding is
// best-effort.
type Buffer struct {
	ch     chan Event
	logger *slog.Logger
}

func NewBuffer(size int, logger *slog.Logger) *Buffer {
	return &Buffer{ch: make(chan Event, size), logger: logger}
}

func (b *Buffer) Publish(ctx context.Context, event Event) error {
	select {
	case b.ch <- event:
	default:
		b.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", string(event.Action),
			"entity_id", event.EntityID,
		)
	}
	return nil
}

// Events exposes the drain side for the worker.
func (b *Buffer) Events() <-chan Event {
	return b.ch
}

// Worker drains buffered audit events and forwards them to a downstream
// sink. A failed publish is logged and the worker keeps draining.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit forward failed",
					"action", string(event.Action),
					"entity_id", event.EntityID,
					"error", err,
				)
			}
		}
	}
}
