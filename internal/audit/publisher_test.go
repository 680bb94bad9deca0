package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"medcycle/internal/audit"
	"medcycle/internal/audit/mocks"
	"medcycle/pkg/requestcontext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherStampsContextMetadata(t *testing.T) {
	store := audit.NewInMemoryStore()
	pub := audit.NewPublisher(store, testLogger(), nil)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-123")
	ctx = requestcontext.WithClientIP(ctx, "10.0.0.9")
	ctx = requestcontext.WithUserAgent(ctx, "Firefox 143 (Linux)")

	actorID := uuid.New()
	pub.Record(ctx, audit.Event{
		ActorID:    actorID,
		Action:     audit.ActionMedicineDeclared,
		EntityType: audit.EntityMedicine,
		EntityID:   "abc",
	})

	events := store.All()
	require.Len(t, events, 1)
	e := events[0]
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "req-123", e.RequestID)
	assert.Equal(t, "10.0.0.9", e.ClientIP)
	assert.Equal(t, "Firefox 143 (Linux)", e.UserAgent)
	assert.Equal(t, actorID, e.ActorID)
}

func TestPublisherAppendFailureDoesNotPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(errors.New("disk full"))

	var failures int
	pub := audit.NewPublisher(store, testLogger(), func() { failures++ })

	// Record must not panic or surface the error.
	pub.Record(context.Background(), audit.Event{
		Action:     audit.ActionMedicineVerified,
		EntityType: audit.EntityMedicine,
		EntityID:   "abc",
	})
	assert.Equal(t, 1, failures)
}

func TestPublisherForwardsToSinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	sink := mocks.NewMockSink(ctrl)

	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	sink.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			assert.Equal(t, audit.ActionMedicineDistributed, e.Action)
			return nil
		})

	pub := audit.NewPublisher(store, testLogger(), nil, sink)
	pub.Record(context.Background(), audit.Event{
		Action:     audit.ActionMedicineDistributed,
		EntityType: audit.EntityMedicine,
		EntityID:   "abc",
	})
}

func TestPublisherSinkFailureStillAppends(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	sink := mocks.NewMockSink(ctrl)

	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	sink.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	var failures int
	pub := audit.NewPublisher(store, testLogger(), func() { failures++ }, sink)
	pub.Record(context.Background(), audit.Event{
		Action:   audit.ActionMedicineVerified,
		EntityID: "abc",
	})
	assert.Equal(t, 1, failures)
}

func TestBufferAndWorker(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)

	delivered := make(chan audit.Event, 1)
	sink.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			delivered <- e
			return nil
		})

	buffer := audit.NewBuffer(4, testLogger())
	worker := audit.NewWorker(sink, buffer.Events(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	require.NoError(t, buffer.Publish(ctx, audit.Event{Action: audit.ActionMedicineDeclared, EntityID: "abc"}))

	select {
	case e := <-delivered:
		assert.Equal(t, audit.ActionMedicineDeclared, e.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not forward the event")
	}

	cancel()
	<-done
}

func TestBufferDropsWhenFull(t *testing.T) {
	buffer := audit.NewBuffer(1, testLogger())

	require.NoError(t, buffer.Publish(context.Background(), audit.Event{EntityID: "first"}))
	// Second publish exceeds capacity; it must drop rather than block.
	require.NoError(t, buffer.Publish(context.Background(), audit.Event{EntityID: "second"}))

	e := <-buffer.Events()
	assert.Equal(t, "first", e.EntityID)
	select {
	case <-buffer.Events():
		t.Fatal("expected second event to be dropped")
	default:
	}
}
