//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcycle/pkg/testutil/containers"
)

const auditSchema = `
CREATE TABLE audit_events (
    id          UUID PRIMARY KEY,
    recorded_at TIMESTAMPTZ NOT NULL,
    actor_id    UUID,
    action      TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    entity_id   TEXT NOT NULL,
    from_status TEXT NOT NULL DEFAULT '',
    to_status   TEXT NOT NULL DEFAULT '',
    notes       TEXT NOT NULL DEFAULT '',
    request_id  TEXT NOT NULL DEFAULT '',
    client_ip   TEXT NOT NULL DEFAULT '',
    user_agent  TEXT NOT NULL DEFAULT ''
)`

func newEvent(entityID string, at time.Time, action Action) Event {
	return Event{
		ID:         uuid.New(),
		Timestamp:  at,
		ActorID:    uuid.New(),
		Action:     action,
		EntityType: EntityMedicine,
		EntityID:   entityID,
		FromStatus: "SUBMITTED",
		ToStatus:   "PHARMACY_VERIFIED",
		Notes:      "sealed",
		RequestID:  "req-1",
		ClientIP:   "203.0.113.7",
		UserAgent:  "curl/8.5",
	}
}

func TestPostgresStoreAppendAndList(t *testing.T) {
	pg := containers.NewPostgresContainer(t, auditSchema)
	store := NewPostgresStore(pg.DB)
	ctx := context.Background()

	entityID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Microsecond)

	first := newEvent(entityID, base, ActionMedicineDeclared)
	second := newEvent(entityID, base.Add(time.Minute), ActionMedicineVerified)
	unrelated := newEvent(uuid.NewString(), base, ActionMedicineDeclared)

	// Insert out of order; listing must come back chronological.
	require.NoError(t, store.Append(ctx, second))
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, unrelated))

	events, err := store.ListByEntity(ctx, EntityMedicine, entityID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)
	assert.Equal(t, ActionMedicineDeclared, events[0].Action)
	assert.Equal(t, first.ActorID, events[0].ActorID)
	assert.Equal(t, "sealed", events[0].Notes)
	assert.Equal(t, "203.0.113.7", events[0].ClientIP)
	assert.True(t, events[0].Timestamp.Equal(base))
}

func TestPostgresStoreAppendIsIdempotent(t *testing.T) {
	pg := containers.NewPostgresContainer(t, auditSchema)
	store := NewPostgresStore(pg.DB)
	ctx := context.Background()

	entityID := uuid.NewString()
	event := newEvent(entityID, time.Now().UTC().Truncate(time.Microsecond), ActionMedicineDeclared)

	require.NoError(t, store.Append(ctx, event))
	require.NoError(t, store.Append(ctx, event), "replayed event must not error")

	events, err := store.ListByEntity(ctx, EntityMedicine, entityID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
