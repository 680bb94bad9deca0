package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore appends audit events to the audit_events table. Rows are
// insert-only; the table carries no update path.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (
			id, recorded_at, actor_id, action, entity_type, entity_id,
			from_status, to_status, notes, request_id, client_ip, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.ActorID,
		string(event.Action),
		event.EntityType,
		event.EntityID,
		event.FromStatus,
		event.ToStatus,
		event.Notes,
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]Event, error) {
	query := `
		SELECT id, recorded_at, actor_id, action, entity_type, entity_id,
		       from_status, to_status, notes, request_id, client_ip, user_agent
		FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY recorded_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e      Event
			action string
			actor  uuid.NullUUID
		)
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &actor, &action, &e.EntityType, &e.EntityID,
			&e.FromStatus, &e.ToStatus, &e.Notes, &e.RequestID, &e.ClientIP, &e.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		if actor.Valid {
			e.ActorID = actor.UUID
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}
