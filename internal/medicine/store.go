package medicine

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract consumed by the transition engine. All
// operations are record-level atomic with respect to the same ID; the engine
// additionally serializes its read-validate-write sequence per record.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	ListByStatus(ctx context.Context, status Status) ([]*Record, error)
	ListByDeclarer(ctx context.Context, declaredBy uuid.UUID) ([]*Record, error)
}
