package supply

import (
	"context"

	"github.com/google/uuid"
)

// Store persists supply listings.
type Store interface {
	Create(ctx context.Context, s *Supply) error
	GetByID(ctx context.Context, id uuid.UUID) (*Supply, error)
	Update(ctx context.Context, s *Supply) error
	ListActive(ctx context.Context) ([]*Supply, error)
}
