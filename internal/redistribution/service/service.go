// Package service implements the health-facility request flow on top of the
// medicine transition engine.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"medcycle/internal/domain"
	"medcycle/internal/medicine"
	"medcycle/internal/redistribution"
	"medcycle/pkg/requestcontext"
)

// MedicineService is the slice of the transition engine this package needs.
type MedicineService interface {
	ListApproved(ctx context.Context) ([]*medicine.Record, error)
	Distribute(ctx context.Context, actor domain.Actor, recordID uuid.UUID) (*medicine.Record, error)
}

type Service struct {
	medicines MedicineService
	store     redistribution.Store
	logger    *slog.Logger
}

func New(medicines MedicineService, store redistribution.Store, logger *slog.Logger) *Service {
	return &Service{medicines: medicines, store: store, logger: logger}
}

// ListAvailable returns the approved and still-eligible medicines open to
// facility requests.
func (s *Service) ListAvailable(ctx context.Context) ([]*medicine.Record, error) {
	return s.medicines.ListApproved(ctx)
}

// Request hands one approved medicine to the calling facility. Role and state
// checks happen inside the transition engine; on success the request is
// recorded for the facility's history.
func (s *Service) Request(ctx context.Context, actor domain.Actor, medicineID uuid.UUID) (*medicine.Record, error) {
	rec, err := s.medicines.Distribute(ctx, actor, medicineID)
	if err != nil {
		return nil, err
	}

	p := redistribution.Proposition{
		ID:          uuid.New(),
		MedicineID:  rec.ID,
		RequestedBy: actor.ID,
		RequestedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, p); err != nil {
		// The medicine is already DISTRIBUTED; the request record is
		// bookkeeping and must not undo the transition.
		s.logger.ErrorContext(ctx, "proposition save failed",
			"medicine_id", rec.ID.String(),
			"error", err,
		)
	}
	return rec, nil
}

// History returns the facility's past requests.
func (s *Service) History(ctx context.Context, actor domain.Actor) ([]redistribution.Proposition, error) {
	return s.store.ListByFacility(ctx, actor.ID)
}
