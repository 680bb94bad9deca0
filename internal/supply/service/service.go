// Package service implements the supply listing operations.
package service

import (
	"context"

	"github.com/google/uuid"

	"medcycle/internal/audit"
	"medcycle/internal/domain"
	"medcycle/internal/policy"
	"medcycle/internal/supply"
	dErrors "medcycle/pkg/domain-errors"
	"medcycle/pkg/requestcontext"
)

type Service struct {
	store   supply.Store
	auditor *audit.Publisher
}

func New(store supply.Store, auditor *audit.Publisher) *Service {
	return &Service{store: store, auditor: auditor}
}

// CreateInput carries the donor-supplied listing fields.
type CreateInput struct {
	Name        string
	Description string
	Condition   supply.Condition
	Quantity    int
	ForSale     bool
	Price       float64
}

// Create lists a new supply. Price is required iff the item is for sale.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*supply.Supply, error) {
	if err := policy.Require(actor.Role, policy.OpCreateSupply); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !in.Condition.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "condition must be NEW, VERY_GOOD or GOOD")
	}
	if in.Quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be a positive integer")
	}
	if in.ForSale && in.Price <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "price is required for items offered for sale")
	}
	if !in.ForSale && in.Price != 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "price is only valid for items offered for sale")
	}

	now := requestcontext.Now(ctx)
	item := &supply.Supply{
		ID:          uuid.New(),
		DonorID:     actor.ID,
		Name:        in.Name,
		Description: in.Description,
		Condition:   in.Condition,
		Quantity:    in.Quantity,
		ForSale:     in.ForSale,
		Price:       in.Price,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, item); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:    actor.ID,
		Action:     audit.ActionSupplyListed,
		EntityType: audit.EntitySupply,
		EntityID:   item.ID.String(),
	})
	return item, nil
}

// ListActive returns every active listing.
func (s *Service) ListActive(ctx context.Context, actor domain.Actor) ([]*supply.Supply, error) {
	if err := policy.Require(actor.Role, policy.OpListSupplies); err != nil {
		return nil, err
	}
	return s.store.ListActive(ctx)
}

// Deactivate soft-deletes a listing. Only the donor (or an admin) may do it.
func (s *Service) Deactivate(ctx context.Context, actor domain.Actor, id uuid.UUID) (*supply.Supply, error) {
	if err := policy.Require(actor.Role, policy.OpDeactivateSupply); err != nil {
		return nil, err
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && item.DonorID != actor.ID {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "only the donor may deactivate a listing")
	}
	if !item.Active {
		return nil, dErrors.New(dErrors.CodeInvalidState, "supply is already deactivated")
	}

	now := requestcontext.Now(ctx)
	item.Active = false
	item.DeactivatedAt = &now
	item.UpdatedAt = now
	if err := s.store.Update(ctx, item); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:    actor.ID,
		Action:     audit.ActionSupplyDeactivated,
		EntityType: audit.EntitySupply,
		EntityID:   item.ID.String(),
	})
	return item, nil
}
