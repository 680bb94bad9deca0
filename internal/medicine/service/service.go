// Package service implements the transition engine: role-gated operations
// that move a medicine declaration along the workflow graph, emit audit
// entries, and enforce the automatic safety blocks.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medcycle/internal/audit"
	"medcycle/internal/domain"
	"medcycle/internal/medicine"
	"medcycle/internal/platform/metrics"
	"medcycle/internal/policy"
	dErrors "medcycle/pkg/domain-errors"
	"medcycle/pkg/requestcontext"
)

// Service orchestrates the medicine workflow. Each mutating operation checks
// the access policy first, then runs read-validate-write-audit inside a
// per-record transaction, taking a single time snapshot from the request
// context so expiry is judged once per operation.
type Service struct {
	store   medicine.Store
	auditor *audit.Publisher
	metrics *metrics.Metrics
	tx      *recordTx
	tracer  trace.Tracer
}

func New(store medicine.Store, auditor *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		auditor: auditor,
		metrics: m,
		tx:      newRecordTx(),
		tracer:  otel.Tracer("medcycle/medicine"),
	}
}

// DeclareInput carries the citizen-supplied declaration fields.
type DeclareInput struct {
	Name            string
	AMM             string
	BatchNumber     string
	ExpirationDate  time.Time
	Quantity        int
	IsImported      bool
	CountryOfOrigin string
}

// Declare creates a new medicine record in SUBMITTED. Expired medicines are
// rejected before any record exists; the rejection itself is still audited.
func (s *Service) Declare(ctx context.Context, actor domain.Actor, in DeclareInput) (*medicine.Record, error) {
	ctx, span := s.tracer.Start(ctx, "medicine.declare")
	defer span.End()

	if err := policy.Require(actor.Role, policy.OpDeclareMedicine); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	if err := validateDeclaration(in); err != nil {
		return nil, err
	}
	if now.After(in.ExpirationDate) {
		// Rejected before a record ever exists; the attempt is still audited.
		s.auditor.Record(ctx, audit.Event{
			ActorID:    actor.ID,
			Action:     audit.ActionDeclarationRejected,
			EntityType: audit.EntityMedicine,
			Notes:      "cannot declare expired medicines",
		})
		return nil, dErrors.New(dErrors.CodeValidation, "cannot declare expired medicines")
	}

	id := uuid.New()
	rec := &medicine.Record{
		ID:              id,
		DeclaredBy:      actor.ID,
		Name:            in.Name,
		AMM:             in.AMM,
		BatchNumber:     in.BatchNumber,
		ExpirationDate:  in.ExpirationDate,
		Quantity:        in.Quantity,
		IsImported:      in.IsImported,
		CountryOfOrigin: in.CountryOfOrigin,
		Status:          medicine.StatusSubmitted,
		DeclarationCode: declarationCode(id),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:    actor.ID,
		Action:     audit.ActionMedicineDeclared,
		EntityType: audit.EntityMedicine,
		EntityID:   rec.ID.String(),
		ToStatus:   string(medicine.StatusSubmitted),
	})
	s.metrics.IncDeclarations()
	s.metrics.IncTransition(string(medicine.StatusSubmitted))
	return rec, nil
}

func validateDeclaration(in DeclareInput) error {
	if in.Name == "" || in.AMM == "" || in.BatchNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "name, amm and batch number are required")
	}
	if in.Quantity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be a positive integer")
	}
	if in.ExpirationDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "expiration date is required")
	}
	if in.IsImported && in.CountryOfOrigin == "" {
		return dErrors.New(dErrors.CodeValidation, "country of origin is required for imported medicines")
	}
	if !in.IsImported && in.CountryOfOrigin != "" {
		return dErrors.New(dErrors.CodeValidation, "country of origin is only valid for imported medicines")
	}
	return nil
}

func declarationCode(id uuid.UUID) string {
	return "MED-" + strings.ToUpper(id.String()[:8])
}

// PharmacyReview moves a SUBMITTED medicine to PHARMACY_VERIFIED or
// PHARMACY_REJECTED and stamps the write-once reviewer fields.
func (s *Service) PharmacyReview(ctx context.Context, actor domain.Actor, recordID uuid.UUID, isValid bool, notes string) (*medicine.Record, error) {
	ctx, span := s.tracer.Start(ctx, "medicine.pharmacy_review")
	defer span.End()

	if err := policy.Require(actor.Role, policy.OpPharmacyReview); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	target := medicine.StatusPharmacyVerified
	action := audit.ActionMedicineVerified
	if !isValid {
		target = medicine.StatusPharmacyRejected
		action = audit.ActionMedicineRejected
	}

	var updated *medicine.Record
	err := s.tx.Run(ctx, recordID, func() error {
		rec, err := s.store.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.Status != medicine.StatusSubmitted {
			return dErrors.New(dErrors.CodeInvalidState,
				fmt.Sprintf("pharmacy review requires status %s, medicine is %s", medicine.StatusSubmitted, rec.Status))
		}
		if err := medicine.Transition(rec.Status, target); err != nil {
			return err
		}

		from := rec.Status
		rec.Status = target
		rec.PharmacyReviewedBy = &actor.ID
		rec.PharmacyReviewedAt = &now
		rec.PharmacyNotes = notes
		rec.UpdatedAt = now
		if err := s.store.Update(ctx, rec); err != nil {
			return err
		}

		s.auditor.Record(ctx, audit.Event{
			ActorID:    actor.ID,
			Action:     action,
			EntityType: audit.EntityMedicine,
			EntityID:   rec.ID.String(),
			FromStatus: string(from),
			ToStatus:   string(target),
			Notes:      notes,
		})
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(target))
	return updated, nil
}

// RegulatoryReview applies the agent's decision to a PHARMACY_VERIFIED
// medicine. Safety rules override the requested decision: imported or expired
// medicines land on REJECTED_REGULATORY no matter what was asked, and the
// audit entry names every override reason that applied.
func (s *Service) RegulatoryReview(ctx context.Context, actor domain.Actor, recordID uuid.UUID, decision medicine.ReviewDecision, notes string) (*medicine.Record, error) {
	ctx, span := s.tracer.Start(ctx, "medicine.regulatory_review")
	defer span.End()

	if err := policy.Require(actor.Role, policy.OpRegulatoryReview); err != nil {
		return nil, err
	}
	requested, err := decision.TargetStatus()
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	var updated *medicine.Record
	err = s.tx.Run(ctx, recordID, func() error {
		rec, err := s.store.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.Status != medicine.StatusPharmacyVerified {
			return dErrors.New(dErrors.CodeInvalidState,
				fmt.Sprintf("regulatory review requires status %s, medicine is %s", medicine.StatusPharmacyVerified, rec.Status))
		}

		effective, overrides := medicine.ApplyRegulatoryRules(rec, requested, now)
		if err := medicine.Transition(rec.Status, effective); err != nil {
			return err
		}

		from := rec.Status
		rec.Status = effective
		rec.RegulatoryReviewedBy = &actor.ID
		rec.RegulatoryReviewedAt = &now
		rec.RegulatoryNotes = notes
		rec.UpdatedAt = now
		if err := s.store.Update(ctx, rec); err != nil {
			return err
		}

		auditNotes := notes
		if len(overrides) > 0 {
			suffix := "automatic override: " + strings.Join(overrides, "; ")
			if auditNotes != "" {
				auditNotes += " | " + suffix
			} else {
				auditNotes = suffix
			}
			for _, reason := range overrides {
				s.metrics.IncOverride(reason)
			}
		}
		s.auditor.Record(ctx, audit.Event{
			ActorID:    actor.ID,
			Action:     audit.ActionMedicineValidated,
			EntityType: audit.EntityMedicine,
			EntityID:   rec.ID.String(),
			FromStatus: string(from),
			ToStatus:   string(effective),
			Notes:      auditNotes,
		})
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(updated.Status))
	return updated, nil
}

// Distribute hands an approved medicine to a health facility, moving it to
// DISTRIBUTED. Eligibility is re-checked defensively even though only
// approved medicines can reach this call.
func (s *Service) Distribute(ctx context.Context, actor domain.Actor, recordID uuid.UUID) (*medicine.Record, error) {
	ctx, span := s.tracer.Start(ctx, "medicine.distribute")
	defer span.End()

	if err := policy.Require(actor.Role, policy.OpRequestDistribution); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	var updated *medicine.Record
	err := s.tx.Run(ctx, recordID, func() error {
		rec, err := s.store.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec.Status != medicine.StatusApprovedForRedistribution {
			return dErrors.New(dErrors.CodeInvalidState,
				fmt.Sprintf("distribution requires status %s, medicine is %s", medicine.StatusApprovedForRedistribution, rec.Status))
		}
		if result := medicine.Evaluate(rec, now); !result.Eligible {
			return dErrors.New(dErrors.CodeInvalidState,
				"medicine is no longer eligible for redistribution: "+strings.Join(result.Reasons, "; "))
		}
		if err := medicine.Transition(rec.Status, medicine.StatusDistributed); err != nil {
			return err
		}

		from := rec.Status
		rec.Status = medicine.StatusDistributed
		rec.UpdatedAt = now
		if err := s.store.Update(ctx, rec); err != nil {
			return err
		}

		s.auditor.Record(ctx, audit.Event{
			ActorID:    actor.ID,
			Action:     audit.ActionMedicineDistributed,
			EntityType: audit.EntityMedicine,
			EntityID:   rec.ID.String(),
			FromStatus: string(from),
			ToStatus:   string(medicine.StatusDistributed),
		})
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(medicine.StatusDistributed))
	return updated, nil
}

// ListPendingPharmacy returns medicines awaiting pharmacist verification.
func (s *Service) ListPendingPharmacy(ctx context.Context, actor domain.Actor) ([]*medicine.Record, error) {
	if err := policy.Require(actor.Role, policy.OpListPendingPharmacy); err != nil {
		return nil, err
	}
	return s.store.ListByStatus(ctx, medicine.StatusSubmitted)
}

// ListPendingRegulatory returns medicines awaiting regulatory validation.
func (s *Service) ListPendingRegulatory(ctx context.Context, actor domain.Actor) ([]*medicine.Record, error) {
	if err := policy.Require(actor.Role, policy.OpListPendingRegulator); err != nil {
		return nil, err
	}
	return s.store.ListByStatus(ctx, medicine.StatusPharmacyVerified)
}

// ListApproved returns approved medicines that also pass the eligibility
// evaluator. Status alone should suffice; the double-check defends against
// records that expired after approval.
func (s *Service) ListApproved(ctx context.Context) ([]*medicine.Record, error) {
	now := requestcontext.Now(ctx)
	recs, err := s.store.ListByStatus(ctx, medicine.StatusApprovedForRedistribution)
	if err != nil {
		return nil, err
	}
	out := recs[:0]
	for _, rec := range recs {
		if medicine.Evaluate(rec, now).Eligible {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListMine returns the calling citizen's own declarations.
func (s *Service) ListMine(ctx context.Context, actor domain.Actor) ([]*medicine.Record, error) {
	if err := policy.Require(actor.Role, policy.OpListOwnDeclarations); err != nil {
		return nil, err
	}
	return s.store.ListByDeclarer(ctx, actor.ID)
}

// Get fetches one declaration. Citizens may only read their own records;
// reviewer roles and admins may read any.
func (s *Service) Get(ctx context.Context, actor domain.Actor, recordID uuid.UUID) (*medicine.Record, error) {
	rec, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleCitizen && rec.DeclaredBy != actor.ID {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "citizens may only view their own declarations")
	}
	return rec, nil
}

// Evaluate reports redistribution eligibility for one medicine. Open to any
// authenticated actor; the result depends only on the record's fields and the
// request time snapshot.
func (s *Service) Evaluate(ctx context.Context, recordID uuid.UUID) (*medicine.Record, medicine.Eligibility, error) {
	rec, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return nil, medicine.Eligibility{}, err
	}
	return rec, medicine.Evaluate(rec, requestcontext.Now(ctx)), nil
}
