// Package medicine holds the medicine declaration entity, its workflow status
// graph, and the redistribution eligibility rules. Everything here is pure
// domain logic; orchestration lives in the service subpackage.
package medicine

import (
	"time"

	"github.com/google/uuid"
)

// Status is the workflow state of a declared medicine.
type Status string

const (
	StatusSubmitted                 Status = "SUBMITTED"
	StatusPharmacyVerified          Status = "PHARMACY_VERIFIED"
	StatusPharmacyRejected          Status = "PHARMACY_REJECTED"
	StatusApprovedForRedistribution Status = "APPROVED_FOR_REDISTRIBUTION"
	StatusRestrictedUse             Status = "RESTRICTED_USE"
	StatusRejectedRegulatory        Status = "REJECTED_REGULATORY"
	StatusDistributed               Status = "DISTRIBUTED"
)

// AllStatuses lists every workflow status in graph order.
func AllStatuses() []Status {
	return []Status{
		StatusSubmitted,
		StatusPharmacyVerified,
		StatusPharmacyRejected,
		StatusApprovedForRedistribution,
		StatusRestrictedUse,
		StatusRejectedRegulatory,
		StatusDistributed,
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusPharmacyVerified, StatusPharmacyRejected,
		StatusApprovedForRedistribution, StatusRestrictedUse,
		StatusRejectedRegulatory, StatusDistributed:
		return true
	}
	return false
}

// ReviewDecision is the regulatory agent's requested outcome. The engine may
// override it with a safety block.
type ReviewDecision string

const (
	DecisionApproved   ReviewDecision = "APPROVED"
	DecisionRestricted ReviewDecision = "RESTRICTED"
	DecisionRejected   ReviewDecision = "REJECTED"
)

// Record is a declared medicine unit moving through the workflow.
type Record struct {
	ID         uuid.UUID
	DeclaredBy uuid.UUID

	Name        string
	AMM         string // market-authorization code
	BatchNumber string

	ExpirationDate time.Time
	Quantity       int

	// Origin is immutable once declared. CountryOfOrigin is set iff
	// IsImported is true.
	IsImported      bool
	CountryOfOrigin string

	Status Status

	// DeclarationCode is a short human-facing reference generated at
	// declaration.
	DeclarationCode string

	// Review fields are write-once: absent before the corresponding review,
	// immutable after.
	PharmacyReviewedBy   *uuid.UUID
	PharmacyReviewedAt   *time.Time
	PharmacyNotes        string
	RegulatoryReviewedBy *uuid.UUID
	RegulatoryReviewedAt *time.Time
	RegulatoryNotes      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the medicine is past its expiration date at the
// given evaluation time.
func (r *Record) IsExpired(now time.Time) bool {
	return now.After(r.ExpirationDate)
}

// Clone returns a deep copy so in-memory stores never hand out aliased
// pointers to their internal state.
func (r *Record) Clone() *Record {
	out := *r
	if r.PharmacyReviewedBy != nil {
		v := *r.PharmacyReviewedBy
		out.PharmacyReviewedBy = &v
	}
	if r.PharmacyReviewedAt != nil {
		v := *r.PharmacyReviewedAt
		out.PharmacyReviewedAt = &v
	}
	if r.RegulatoryReviewedBy != nil {
		v := *r.RegulatoryReviewedBy
		out.RegulatoryReviewedBy = &v
	}
	if r.RegulatoryReviewedAt != nil {
		v := *r.RegulatoryReviewedAt
		out.RegulatoryReviewedAt = &v
	}
	return &out
}
