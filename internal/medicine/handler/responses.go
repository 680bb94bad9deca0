package handler

import (
	"time"

	"github.com/google/uuid"

	"medcycle/internal/medicine"
)

// MedicineResponse is the HTTP representation of a medicine record.
type MedicineResponse struct {
	ID              uuid.UUID  `json:"id"`
	DeclarationCode string     `json:"declaration_code"`
	DeclaredBy      uuid.UUID  `json:"declared_by"`
	Name            string     `json:"name"`
	AMM             string     `json:"amm"`
	BatchNumber     string     `json:"batch_number"`
	ExpirationDate  time.Time  `json:"expiration_date"`
	Quantity        int        `json:"quantity"`
	IsImported      bool       `json:"is_imported"`
	CountryOfOrigin string     `json:"country_of_origin,omitempty"`
	Status          string     `json:"status"`
	PharmacyNotes   string     `json:"pharmacy_notes,omitempty"`
	RegulatoryNotes string     `json:"regulatory_notes,omitempty"`
	ReviewedAt      *time.Time `json:"pharmacy_reviewed_at,omitempty"`
	ValidatedAt     *time.Time `json:"regulatory_reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FromRecord converts a domain record to its HTTP representation.
func FromRecord(rec *medicine.Record) *MedicineResponse {
	return &MedicineResponse{
		ID:              rec.ID,
		DeclarationCode: rec.DeclarationCode,
		DeclaredBy:      rec.DeclaredBy,
		Name:            rec.Name,
		AMM:             rec.AMM,
		BatchNumber:     rec.BatchNumber,
		ExpirationDate:  rec.ExpirationDate,
		Quantity:        rec.Quantity,
		IsImported:      rec.IsImported,
		CountryOfOrigin: rec.CountryOfOrigin,
		Status:          string(rec.Status),
		PharmacyNotes:   rec.PharmacyNotes,
		RegulatoryNotes: rec.RegulatoryNotes,
		ReviewedAt:      rec.PharmacyReviewedAt,
		ValidatedAt:     rec.RegulatoryReviewedAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// FromRecords converts a list of records. Always returns a non-nil slice so
// empty lists serialize as [] rather than null.
func FromRecords(recs []*medicine.Record) []*MedicineResponse {
	out := make([]*MedicineResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromRecord(rec))
	}
	return out
}

// EligibilityResponse is the HTTP response for GET /medicines/{id}/eligibility.
type EligibilityResponse struct {
	MedicineID uuid.UUID `json:"medicine_id"`
	Status     string    `json:"status"`
	Eligible   bool      `json:"eligible"`
	Reasons    []string  `json:"reasons"`
}
