package handler

import (
	"strings"
	"time"

	"medcycle/internal/medicine"
	dErrors "medcycle/pkg/domain-errors"
)

// DeclareRequest is the HTTP request body for POST /medicines.
type DeclareRequest struct {
	Name            string    `json:"name"`
	AMM             string    `json:"amm"`
	BatchNumber     string    `json:"batch_number"`
	ExpirationDate  time.Time `json:"expiration_date"`
	Quantity        int       `json:"quantity"`
	IsImported      bool      `json:"is_imported"`
	CountryOfOrigin string    `json:"country_of_origin"`
}

// Validate normalizes the declaration fields. Full business validation
// (expiry, origin consistency) belongs to the service.
func (r *DeclareRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.AMM = strings.TrimSpace(r.AMM)
	r.BatchNumber = strings.TrimSpace(r.BatchNumber)
	r.CountryOfOrigin = strings.TrimSpace(r.CountryOfOrigin)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// PharmacyReviewRequest is the HTTP request body for POST
// /medicines/{id}/pharmacy-review.
type PharmacyReviewRequest struct {
	IsValid bool   `json:"is_valid"`
	Notes   string `json:"notes"`
}

// RegulatoryReviewRequest is the HTTP request body for POST
// /medicines/{id}/regulatory-review.
type RegulatoryReviewRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`

	parsedDecision medicine.ReviewDecision
}

// Validate parses the requested decision.
func (r *RegulatoryReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	d := medicine.ReviewDecision(strings.ToUpper(strings.TrimSpace(r.Decision)))
	if _, err := d.TargetStatus(); err != nil {
		return err
	}
	r.parsedDecision = d
	return nil
}

// ParsedDecision returns the validated decision.
func (r *RegulatoryReviewRequest) ParsedDecision() medicine.ReviewDecision {
	return r.parsedDecision
}
