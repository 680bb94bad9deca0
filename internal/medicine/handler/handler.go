// Package handler wires the medicine workflow endpoints to the transition
// engine.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medcycle/internal/domain"
	"medcycle/internal/medicine"
	medservice "medcycle/internal/medicine/service"
	"medcycle/internal/platform/middleware"
	dErrors "medcycle/pkg/domain-errors"
	"medcycle/pkg/platform/httputil"
	"medcycle/pkg/requestcontext"
)

// Service defines the medicine operations the handler depends on.
type Service interface {
	Declare(ctx context.Context, actor domain.Actor, in medservice.DeclareInput) (*medicine.Record, error)
	PharmacyReview(ctx context.Context, actor domain.Actor, recordID uuid.UUID, isValid bool, notes string) (*medicine.Record, error)
	RegulatoryReview(ctx context.Context, actor domain.Actor, recordID uuid.UUID, decision medicine.ReviewDecision, notes string) (*medicine.Record, error)
	ListPendingPharmacy(ctx context.Context, actor domain.Actor) ([]*medicine.Record, error)
	ListPendingRegulatory(ctx context.Context, actor domain.Actor) ([]*medicine.Record, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]*medicine.Record, error)
	Get(ctx context.Context, actor domain.Actor, recordID uuid.UUID) (*medicine.Record, error)
	Evaluate(ctx context.Context, recordID uuid.UUID) (*medicine.Record, medicine.Eligibility, error)
}

// Handler exposes the medicine workflow over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a medicine handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the medicine endpoints on the router. All routes require an
// authenticated actor; role checks happen in the service layer.
func (h *Handler) Register(r chi.Router) {
	r.Post("/medicines", h.HandleDeclare)
	r.Get("/medicines/mine", h.HandleListMine)
	r.Get("/medicines/pending/pharmacy", h.HandleListPendingPharmacy)
	r.Get("/medicines/pending/regulatory", h.HandleListPendingRegulatory)
	r.Get("/medicines/{id}", h.HandleGet)
	r.Get("/medicines/{id}/eligibility", h.HandleEligibility)
	r.Post("/medicines/{id}/pharmacy-review", h.HandlePharmacyReview)
	r.Post("/medicines/{id}/regulatory-review", h.HandleRegulatoryReview)
}

// HandleDeclare handles POST /medicines requests.
func (h *Handler) HandleDeclare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[DeclareRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.Declare(ctx, actor, medservice.DeclareInput{
		Name:            req.Name,
		AMM:             req.AMM,
		BatchNumber:     req.BatchNumber,
		ExpirationDate:  req.ExpirationDate,
		Quantity:        req.Quantity,
		IsImported:      req.IsImported,
		CountryOfOrigin: req.CountryOfOrigin,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "medicine declaration failed",
			"request_id", requestID,
			"user_id", actor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "medicine declared",
		"request_id", requestID,
		"user_id", actor.ID,
		"medicine_id", rec.ID,
		"declaration_code", rec.DeclarationCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, FromRecord(rec))
}

// HandleListMine handles GET /medicines/mine requests.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recs, err := h.service.ListMine(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecords(recs))
}

// HandleGet handles GET /medicines/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid medicine id"))
		return
	}

	rec, err := h.service.Get(ctx, actor, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

// HandleEligibility handles GET /medicines/{id}/eligibility requests.
func (h *Handler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.ActorFrom(r); !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid medicine id"))
		return
	}

	rec, elig, err := h.service.Evaluate(ctx, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &EligibilityResponse{
		MedicineID: rec.ID,
		Status:     string(rec.Status),
		Eligible:   elig.Eligible,
		Reasons:    elig.Reasons,
	})
}

// HandleListPendingPharmacy handles GET /medicines/pending/pharmacy requests.
func (h *Handler) HandleListPendingPharmacy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recs, err := h.service.ListPendingPharmacy(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecords(recs))
}

// HandleListPendingRegulatory handles GET /medicines/pending/regulatory requests.
func (h *Handler) HandleListPendingRegulatory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recs, err := h.service.ListPendingRegulatory(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecords(recs))
}

// HandlePharmacyReview handles POST /medicines/{id}/pharmacy-review requests.
func (h *Handler) HandlePharmacyReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid medicine id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[PharmacyReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.PharmacyReview(ctx, actor, recordID, req.IsValid, req.Notes)
	if err != nil {
		h.logger.ErrorContext(ctx, "pharmacy review failed",
			"request_id", requestID,
			"user_id", actor.ID,
			"medicine_id", recordID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "pharmacy review recorded",
		"request_id", requestID,
		"user_id", actor.ID,
		"medicine_id", rec.ID,
		"status", rec.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

// HandleRegulatoryReview handles POST /medicines/{id}/regulatory-review requests.
func (h *Handler) HandleRegulatoryReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid medicine id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegulatoryReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.RegulatoryReview(ctx, actor, recordID, req.ParsedDecision(), req.Notes)
	if err != nil {
		h.logger.ErrorContext(ctx, "regulatory review failed",
			"request_id", requestID,
			"user_id", actor.ID,
			"medicine_id", recordID,
			"decision", req.Decision,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "regulatory review recorded",
		"request_id", requestID,
		"user_id", actor.ID,
		"medicine_id", rec.ID,
		"status", rec.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}
