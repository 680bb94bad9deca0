// Package handler exposes the facility-facing redistribution endpoints.
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
	medhandler "medcycle/internal/medicine/handler"
	"medcycle/internal/platform/middleware"
	"medcycle/internal/redistribution"
	dErrors "medcycle/pkg/domain-errors"
	"medcycle/pkg/platform/httputil"
	"medcycle/pkg/requestcontext"
)

// Service defines the redistribution operations the handler depends on.
type Service interface {
	ListAvailable(ctx context.Context) ([]*medicine.Record, error)
	Request(ctx context.Context, actor domain.Actor, medicineID uuid.UUID) (*medicine.Record, error)
	History(ctx context.Context, actor domain.Actor) ([]redistribution.Proposition, error)
}

// Handler exposes redistribution endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a redistribution handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the redistribution endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/redistribution/available", h.HandleListAvailable)
	r.Post("/redistribution/requests", h.HandleRequest)
	r.Get("/redistribution/requests", h.HandleHistory)
}

// RequestBody is the HTTP request body for POST /redistribution/requests.
type RequestBody struct {
	MedicineID uuid.UUID `json:"medicine_id"`
}

// Validate rejects a missing medicine id.
func (b *RequestBody) Validate() error {
	if b == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if b.MedicineID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "medicine_id is required")
	}
	return nil
}

// PropositionResponse is the HTTP representation of a past request.
type PropositionResponse struct {
	ID          uuid.UUID `json:"id"`
	MedicineID  uuid.UUID `json:"medicine_id"`
	RequestedBy uuid.UUID `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// HandleListAvailable handles GET /redistribution/available requests.
func (h *Handler) HandleListAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.ActorFrom(r); !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	recs, err := h.service.ListAvailable(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, medhandler.FromRecords(recs))
}

// HandleRequest handles POST /redistribution/requests requests.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	body, ok := httputil.DecodeAndPrepare[RequestBody](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.Request(ctx, actor, body.MedicineID)
	if err != nil {
		h.logger.ErrorContext(ctx, "redistribution request failed",
			"request_id", requestID,
			"user_id", actor.ID,
			"medicine_id", body.MedicineID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "medicine distributed",
		"request_id", requestID,
		"user_id", actor.ID,
		"medicine_id", rec.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, medhandler.FromRecord(rec))
}

// HandleHistory handles GET /redistribution/requests requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	props, err := h.service.History(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]PropositionResponse, 0, len(props))
	for _, p := range props {
		out = append(out, PropositionResponse{
			ID:          p.ID,
			MedicineID:  p.MedicineID,
			RequestedBy: p.RequestedBy,
			RequestedAt: p.RequestedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
