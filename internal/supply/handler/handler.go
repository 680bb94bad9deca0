// Package handler exposes the orthopedic supply listings over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medcycle/internal/domain"
	"medcycle/internal/platform/middleware"
	"medcycle/internal/supply"
	supplyservice "medcycle/internal/supply/service"
	dErrors "medcycle/pkg/domain-errors"
	"medcycle/pkg/platform/httputil"
	"medcycle/pkg/requestcontext"
)

// Service defines the supply operations the handler depends on.
type Service interface {
	Create(ctx context.Context, actor domain.Actor, in supplyservice.CreateInput) (*supply.Supply, error)
	ListActive(ctx context.Context, actor domain.Actor) ([]*supply.Supply, error)
	Deactivate(ctx context.Context, actor domain.Actor, id uuid.UUID) (*supply.Supply, error)
}

// Handler exposes supply endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a supply handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the supply endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/supplies", h.HandleCreate)
	r.Get("/supplies", h.HandleList)
	r.Post("/supplies/{id}/deactivate", h.HandleDeactivate)
}

// CreateRequest is the HTTP request body for POST /supplies.
type CreateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Condition   string  `json:"condition"`
	Quantity    int     `json:"quantity"`
	ForSale     bool    `json:"for_sale"`
	Price       float64 `json:"price"`

	parsedCondition supply.Condition
}

// Validate normalizes the listing fields and parses the condition grade.
func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	c := supply.Condition(strings.ToUpper(strings.TrimSpace(r.Condition)))
	if !c.Valid() {
		return dErrors.New(dErrors.CodeValidation, "unknown condition "+r.Condition)
	}
	r.parsedCondition = c
	return nil
}

// SupplyResponse is the HTTP representation of a supply listing.
type SupplyResponse struct {
	ID            uuid.UUID  `json:"id"`
	DonorID       uuid.UUID  `json:"donor_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Condition     string     `json:"condition"`
	Quantity      int        `json:"quantity"`
	ForSale       bool       `json:"for_sale"`
	Price         float64    `json:"price,omitempty"`
	Active        bool       `json:"active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func fromSupply(s *supply.Supply) *SupplyResponse {
	return &SupplyResponse{
		ID:            s.ID,
		DonorID:       s.DonorID,
		Name:          s.Name,
		Description:   s.Description,
		Condition:     string(s.Condition),
		Quantity:      s.Quantity,
		ForSale:       s.ForSale,
		Price:         s.Price,
		Active:        s.Active,
		DeactivatedAt: s.DeactivatedAt,
		CreatedAt:     s.CreatedAt,
	}
}

// HandleCreate handles POST /supplies requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	s, err := h.service.Create(ctx, actor, supplyservice.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Condition:   req.parsedCondition,
		Quantity:    req.Quantity,
		ForSale:     req.ForSale,
		Price:       req.Price,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "supply listing failed",
			"request_id", requestID,
			"user_id", actor.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "supply listed",
		"request_id", requestID,
		"user_id", actor.ID,
		"supply_id", s.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromSupply(s))
}

// HandleList handles GET /supplies requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	supplies, err := h.service.ListActive(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*SupplyResponse, 0, len(supplies))
	for _, s := range supplies {
		out = append(out, fromSupply(s))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleDeactivate handles POST /supplies/{id}/deactivate requests.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := middleware.ActorFrom(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid supply id"))
		return
	}

	s, err := h.service.Deactivate(ctx, actor, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "supply deactivation failed",
			"request_id", requestID,
			"user_id", actor.ID,
			"supply_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "supply deactivated",
		"request_id", requestID,
		"user_id", actor.ID,
		"supply_id", s.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, fromSupply(s))
}
