// Package handler exposes registration and login. Both endpoints sit behind
// the rate limiter; everything else in the API requires a token this package
// hands out.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medcycle/internal/auth"
	authservice "medcycle/internal/auth/service"
	"medcycle/pkg/platform/httputil"
	"medcycle/pkg/requestcontext"
)

// Service defines the account operations the handler depends on.
type Service interface {
	Register(ctx context.Context, in authservice.RegisterInput) (*auth.User, error)
	Login(ctx context.Context, username, password string, tokenTTL time.Duration) (*authservice.LoginResult, error)
}

// Handler exposes auth endpoints.
type Handler struct {
	service  Service
	logger   *slog.Logger
	tokenTTL time.Duration
}

// New constructs an auth handler with its dependencies.
func New(service Service, logger *slog.Logger, tokenTTL time.Duration) *Handler {
	return &Handler{service: service, logger: logger, tokenTTL: tokenTTL}
}

// Register mounts the auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// HandleRegister handles POST /auth/register requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Register(ctx, authservice.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.ParsedRole(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestID,
			"username", req.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"user_id", user.ID,
		"role", user.Role,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromUser(user))
}

// HandleLogin handles POST /auth/login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.Username, req.Password, h.tokenTTL)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"username", req.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user logged in",
		"request_id", requestID,
		"user_id", result.User.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, &LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        FromUser(result.User),
	})
}
