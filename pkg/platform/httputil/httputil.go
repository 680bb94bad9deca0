// Package httputil holds the JSON response helpers shared by every handler
// package. Error bodies follow the error / error_description envelope.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "medcycle/pkg/domain-errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its HTTP status and writes the error envelope.
// Internal errors omit the description so storage details never leak to
// clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.DomainError
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// Validator is implemented by request types that check their own fields
// after decoding.
type Validator interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T and runs its validation
// when present. On failure it writes the error response and returns ok=false;
// the caller just returns.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "request decode failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		var zero T
		return zero, false
	}
	if v, ok := any(&req).(Validator); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			var zero T
			return zero, false
		}
	}
	return req, true
}
