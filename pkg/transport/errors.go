package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rhuss/despesas/pkg/api"
	"github.com/rhuss/despesas/pkg/auth"
	"github.com/rhuss/despesas/pkg/storage"
)

// HTTPStatusFromError maps an APIError type to the corresponding HTTP status
// code. Transport-level errors (body too large, unsupported content type)
// are handled separately by the HTTP adapter.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusUnprocessableEntity
	case api.ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeTooManyRequests:
		return http.StatusTooManyRequests
	case api.ErrorTypeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response body failed", "error", err)
	}
}

// WriteErrorResponse writes apiErr as a JSON error body with an explicit
// status code.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.APIError, statusCode int) {
	WriteJSON(w, statusCode, apiErr)
}

// WriteAPIError writes an APIError response, deriving the HTTP status code
// from the error type.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	WriteErrorResponse(w, apiErr, HTTPStatusFromError(apiErr))
}

// APIErrorFrom converts an internal error into its wire representation.
// The boolean is false when err is not a known client error and the
// result is a generic server error.
func APIErrorFrom(err error) (*api.APIError, bool) {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr, true
	case errors.Is(err, auth.ErrAuthenticationFailed):
		return api.NewUserNotFoundError(), true
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrUnauthenticated):
		return api.NewUnauthorizedError(), true
	case errors.Is(err, auth.ErrTooManyRequests):
		return api.NewTooManyRequestsError(), true
	case errors.Is(err, storage.ErrNotFound):
		return api.NewExpenseNotFoundError(), true
	default:
		return api.NewServerError(), false
	}
}

// WriteError maps err to an API error and writes it. Unknown errors are
// logged with the request id and answered with a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, known := APIErrorFrom(err)
	if !known {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
	WriteAPIError(w, apiErr)
}
