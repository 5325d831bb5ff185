// Package handler provides HTTP handlers for the Sentinel portal boundary.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prn-tf/sentinel-portal/internal/domain"
)

// apiError is the JSON error envelope. Every domain error is recovered here
// into a user-visible notice; none propagate as a process failure.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a domain error to an HTTP status and JSON notice.
func writeError(w http.ResponseWriter, err error) {
	var (
		status int
		code   string
	)

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, domain.ErrSessionNotFound):
		status, code = http.StatusUnauthorized, "session_not_found"
	case errors.Is(err, domain.ErrAccessDenied):
		status, code = http.StatusForbidden, "access_denied"
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		status, code = http.StatusConflict, "duplicate_username"
	case errors.Is(err, domain.ErrAccountNotFound):
		status, code = http.StatusNotFound, "account_not_found"
	case errors.Is(err, domain.ErrStorageUnavailable):
		status, code = http.StatusServiceUnavailable, "storage_unavailable"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
	}

	writeJSON(w, status, apiError{Code: code, Message: userMessage(err, code)})
}

// userMessage keeps internal detail out of responses for server-side
// failures while passing validation context through.
func userMessage(err error, code string) string {
	switch code {
	case "internal_error":
		return "internal server error"
	case "storage_unavailable":
		return "storage unavailable"
	default:
		return err.Error()
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
