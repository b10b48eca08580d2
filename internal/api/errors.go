package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-tuya/internal/platform"
	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeInternal    = "internal_error"
	ErrCodeValidation  = "validation_error"
	ErrCodeUnavailable = "unavailable"
	ErrCodeBadGateway  = "bad_gateway"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// platformError classifies a platform or command error. ok is false for
// errors that should surface as 500.
func platformError(err error) (status int, code, message string, ok bool) {
	switch {
	case errors.Is(err, platform.ErrEntityNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "select not found", true
	case errors.Is(err, platform.ErrEntityDisabled):
		return http.StatusConflict, ErrCodeConflict, "select is disabled", true
	case errors.Is(err, platform.ErrInvalidOption):
		return http.StatusUnprocessableEntity, ErrCodeValidation, err.Error(), true
	case errors.Is(err, platform.ErrEntityUnavailable):
		return http.StatusServiceUnavailable, ErrCodeUnavailable, "device is offline", true
	case errors.Is(err, iot.ErrCommandFailed), errors.Is(err, iot.ErrDeviceNotFound):
		return http.StatusBadGateway, ErrCodeBadGateway, err.Error(), true
	}
	return 0, "", "", false
}

// writePlatformError writes the response for a classified error and
// reports whether it did.
func writePlatformError(w http.ResponseWriter, err error) bool {
	status, code, message, ok := platformError(err)
	if ok {
		writeError(w, status, code, message)
	}
	return ok
}
