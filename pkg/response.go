package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
)

// APIResponse is the envelope every HTTP endpoint answers with.
//
//	{"success": true,  "data": {...}}
//	{"success": false, "error": "not found: article not found"}
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a successful response.
func JSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, APIResponse{Success: true, Data: data})
}

// Error writes an error response, picking the status from the wrapped sentinel.
// Unrecognised errors are reported as 500 without leaking their text.
func Error(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = ErrInternal.Error()
	}

	writeEnvelope(w, status, APIResponse{Success: false, Error: message})
}

// ErrorWithMessage writes an error response with an explicit status and message.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, APIResponse{Success: false, Error: message})
}

func writeEnvelope(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
