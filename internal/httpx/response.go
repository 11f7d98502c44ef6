package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"water-delivery/internal/apperr"
	"water-delivery/internal/logger"
)

// WriteJSON writes v with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps an error kind to the HTTP status a client sees
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNegativeAmount):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidTransition), errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Field     string   `json:"field,omitempty"`
	Allowed   []string `json:"allowed,omitempty"`
	RequestID string   `json:"request_id"`
	Timestamp string   `json:"timestamp"`
}

// WriteError writes an error response in JSON format. Internal errors are
// logged and their message is not exposed.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	requestID := logger.RequestID(r.Context())
	statusCode := StatusFor(err)

	resp := errorResponse{
		Error:     err.Error(),
		Code:      apperr.Code(err),
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if d, ok := apperr.Details(err); ok {
		resp.Field = d.Field
		resp.Allowed = d.Allowed
	}

	if statusCode >= http.StatusInternalServerError {
		log.Error("request_failed", "Request failed", requestID, err, map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		if statusCode == http.StatusInternalServerError {
			resp.Error = "Internal server error"
		}
	}

	WriteJSON(w, statusCode, resp)
}
