package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobscraper-web/internal/domain"
	"jobscraper-web/internal/session"
	"jobscraper-web/internal/view"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// errorStatus maps domain errors onto a status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "view_not_found"
	case errors.Is(err, session.ErrShutdown):
		return http.StatusServiceUnavailable, "shutting_down"
	case errors.Is(err, view.ErrClosed):
		return http.StatusGone, "view_closed"
	case errors.Is(err, domain.ErrUnknownRole):
		return http.StatusBadRequest, "unknown_role"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	WriteError(w, r, status, code, msg)
}
