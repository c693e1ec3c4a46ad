package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/marathonfantasy/internal/athlete"
	"github.com/dmitrymomot/marathonfantasy/internal/game"
	"github.com/dmitrymomot/marathonfantasy/internal/session"
	"github.com/dmitrymomot/marathonfantasy/pkg/binder"
)

// response is the JSON envelope for all API responses.
type response struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Data: data})
}

// respondError maps the session error taxonomy onto HTTP status classes:
// InvalidArgument 400, NotFound 404, Expired 401, Unavailable 503, anything
// else 500. Internal detail is redacted outside development.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var (
		status int
		code   string
		msg    = err.Error()
	)

	switch {
	case errors.Is(err, session.ErrInvalidArgument), errors.Is(err, athlete.ErrInvalidGender),
		errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType):
		status, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, session.ErrNotFound), errors.Is(err, game.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrExpired):
		status, code = http.StatusUnauthorized, "session_expired"
	case errors.Is(err, session.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "store_unavailable"
		if !h.env.IsDevelopment() {
			msg = "service temporarily unavailable"
		}
	default:
		status, code = http.StatusInternalServerError, "internal_error"
		if !h.env.IsDevelopment() {
			msg = "internal server error"
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Error: &errorDetail{Code: code, Message: msg}})
}
