// Package api exposes the tracker service over HTTP+JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"trackd/internal/model"
	"trackd/internal/tracker"
)

// Server routes HTTP requests to the tracker service. Authentication is a
// bearer session token in the Authorization header.
type Server struct {
	svc        *tracker.Service
	logger     tracker.Logger
	sessionTTL time.Duration
}

// NewServer creates a Server. A nil logger falls back to the no-op logger.
func NewServer(svc *tracker.Service, logger tracker.Logger, sessionTTL time.Duration) *Server {
	if logger == nil {
		logger = tracker.NewNopLogger()
	}
	return &Server{svc: svc, logger: logger, sessionTTL: sessionTTL}
}

// Handler returns the fully routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerAuthRoutes(mux)
	s.registerProjectRoutes(mux)
	s.registerTicketRoutes(mux)
	s.registerNotificationRoutes(mux)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service's sentinel errors to HTTP statuses.
// Anything unmapped is logged and reported as a 500 without the details.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tracker.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tracker.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, tracker.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// authed wraps a handler with bearer-token authentication. Missing or stale
// tokens get a 401 before the handler runs.
func (s *Server) authed(h func(w http.ResponseWriter, r *http.Request, user *model.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.svc.SessionUser(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		h(w, r, user)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
