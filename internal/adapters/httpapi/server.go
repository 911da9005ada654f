// Package httpapi exposes the assistant service over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scrumhand/scrumhand"
	"github.com/scrumhand/scrumhand/internal/logging"
	"github.com/scrumhand/scrumhand/pkg/domain"
)

// Server routes HTTP requests to the assistant service.
type Server struct {
	service *scrumhand.Service
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the HTTP handler for the service.
func NewHandler(service *scrumhand.Service, opts ...Option) http.Handler {
	s := &Server{
		service: service,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/invoke", s.Invoke)
	r.Get("/agents", s.ListAgents)
	r.Get("/sessions", s.ListSessions)
	r.Get("/sessions/{sessionID}", s.GetSession)
	r.Delete("/sessions/{sessionID}", s.DeleteSession)
	r.Get("/healthz", s.GetHealth)
	r.Handle("/metrics", promhttp.Handler())

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// InvokeRequest is the body of POST /invoke.
type InvokeRequest struct {
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	MaxSteps  int    `json:"max_steps,omitempty"`
}

// InvokeResponse carries the messages a turn appended to the transcript.
type InvokeResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
}

// AgentInfo describes one configured agent.
type AgentInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Invoke handles the POST /invoke request.
func (s *Server) Invoke(w http.ResponseWriter, r *http.Request) {
	var body InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invoke: invalid request body", "err", err)
		return
	}
	if body.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	messages, err := s.service.Turn(r.Context(), body.AgentID, body.SessionID, body.Message, body.MaxSteps)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownAgent):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrEmptyMessage):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, fmt.Sprintf("Invoke error: %v", err), http.StatusInternalServerError)
			s.logger.Error("invoke failed", "err", err, "session_id", body.SessionID)
		}
		return
	}

	writeJSON(w, s.logger, InvokeResponse{SessionID: body.SessionID, Messages: messages})
}

// ListAgents handles the GET /agents request.
func (s *Server) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents := s.service.Agents()
	out := make([]AgentInfo, 0, len(agents))
	for _, a := range agents {
		out = append(out, AgentInfo{ID: a.ID, Description: a.Description})
	}
	writeJSON(w, s.logger, out)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.service.Sessions(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("list sessions failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, s.logger, map[string][]string{"sessions": ids})
}

// GetSession handles the GET /sessions/{sessionID} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	state, err := s.service.History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("load session failed", "err", err, "session_id", sessionID)
		return
	}
	writeJSON(w, s.logger, state)
}

// DeleteSession handles the DELETE /sessions/{sessionID} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("delete session failed", "err", err, "session_id", sessionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok", "version": scrumhand.Version})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
