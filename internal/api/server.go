package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/christopher-deriv/discord-reminders/internal/handlers"
	"github.com/christopher-deriv/discord-reminders/internal/service"
	"github.com/christopher-deriv/discord-reminders/pkg/discord"
)

// Server provides the HTTP surface: the Discord interactions endpoint, a
// read-only reminder listing, health, and metrics.
type Server struct {
	svc          *service.Service
	interactions *handlers.Interactions
	logger       *logrus.Logger
	mux          *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, interactions *handlers.Interactions, registry *prometheus.Registry, logger *logrus.Logger) *Server {
	s := &Server{
		svc:          svc,
		interactions: interactions,
		logger:       logger,
		mux:          http.NewServeMux(),
	}
	s.routes(registry)
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes(registry *prometheus.Registry) {
	s.mux.HandleFunc("POST /interactions", s.handleInteractions)
	s.mux.HandleFunc("GET /api/reminders", s.handleGetReminders)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// handleInteractions receives interaction callbacks from the platform.
// Signature verification is handled at the ingress in front of this
// service; payloads arriving here are treated as authenticated.
func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	var interaction discord.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	resp := s.interactions.Handle(r.Context(), &interaction)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetReminders(w http.ResponseWriter, r *http.Request) {
	guildID := r.URL.Query().Get("guild_id")
	if guildID == "" {
		s.respondError(w, http.StatusBadRequest, "guild_id query parameter is required")
		return
	}

	reminders, err := s.svc.ListGuildReminders(r.Context(), guildID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get reminders")
		s.respondError(w, http.StatusInternalServerError, "failed to get reminders")
		return
	}

	s.respondJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
