package http

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salescli/internal/config"
	"salescli/internal/services"
)

// HealthHandler serves the liveness, readiness and version endpoints
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler backed by service
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// Register mounts the probe endpoints on r. Probes answer GET and HEAD.
func (h *HealthHandler) Register(r chi.Router) {
	for _, route := range []struct {
		path    string
		handler http.HandlerFunc
	}{
		{config.HealthEndpoint, h.HealthCheck},
		{config.ReadyEndpoint, h.ReadinessCheck},
	} {
		r.Get(route.path, route.handler)
		r.Head(route.path, route.handler)
	}
}

// HealthCheck reports that the process is up
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck runs the registered checks; any failure answers 503
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	status := h.service.ReadinessCheck(r.Context())
	if status.Status != "ready" {
		failing := make([]string, 0, len(status.Services))
		for name, s := range status.Services {
			if s.Status != "ready" {
				failing = append(failing, name)
			}
		}
		sort.Strings(failing)
		h.logger.DebugContext(r.Context(), "not ready", slog.Any("failing", failing))
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// Version reports build information
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
