package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-backend/internal/synthesis"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Backend   string            `json:"backend"`
	Checks    map[string]string `json:"checks,omitempty"`
	Synthesis *synthesis.Stats  `json:"synthesis,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	backend     string
	checks      map[string]Check
	synth       synthesis.StatsReporter
}

func NewHealthHandler(serviceName, version, backend string, checks map[string]Check, synth synthesis.Synthesizer) *HealthHandler {
	h := &HealthHandler{
		serviceName: serviceName,
		version:     version,
		backend:     backend,
		checks:      checks,
	}
	if r, ok := synth.(synthesis.StatsReporter); ok {
		h.synth = r
	}
	return h
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	results := make(map[string]string, len(h.checks))

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		err := h.checks[name](pingCtx)
		cancel()
		if err != nil {
			results[name] = "down"
			status = "degraded"
		} else {
			results[name] = "up"
		}
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Backend:   h.backend,
		Checks:    results,
	}
	if h.synth != nil {
		stats := h.synth.Stats()
		resp.Synthesis = &stats
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
