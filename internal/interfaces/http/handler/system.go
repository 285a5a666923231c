package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// SystemHandler serves liveness and readiness probes
type SystemHandler struct {
	BaseHandler
	version string
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewSystemHandler creates a SystemHandler running checks on readiness
func NewSystemHandler(version string, checks map[string]HealthCheck) *SystemHandler {
	return &SystemHandler{version: version, checks: checks, timeout: 2 * time.Second}
}

// RegisterRoutes mounts the probes. They sit outside the API group and
// need no authentication.
func (h *SystemHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok", "version": h.version})
}

// Ready handles GET /ready, failing with 503 when any check fails
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		resp := dto.NewErrorResponse(dto.ErrCodeUnavailable, "Dependencies unavailable", middleware.GetRequestID(c))
		resp.Data = results
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	h.Success(c, results)
}
