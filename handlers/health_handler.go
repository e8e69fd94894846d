package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
}

func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// LivenessCheck handles kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck reports per-dependency status and 503 when any probe fails.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := make(map[string]string, len(h.checks))
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			components[name] = "down"
			status = http.StatusServiceUnavailable
		} else {
			components[name] = "up"
		}
	}
	c.JSON(status, gin.H{
		"version":    h.version,
		"components": components,
	})
}
