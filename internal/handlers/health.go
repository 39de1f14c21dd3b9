package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/minerals/internal/database"
	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for database health checks
	HealthCheckTimeout = 2 * time.Second
)

// Readiness states reported per dependency.
const (
	StateConnected     = "connected"
	StateDisconnected  = "disconnected"
	StateNotConfigured = "not_configured"
	StateAvailable     = "available"
	StateMissing       = "missing"
)

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db              database.Pinger
	applicationFile string
	startTime       time.Time
	env             string
}

// NewHealthHandler creates a new HealthHandler instance. db may be nil
// when parties are not stored in Postgres.
func NewHealthHandler(db database.Pinger, applicationFile, env string) *HealthHandler {
	return &HealthHandler{
		db:              db,
		applicationFile: applicationFile,
		startTime:       time.Now(),
		env:             env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Application string `json:"application"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health endpoint.
// This is a basic liveness check that always returns 200 OK.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// It checks that the application file exists and, when configured, that
// the database answers. Returns 503 Service Unavailable if either fails.
func (h *HealthHandler) Ready(c *gin.Context) {
	response := ReadyResponse{
		Status:      "ready",
		Database:    StateNotConfigured,
		Application: StateAvailable,
	}
	log := middleware.GetLogger(c)

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		defer cancel()

		response.Database = StateConnected
		if err := h.db.Ping(ctx); err != nil {
			if log != nil {
				log.Error("Database health check failed", err, logger.Fields{
					"timeout": HealthCheckTimeout.String(),
				})
			}
			response.Database = StateDisconnected
			response.Status = "not_ready"
		}
	}

	if h.applicationFile != "" {
		if _, err := os.Stat(h.applicationFile); err != nil {
			if log != nil {
				log.Warn("Application file unavailable", logger.Fields{
					"path":  h.applicationFile,
					"error": err.Error(),
				})
			}
			response.Application = StateMissing
			response.Status = "not_ready"
		}
	}

	status := http.StatusOK
	if response.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
