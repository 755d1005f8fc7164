package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers exposes liveness and readiness probes.
type HealthHandlers struct {
	db *sql.DB
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db *sql.DB) *HealthHandlers {
	return &HealthHandlers{db: db}
}

// Health is the liveness probe.
func (h *HealthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "studio-admin-service",
	})
}

// Ready is the readiness probe. It fails while the database is unreachable.
func (h *HealthHandlers) Ready(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
