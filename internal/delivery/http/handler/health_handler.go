package handler

import (
	"net/http"

	"drone-fire-monitor/internal/ingestion"
	"drone-fire-monitor/pkg/utils"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health() error
}

// MetricsSource exposes ingestion bridge counters.
type MetricsSource interface {
	Snapshot() ingestion.MetricsSnapshot
}

type SystemHandler struct {
	db      HealthChecker
	metrics MetricsSource
}

// NewSystemHandler creates the health and metrics handler. metrics may be nil when the
// MQTT bridge is disabled.
func NewSystemHandler(db HealthChecker, metrics MetricsSource) *SystemHandler {
	return &SystemHandler{db: db, metrics: metrics}
}

func (h *SystemHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.GET("/ingestion/metrics", h.IngestionMetrics)
}

func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.db.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"message": "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Service is running",
	})
}

func (h *SystemHandler) IngestionMetrics(c *gin.Context) {
	if h.metrics == nil {
		utils.SuccessResponse(c, http.StatusOK, "MQTT ingestion is disabled", ingestion.MetricsSnapshot{})
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Ingestion metrics retrieved successfully", h.metrics.Snapshot())
}
