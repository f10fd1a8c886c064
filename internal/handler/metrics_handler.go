package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
	"github.com/noah-isme/cohort-analytics-api/internal/service"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
	"github.com/noah-isme/cohort-analytics-api/pkg/response"
)

type systemMetricsProvider interface {
	SystemMetrics() models.AnalyticsSystemMetrics
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics   *service.MetricsService
	analytics systemMetricsProvider
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, analytics systemMetricsProvider) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, analytics: analytics}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Liveness check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// System godoc
// @Summary Cache and component counters
// @Tags System
// @Produce json
// @Success 200 {object} models.AnalyticsSystemMetrics
// @Router /analytics/system [get]
func (h *MetricsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	snapshot := h.analytics.SystemMetrics()
	respond(c, start, false, snapshot)
}
