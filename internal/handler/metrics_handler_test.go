package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
	"github.com/noah-isme/cohort-analytics-api/internal/service"
)

type fakeSystemMetrics struct {
	snapshot models.AnalyticsSystemMetrics
}

func (f fakeSystemMetrics) SystemMetrics() models.AnalyticsSystemMetrics {
	return f.snapshot
}

func newSystemContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, rec
}

func TestMetricsHandlerHealth(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)

	c, rec := newSystemContext("/health")
	handler.Health(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestMetricsHandlerSystem(t *testing.T) {
	handler := NewMetricsHandler(nil, fakeSystemMetrics{snapshot: models.AnalyticsSystemMetrics{
		CacheHits:   3,
		CacheMisses: 1,
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}})

	c, rec := newSystemContext("/analytics/system")
	handler.System(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, float64(3), payload["cacheHits"])
	assert.Equal(t, float64(1), payload["cacheMisses"])
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveReport("overview", false, 10*time.Millisecond)
	handler := NewMetricsHandler(metrics, nil)

	c, rec := newSystemContext("/metrics")
	handler.Prometheus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cohort_analytics_report_duration_seconds")
}

func TestMetricsHandlerPrometheusUnavailable(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)

	c, rec := newSystemContext("/metrics")
	handler.Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
