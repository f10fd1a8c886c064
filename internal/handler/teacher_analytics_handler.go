package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cohort-analytics-api/internal/dto"
	"github.com/noah-isme/cohort-analytics-api/internal/middleware"
	"github.com/noah-isme/cohort-analytics-api/internal/service"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
	"github.com/noah-isme/cohort-analytics-api/pkg/response"
)

type teacherAnalyticsService interface {
	Overview(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.TeacherOverviewResponse, bool, error)
	Hourly(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.HourlyActivityResponse, bool, error)
	FAQs(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.FAQAnalyticsResponse, bool, error)
	TopicPerformance(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.TopicPerformanceResponse, bool, error)
	Summary(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.AnalyticsSummaryResponse, bool, error)
	Refresh(ctx context.Context, teacherID string) error
}

type overviewExporter interface {
	Overview(ctx context.Context, teacherID string, query dto.ReportQuery, format string) (*service.ExportResult, error)
}

// TeacherAnalyticsHandler exposes the per-teacher cohort reports.
type TeacherAnalyticsHandler struct {
	analytics teacherAnalyticsService
	exporter  overviewExporter
}

// NewTeacherAnalyticsHandler constructs the handler.
func NewTeacherAnalyticsHandler(analytics teacherAnalyticsService, exporter overviewExporter) *TeacherAnalyticsHandler {
	return &TeacherAnalyticsHandler{analytics: analytics, exporter: exporter}
}

// Overview godoc
// @Summary Cohort overview for a teacher
// @Tags Teacher Analytics
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param start query string true "Window start (YYYY-MM-DD or RFC3339)"
// @Param end query string true "Window end (YYYY-MM-DD or RFC3339)"
// @Param refresh query bool false "Bypass cached reports"
// @Success 200 {object} dto.TeacherOverviewResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /teacher/{teacherId}/overview [get]
func (h *TeacherAnalyticsHandler) Overview(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, query, ok := h.prepare(c)
	if !ok {
		return
	}
	start := time.Now()
	overview, cacheHit, err := h.analytics.Overview(c.Request.Context(), teacherID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, cacheHit, overview)
}

// Hourly godoc
// @Summary Hour-of-day message distribution
// @Tags Teacher Analytics
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param start query string true "Window start"
// @Param end query string true "Window end"
// @Success 200 {object} dto.HourlyActivityResponse
// @Failure 400 {object} response.ErrorBody
// @Router /teacher/{teacherId}/hourly [get]
func (h *TeacherAnalyticsHandler) Hourly(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, query, ok := h.prepare(c)
	if !ok {
		return
	}
	start := time.Now()
	hourly, cacheHit, err := h.analytics.Hourly(c.Request.Context(), teacherID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, cacheHit, hourly)
}

// FAQs godoc
// @Summary Most asked questions for the cohort
// @Tags Teacher Analytics
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param start query string true "Window start"
// @Param end query string true "Window end"
// @Param limit query int false "Number of FAQs (1-50)"
// @Success 200 {object} dto.FAQAnalyticsResponse
// @Failure 400 {object} response.ErrorBody
// @Router /teacher/{teacherId}/faqs [get]
func (h *TeacherAnalyticsHandler) FAQs(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, query, ok := h.prepare(c)
	if !ok {
		return
	}
	start := time.Now()
	faqs, cacheHit, err := h.analytics.FAQs(c.Request.Context(), teacherID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, cacheHit, faqs)
}

// TopicPerformance godoc
// @Summary Successful and struggling topics
// @Tags Teacher Analytics
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param start query string true "Window start"
// @Param end query string true "Window end"
// @Success 200 {object} dto.TopicPerformanceResponse
// @Failure 400 {object} response.ErrorBody
// @Router /teacher/{teacherId}/topic-performance [get]
func (h *TeacherAnalyticsHandler) TopicPerformance(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, query, ok := h.prepare(c)
	if !ok {
		return
	}
	start := time.Now()
	topics, cacheHit, err := h.analytics.TopicPerformance(c.Request.Context(), teacherID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, cacheHit, topics)
}

// Summary godoc
// @Summary Narrative summary with recommendations
// @Tags Teacher Analytics
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param start query string true "Window start"
// @Param end query string true "Window end"
// @Success 200 {object} dto.AnalyticsSummaryResponse
// @Failure 400 {object} response.ErrorBody
// @Router /teacher/{teacherId}/analytics-summary [get]
func (h *TeacherAnalyticsHandler) Summary(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, query, ok := h.prepare(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.analytics.Summary(c.Request.Context(), teacherID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, start, cacheHit, summary)
}

// ExportOverview godoc
// @Summary Download the cohort overview
// @Tags Teacher Analytics
// @Produce text/csv
// @Produce application/pdf
// @Param teacherId path string true "Teacher ID"
// @Param start query string true "Window start"
// @Param end query string true "Window end"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /teacher/{teacherId}/overview/export [get]
func (h *TeacherAnalyticsHandler) ExportOverview(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, query, ok := h.prepare(c)
	if !ok {
		return
	}
	result, err := h.exporter.Overview(c.Request.Context(), teacherID, query, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.CacheHit)
	c.Header(response.HeaderCacheHit, strconv.FormatBool(result.CacheHit))
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// prepare binds the shared query string and honours ?refresh. It writes the
// error response itself and reports false when the request must stop.
func (h *TeacherAnalyticsHandler) prepare(c *gin.Context) (string, dto.ReportQuery, bool) {
	teacherID := c.Param("teacherId")
	query, err := bindReportQuery(c)
	if err != nil {
		response.Error(c, err)
		return "", dto.ReportQuery{}, false
	}
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh && h.analytics != nil {
		if err := h.analytics.Refresh(c.Request.Context(), teacherID); err != nil {
			response.Error(c, err)
			return "", dto.ReportQuery{}, false
		}
	}
	return teacherID, query, true
}

func bindReportQuery(c *gin.Context) (dto.ReportQuery, error) {
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return query, appErrors.Clone(appErrors.ErrInvalidArgument, "limit must be an integer")
	}
	return query, nil
}

func respond(c *gin.Context, start time.Time, cacheHit bool, payload interface{}) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta[middleware.ProcessingTimeKey] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, payload, meta)
}
