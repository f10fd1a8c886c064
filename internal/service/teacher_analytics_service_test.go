package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cohort-analytics-api/internal/dto"
	"github.com/noah-isme/cohort-analytics-api/internal/models"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

func TestOverviewComposesReport(t *testing.T) {
	h := newAnalyticsHarness(false)

	overview, hit, err := h.service.Overview(context.Background(), "t1", marchQuery())
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, dto.CohortInfo{TeacherID: "t1", TeacherName: "Ms. Rivera", StudentIDs: []string{"s1", "s2", "s3"}, StudentCount: 3}, overview.CohortInfo)
	assert.Equal(t, 7, overview.Period.Days)
	assert.Equal(t, models.EngagementMetrics{
		AvgMessagesPerStudent: 2,
		AvgMessagesPerClass:   2,
		AvgSessionsPerDay:     0.43,
		TotalMessages:         6,
		TotalSessions:         3,
	}, overview.EngagementMetrics)
	assert.Equal(t, models.SessionMetrics{TotalSessions: 3, CompletedSessions: 2, CompletionRate: 66.67, AvgDurationMinutes: 20}, overview.SessionMetrics)
	require.Len(t, overview.StudentActivity, 3)
	assert.Equal(t, "s1", overview.StudentActivity[0].StudentID)
	assert.Equal(t, 0, overview.StudentActivity[2].SessionCount)

	require.Len(t, overview.TopMisconceptions, 3)
	assert.Equal(t, "fractions", overview.TopMisconceptions[0].Category)
	assert.Equal(t, "Session length suits focused learning", overview.Insights.SessionLength)
	assert.Equal(t, "Good completion rate with room for improvement", overview.Insights.CompletionTrend)
	assert.Equal(t, "Very low engagement: immediate attention needed", overview.Insights.MessageActivity)
}

func TestOverviewServedFromCache(t *testing.T) {
	h := newAnalyticsHarness(true)
	ctx := context.Background()

	first, hit, err := h.service.Overview(ctx, "t1", marchQuery())
	require.NoError(t, err)
	assert.False(t, hit)

	h.store.Fail("SessionFacts", assert.AnError)
	second, hit, err := h.service.Overview(ctx, "t1", marchQuery())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
}

func TestOverviewEmptyCohort(t *testing.T) {
	h := newAnalyticsHarness(false)

	overview, _, err := h.service.Overview(context.Background(), "t-empty", marchQuery())
	require.NoError(t, err)
	assert.Equal(t, models.EngagementMetrics{}, overview.EngagementMetrics)
	assert.Equal(t, models.SessionMetrics{}, overview.SessionMetrics)
	assert.Empty(t, overview.StudentActivity)
	assert.Empty(t, overview.TopMisconceptions)
	assert.Zero(t, overview.CohortInfo.StudentCount)
}

func TestOverviewStudentsOutsideWindowReportZero(t *testing.T) {
	h := newAnalyticsHarness(false)

	overview, _, err := h.service.Overview(context.Background(), "t2", marchQuery())
	require.NoError(t, err)
	assert.Equal(t, []models.StudentSessionCount{
		{StudentID: "s4", StudentName: "Dev"},
		{StudentID: "s5", StudentName: "Eli"},
	}, overview.StudentActivity)
}

func TestOverviewFailsWholeReportOnComponentError(t *testing.T) {
	h := newAnalyticsHarness(false)
	h.store.Fail("LowSuccess", assert.AnError)

	overview, _, err := h.service.Overview(context.Background(), "t1", marchQuery())
	assert.Nil(t, overview)
	assert.ErrorIs(t, err, appErrors.ErrStorage)
}

func TestReportsRejectBadWindowBeforeLookup(t *testing.T) {
	h := newAnalyticsHarness(false)
	query := dto.ReportQuery{Start: "2024-03-01", End: "2024-03-01"}

	_, _, err := h.service.Overview(context.Background(), "nobody", query)
	assert.ErrorIs(t, err, appErrors.ErrInvalidArgument)
	assert.Equal(t, "start must be before end", appErrors.FromError(err).Message)

	_, _, err = h.service.Summary(context.Background(), "t1", query)
	assert.ErrorIs(t, err, appErrors.ErrInvalidArgument)
}

func TestReportsUnknownTeacher(t *testing.T) {
	h := newAnalyticsHarness(false)

	_, _, err := h.service.Hourly(context.Background(), "nobody", marchQuery())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, _, err = h.service.TopicPerformance(context.Background(), "nobody", marchQuery())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestHourlyReport(t *testing.T) {
	h := newAnalyticsHarness(false)

	report, _, err := h.service.Hourly(context.Background(), "t1", marchQuery())
	require.NoError(t, err)
	require.Len(t, report.HourlyDistribution, HoursPerDay)
	assert.Equal(t, 6, report.Summary.TotalMessages)
	require.NotNil(t, report.Summary.PeakHour)
	assert.Equal(t, 9, *report.Summary.PeakHour)
	assert.Equal(t, 3, report.Summary.ActiveHours)
}

func TestHourlySummaryNoMessages(t *testing.T) {
	summary := hourlySummary(hourlyDistribution(nil))
	assert.Nil(t, summary.PeakHour)
	assert.Zero(t, summary.ActiveHours)

	tied := hourlySummary(hourlyDistribution([]models.HourCount{{Hour: 20, Count: 4}, {Hour: 7, Count: 4}}))
	require.NotNil(t, tied.PeakHour)
	assert.Equal(t, 7, *tied.PeakHour)
}

func TestFAQReportLimitOne(t *testing.T) {
	h := newAnalyticsHarness(false)
	query := marchQuery()
	query.Limit = ptr(1)

	report, _, err := h.service.FAQs(context.Background(), "t1", query)
	require.NoError(t, err)
	require.Len(t, report.TopFAQs, 1)
	assert.Equal(t, "algebra", report.TopFAQs[0].Category)
	assert.Equal(t, dto.FAQSummary{TotalFAQs: 1, CategoriesCount: 1, AvgSuccessRate: 0.78}, report.Summary)
	assert.Len(t, report.Misconceptions, 3)
}

func TestFAQReportRejectsLimit(t *testing.T) {
	h := newAnalyticsHarness(false)
	for _, limit := range []int{0, 51} {
		query := marchQuery()
		query.Limit = ptr(limit)

		_, _, err := h.service.FAQs(context.Background(), "t1", query)
		assert.ErrorIs(t, err, appErrors.ErrInvalidArgument)
	}
}

func TestLimitIgnoredOutsideFAQReport(t *testing.T) {
	h := newAnalyticsHarness(false)
	ctx := context.Background()
	query := marchQuery()
	query.Limit = ptr(0)

	_, _, err := h.service.Overview(ctx, "t1", query)
	assert.NoError(t, err)
	_, _, err = h.service.Hourly(ctx, "t1", query)
	assert.NoError(t, err)
	_, _, err = h.service.TopicPerformance(ctx, "t1", query)
	assert.NoError(t, err)
	_, _, err = h.service.Summary(ctx, "t1", query)
	assert.NoError(t, err)
}

func TestFAQReportEmptyCohort(t *testing.T) {
	h := newAnalyticsHarness(false)

	report, _, err := h.service.FAQs(context.Background(), "t-empty", marchQuery())
	require.NoError(t, err)
	assert.Empty(t, report.TopFAQs)
	assert.Empty(t, report.FAQsByCategory)
	assert.Empty(t, report.Misconceptions)
}

func TestTopicPerformanceReport(t *testing.T) {
	h := newAnalyticsHarness(false)

	report, _, err := h.service.TopicPerformance(context.Background(), "t1", marchQuery())
	require.NoError(t, err)
	assert.Equal(t, dto.TopicPerformanceSummary{TotalSuccessfulTopics: 2, TotalStrugglingTopics: 2}, report.Summary)
}

func TestSummaryReport(t *testing.T) {
	h := newAnalyticsHarness(false)

	report, _, err := h.service.Summary(context.Background(), "t1", marchQuery())
	require.NoError(t, err)
	assert.Contains(t, report.Summary, "students asked 62 questions")
	assert.Contains(t, report.Summary, "The best-performing topic was decimals")
	assert.NotEmpty(t, report.KeyInsights)
	assert.NotEmpty(t, report.Recommendations)

	empty, _, err := h.service.Summary(context.Background(), "t-empty", marchQuery())
	require.NoError(t, err)
	assert.Equal(t, InsufficientDataSummary().Narrative, empty.Summary)
}

func TestReportsAreIdempotent(t *testing.T) {
	h := newAnalyticsHarness(false)
	ctx := context.Background()

	a, _, err := h.service.FAQs(ctx, "t1", marchQuery())
	require.NoError(t, err)
	b, _, err := h.service.FAQs(ctx, "t1", marchQuery())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConcurrentOverviewRequests(t *testing.T) {
	h := newAnalyticsHarness(true)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := h.service.Overview(context.Background(), "t1", marchQuery())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, h.cacheRepo.keys())

	_, hit, err := h.service.Overview(context.Background(), "t1", marchQuery())
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestReportTimeout(t *testing.T) {
	h := newAnalyticsHarness(false)
	h.service.cfg.QueryTimeout = time.Nanosecond

	_, _, err := h.service.Overview(context.Background(), "t1", marchQuery())
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)
}

func TestRefreshInvalidatesTeacherReports(t *testing.T) {
	h := newAnalyticsHarness(true)
	ctx := context.Background()

	_, _, err := h.service.Overview(ctx, "t1", marchQuery())
	require.NoError(t, err)
	require.NoError(t, h.service.Refresh(ctx, "t1"))
	assert.Equal(t, []string{"analytics:*:t1:*"}, h.cacheRepo.deleted)

	_, hit, err := h.service.Overview(ctx, "t1", marchQuery())
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRefreshQuotesGlobCharacters(t *testing.T) {
	h := newAnalyticsHarness(true)

	require.NoError(t, h.service.Refresh(context.Background(), "t*:1"))
	assert.Equal(t, []string{`analytics:*:t\*|1:*`}, h.cacheRepo.deleted)
}

func TestReportCacheKey(t *testing.T) {
	key := reportCacheKey(ReportFAQs, "t1", marchWindow(), "10")
	assert.Equal(t, "analytics:faqs:t1:2024-03-01T00|00|00Z:2024-03-08T00|00|00Z:10", key)
}

func TestSystemMetricsCountsReports(t *testing.T) {
	h := newAnalyticsHarness(false)

	_, _, err := h.service.Hourly(context.Background(), "t1", marchQuery())
	require.NoError(t, err)

	snapshot := h.service.SystemMetrics()
	assert.Equal(t, uint64(1), snapshot.ReportsServed)
	assert.Positive(t, snapshot.DBQueryCount)
}
