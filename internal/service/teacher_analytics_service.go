package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/cohort-analytics-api/internal/dto"
	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

// Report names used in cache keys and metrics.
const (
	ReportOverview         = "overview"
	ReportHourly           = "hourly"
	ReportFAQs             = "faqs"
	ReportTopicPerformance = "topic-performance"
	ReportSummary          = "analytics-summary"
)

const maxMisconceptionExamples = 3

type cohortResolver interface {
	Resolve(ctx context.Context, teacherID string) (models.Cohort, error)
}

type engagementCalculator interface {
	Engagement(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) (*EngagementReport, error)
	Hourly(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) ([]models.HourlyBucket, error)
}

type completionCalculator interface {
	Sessions(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) (models.SessionMetrics, error)
}

type faqAggregator interface {
	Top(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow, limit int) ([]models.FAQ, error)
}

type misconceptionRanker interface {
	Rank(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) ([]models.Misconception, error)
}

type topicAnalyzer interface {
	Performance(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) (*TopicPerformance, error)
}

// TeacherAnalyticsConfig tunes report composition.
type TeacherAnalyticsConfig struct {
	CacheTTL               time.Duration
	QueryTimeout           time.Duration
	DefaultFAQLimit        int
	OverviewMisconceptions int
}

// TeacherAnalyticsServiceParams groups constructor dependencies.
type TeacherAnalyticsServiceParams struct {
	Cohorts        cohortResolver
	Engagement     engagementCalculator
	Completion     completionCalculator
	FAQs           faqAggregator
	Misconceptions misconceptionRanker
	Topics         topicAnalyzer
	Validator      *WindowValidator
	Cache          *CacheService
	Metrics        *MetricsService
	Logger         *zap.Logger
	Config         TeacherAnalyticsConfig
}

// TeacherAnalyticsService produces the per-teacher reports. Every report
// resolves the cohort once and fans out to the component services; any
// component failure fails the whole report.
type TeacherAnalyticsService struct {
	cohorts        cohortResolver
	engagement     engagementCalculator
	completion     completionCalculator
	faqs           faqAggregator
	misconceptions misconceptionRanker
	topics         topicAnalyzer
	validator      *WindowValidator
	cache          *CacheService
	metrics        *MetricsService
	logger         *zap.Logger
	cfg            TeacherAnalyticsConfig
	group          singleflight.Group
}

// NewTeacherAnalyticsService constructs the report service.
func NewTeacherAnalyticsService(params TeacherAnalyticsServiceParams) *TeacherAnalyticsService {
	cfg := params.Config
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 15 * time.Second
	}
	if cfg.DefaultFAQLimit < MinFAQLimit || cfg.DefaultFAQLimit > MaxFAQLimit {
		cfg.DefaultFAQLimit = 10
	}
	if cfg.OverviewMisconceptions <= 0 {
		cfg.OverviewMisconceptions = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validator := params.Validator
	if validator == nil {
		validator = NewWindowValidator(nil, cfg.DefaultFAQLimit)
	}
	return &TeacherAnalyticsService{
		cohorts:        params.Cohorts,
		engagement:     params.Engagement,
		completion:     params.Completion,
		faqs:           params.FAQs,
		misconceptions: params.Misconceptions,
		topics:         params.Topics,
		validator:      validator,
		cache:          params.Cache,
		metrics:        params.Metrics,
		logger:         logger,
		cfg:            cfg,
	}
}

// Overview composes cohort info, engagement, completion and the top
// misconceptions. The boolean reports a cache hit.
func (s *TeacherAnalyticsService) Overview(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.TeacherOverviewResponse, bool, error) {
	window, err := s.validator.Window(query)
	if err != nil {
		return nil, false, err
	}
	key := reportCacheKey(ReportOverview, teacherID, window)
	return cachedReport(ctx, s, ReportOverview, key, func(ctx context.Context) (*dto.TeacherOverviewResponse, error) {
		cohort, err := s.cohorts.Resolve(ctx, teacherID)
		if err != nil {
			return nil, err
		}

		var (
			engagement     *EngagementReport
			sessions       models.SessionMetrics
			misconceptions []models.Misconception
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			engagement, err = s.engagement.Engagement(gctx, cohort, window)
			return err
		})
		g.Go(func() error {
			var err error
			sessions, err = s.completion.Sessions(gctx, cohort, window)
			return err
		})
		g.Go(func() error {
			var err error
			misconceptions, err = s.misconceptions.Rank(gctx, cohort, window)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		engagementMetrics := models.EngagementMetrics{
			AvgMessagesPerStudent: round2(engagement.Metrics.AvgMessagesPerStudent),
			AvgMessagesPerClass:   round2(engagement.Metrics.AvgMessagesPerClass),
			AvgSessionsPerDay:     round2(engagement.Metrics.AvgSessionsPerDay),
			TotalMessages:         engagement.Metrics.TotalMessages,
			TotalSessions:         engagement.Metrics.TotalSessions,
		}
		sessionMetrics := models.SessionMetrics{
			TotalSessions:      sessions.TotalSessions,
			CompletedSessions:  sessions.CompletedSessions,
			CompletionRate:     round2(sessions.CompletionRate * 100),
			AvgDurationMinutes: round2(sessions.AvgDurationMinutes),
		}

		return &dto.TeacherOverviewResponse{
			CohortInfo:        cohortInfo(cohort),
			Period:            reportPeriod(window),
			EngagementMetrics: engagementMetrics,
			SessionMetrics:    sessionMetrics,
			StudentActivity:   engagement.StudentActivity,
			TopMisconceptions: topMisconceptions(misconceptions, s.cfg.OverviewMisconceptions),
			Insights:          engagementInsights(engagementMetrics, sessionMetrics),
		}, nil
	})
}

// Hourly returns the 24 bucket histogram and its summary.
func (s *TeacherAnalyticsService) Hourly(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.HourlyActivityResponse, bool, error) {
	window, err := s.validator.Window(query)
	if err != nil {
		return nil, false, err
	}
	key := reportCacheKey(ReportHourly, teacherID, window)
	return cachedReport(ctx, s, ReportHourly, key, func(ctx context.Context) (*dto.HourlyActivityResponse, error) {
		cohort, err := s.cohorts.Resolve(ctx, teacherID)
		if err != nil {
			return nil, err
		}
		buckets, err := s.engagement.Hourly(ctx, cohort, window)
		if err != nil {
			return nil, err
		}
		return &dto.HourlyActivityResponse{
			TeacherID:          cohort.TeacherID,
			Period:             reportPeriod(window),
			HourlyDistribution: buckets,
			Summary:            hourlySummary(buckets),
		}, nil
	})
}

// FAQs returns the top FAQs, their category grouping and the merged
// misconception ranking.
func (s *TeacherAnalyticsService) FAQs(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.FAQAnalyticsResponse, bool, error) {
	window, err := s.validator.Window(query)
	if err != nil {
		return nil, false, err
	}
	limit, err := s.validator.Limit(query)
	if err != nil {
		return nil, false, err
	}
	key := reportCacheKey(ReportFAQs, teacherID, window, strconv.Itoa(limit))
	return cachedReport(ctx, s, ReportFAQs, key, func(ctx context.Context) (*dto.FAQAnalyticsResponse, error) {
		cohort, err := s.cohorts.Resolve(ctx, teacherID)
		if err != nil {
			return nil, err
		}

		var (
			top            []models.FAQ
			misconceptions []models.Misconception
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			top, err = s.faqs.Top(gctx, cohort, window, limit)
			return err
		})
		g.Go(func() error {
			var err error
			misconceptions, err = s.misconceptions.Rank(gctx, cohort, window)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		byCategory := GroupFAQsByCategory(top)
		return &dto.FAQAnalyticsResponse{
			TeacherID:      cohort.TeacherID,
			Period:         reportPeriod(window),
			TopFAQs:        top,
			FAQsByCategory: byCategory,
			Misconceptions: misconceptions,
			Summary:        summarizeFAQs(top, byCategory),
		}, nil
	})
}

// TopicPerformance returns mastered and struggling topics.
func (s *TeacherAnalyticsService) TopicPerformance(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.TopicPerformanceResponse, bool, error) {
	window, err := s.validator.Window(query)
	if err != nil {
		return nil, false, err
	}
	key := reportCacheKey(ReportTopicPerformance, teacherID, window)
	return cachedReport(ctx, s, ReportTopicPerformance, key, func(ctx context.Context) (*dto.TopicPerformanceResponse, error) {
		cohort, err := s.cohorts.Resolve(ctx, teacherID)
		if err != nil {
			return nil, err
		}
		topics, err := s.topics.Performance(ctx, cohort, window)
		if err != nil {
			return nil, err
		}
		return &dto.TopicPerformanceResponse{
			TeacherID:        cohort.TeacherID,
			Period:           reportPeriod(window),
			SuccessfulTopics: topics.Successful,
			StrugglingTopics: topics.Struggling,
			Summary: dto.TopicPerformanceSummary{
				TotalSuccessfulTopics: len(topics.Successful),
				TotalStrugglingTopics: len(topics.Struggling),
			},
		}, nil
	})
}

// Summary synthesizes the narrative from the FAQ and topic reports.
func (s *TeacherAnalyticsService) Summary(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.AnalyticsSummaryResponse, bool, error) {
	window, err := s.validator.Window(query)
	if err != nil {
		return nil, false, err
	}
	key := reportCacheKey(ReportSummary, teacherID, window)
	return cachedReport(ctx, s, ReportSummary, key, func(ctx context.Context) (*dto.AnalyticsSummaryResponse, error) {
		cohort, err := s.cohorts.Resolve(ctx, teacherID)
		if err != nil {
			return nil, err
		}

		var (
			faqs   []models.FAQ
			topics *TopicPerformance
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			faqs, err = s.faqs.Top(gctx, cohort, window, s.cfg.DefaultFAQLimit)
			return err
		})
		g.Go(func() error {
			var err error
			topics, err = s.topics.Performance(gctx, cohort, window)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		summary := Synthesize(SummaryInput{
			Window:     window,
			FAQs:       faqs,
			Successful: topics.Successful,
			Struggling: topics.Struggling,
		})
		return &dto.AnalyticsSummaryResponse{
			TeacherID:       cohort.TeacherID,
			Period:          reportPeriod(window),
			Summary:         summary.Narrative,
			KeyInsights:     summary.KeyInsights,
			Recommendations: summary.Recommendations,
		}, nil
	})
}

// Refresh drops every cached report for the teacher.
func (s *TeacherAnalyticsService) Refresh(ctx context.Context, teacherID string) error {
	return s.cache.InvalidateTeacher(ctx, teacherID)
}

// SystemMetrics returns the instrumentation snapshot.
func (s *TeacherAnalyticsService) SystemMetrics() models.AnalyticsSystemMetrics {
	return s.metrics.Snapshot()
}

// cachedReport serves key from cache or builds it once across concurrent
// callers. Builds run under the configured query timeout, detached from the
// caller so one disconnecting client does not fail the shared build.
func cachedReport[T any](ctx context.Context, s *TeacherAnalyticsService, report, key string, build func(context.Context) (*T, error)) (*T, bool, error) {
	start := time.Now()

	var cached T
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("report cache unavailable", zap.String("report", report), zap.Error(err))
	}
	if hit {
		s.metrics.ObserveReport(report, true, time.Since(start))
		return &cached, true, nil
	}

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.QueryTimeout)
		defer cancel()

		result, err := build(buildCtx)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(buildCtx, key, result, s.cfg.CacheTTL)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	s.metrics.ObserveReport(report, false, time.Since(start))
	return value.(*T), false, nil
}

func cohortInfo(cohort models.Cohort) dto.CohortInfo {
	return dto.CohortInfo{
		TeacherID:    cohort.TeacherID,
		TeacherName:  cohort.TeacherName,
		StudentIDs:   cohort.StudentIDs(),
		StudentCount: cohort.Size(),
	}
}

func reportPeriod(window models.AnalyticsWindow) dto.ReportPeriod {
	return dto.ReportPeriod{
		Start: window.Start.UTC().Format(time.RFC3339),
		End:   window.End.UTC().Format(time.RFC3339),
		Days:  window.Days(),
	}
}

// topMisconceptions keeps the first n categories with at most three examples each.
func topMisconceptions(ranked []models.Misconception, n int) []models.Misconception {
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	top := make([]models.Misconception, len(ranked))
	for i, m := range ranked {
		examples := m.CommonMisconceptions
		if len(examples) > maxMisconceptionExamples {
			examples = examples[:maxMisconceptionExamples]
		}
		top[i] = models.Misconception{
			Category:             m.Category,
			Frequency:            m.Frequency,
			CommonMisconceptions: append([]string{}, examples...),
		}
	}
	return top
}

// hourlySummary picks the earliest busiest hour; PeakHour stays nil when
// there were no messages.
func hourlySummary(buckets []models.HourlyBucket) dto.HourlySummary {
	var summary dto.HourlySummary
	peakCount := 0
	for _, b := range buckets {
		summary.TotalMessages += b.MessageCount
		if b.MessageCount > 0 {
			summary.ActiveHours++
		}
		if b.MessageCount > peakCount {
			peakCount = b.MessageCount
			hour := b.Hour
			summary.PeakHour = &hour
		}
	}
	return summary
}

// engagementInsights labels the rounded overview figures. completion is a percentage.
func engagementInsights(engagement models.EngagementMetrics, sessions models.SessionMetrics) dto.EngagementInsights {
	var insights dto.EngagementInsights

	switch avg := engagement.AvgMessagesPerStudent; {
	case avg > 50:
		insights.MessageActivity = "High engagement: students are very active in conversations"
	case avg > 20:
		insights.MessageActivity = "Moderate engagement: good level of student participation"
	case avg > 5:
		insights.MessageActivity = "Low engagement: consider strategies to increase participation"
	default:
		insights.MessageActivity = "Very low engagement: immediate attention needed"
	}

	switch rate := sessions.CompletionRate; {
	case rate > 80:
		insights.CompletionTrend = "Excellent completion rate: students are staying engaged"
	case rate > 60:
		insights.CompletionTrend = "Good completion rate with room for improvement"
	case rate > 40:
		insights.CompletionTrend = "Moderate completion rate: investigate dropout causes"
	default:
		insights.CompletionTrend = "Low completion rate: intervention needed"
	}

	switch minutes := sessions.AvgDurationMinutes; {
	case minutes > 30:
		insights.SessionLength = "Long sessions: deep engagement or possible confusion"
	case minutes > 15:
		insights.SessionLength = "Session length suits focused learning"
	case minutes > 5:
		insights.SessionLength = "Short sessions: check students are getting adequate help"
	default:
		insights.SessionLength = "Very short sessions: possible technical issues or disengagement"
	}

	return insights
}
