package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

// HoursPerDay is the fixed length of the hourly histogram.
const HoursPerDay = 24

// ActivityRepository reads session and message facts for a cohort.
type ActivityRepository interface {
	SessionFacts(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.SessionFact, error)
	HourlyMessageCounts(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.HourCount, error)
}

// EngagementReport bundles the session-derived engagement figures.
type EngagementReport struct {
	StudentActivity []models.StudentSessionCount
	Metrics         models.EngagementMetrics
}

// EngagementService computes activity volume metrics for a cohort.
type EngagementService struct {
	repo ActivityRepository
	instrumentation
}

// NewEngagementService constructs an engagement calculator.
func NewEngagementService(repo ActivityRepository, metrics *MetricsService, logger *zap.Logger) *EngagementService {
	return &EngagementService{repo: repo, instrumentation: newInstrumentation(metrics, logger)}
}

// Engagement returns sessions per student and the message/session averages.
// An empty cohort yields zero metrics and an empty activity list.
func (s *EngagementService) Engagement(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) (*EngagementReport, error) {
	if cohort.Empty() {
		return &EngagementReport{StudentActivity: []models.StudentSessionCount{}}, nil
	}

	var facts []models.SessionFact
	err := s.read(ctx, componentSessions, func(ctx context.Context) error {
		var err error
		facts, err = s.repo.SessionFacts(ctx, cohort.StudentIDs(), window)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &EngagementReport{
		StudentActivity: sessionsPerStudent(cohort, facts),
		Metrics:         engagementMetrics(cohort, facts, window),
	}, nil
}

// Hourly returns exactly 24 buckets of student messages by UTC hour of day.
func (s *EngagementService) Hourly(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) ([]models.HourlyBucket, error) {
	if cohort.Empty() {
		return hourlyDistribution(nil), nil
	}

	var counts []models.HourCount
	err := s.read(ctx, componentHourly, func(ctx context.Context) error {
		var err error
		counts, err = s.repo.HourlyMessageCounts(ctx, cohort.StudentIDs(), window)
		return err
	})
	if err != nil {
		return nil, err
	}
	return hourlyDistribution(counts), nil
}

// sessionsPerStudent left-joins the roster onto sessions so idle students
// report zero, then orders by count descending keeping roster order on ties.
func sessionsPerStudent(cohort models.Cohort, facts []models.SessionFact) []models.StudentSessionCount {
	counts := make(map[string]int, cohort.Size())
	for _, f := range facts {
		counts[f.StudentID]++
	}

	activity := make([]models.StudentSessionCount, 0, cohort.Size())
	for _, st := range cohort.Students {
		activity = append(activity, models.StudentSessionCount{
			StudentID:    st.ID,
			StudentName:  st.Name,
			SessionCount: counts[st.ID],
		})
	}
	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].SessionCount > activity[j].SessionCount
	})
	return activity
}

func engagementMetrics(cohort models.Cohort, facts []models.SessionFact, window models.AnalyticsWindow) models.EngagementMetrics {
	if cohort.Empty() {
		return models.EngagementMetrics{}
	}

	perStudent := make(map[string]int, cohort.Size())
	total := 0
	for _, f := range facts {
		perStudent[f.StudentID] += f.StudentMessages
		total += f.StudentMessages
	}

	var rosterTotal float64
	for _, st := range cohort.Students {
		rosterTotal += float64(perStudent[st.ID])
	}

	return models.EngagementMetrics{
		AvgMessagesPerStudent: rosterTotal / float64(cohort.Size()),
		AvgMessagesPerClass:   ratio(total, cohort.Size()),
		AvgSessionsPerDay:     ratio(len(facts), window.Days()),
		TotalMessages:         total,
		TotalSessions:         len(facts),
	}
}

func hourlyDistribution(counts []models.HourCount) []models.HourlyBucket {
	buckets := make([]models.HourlyBucket, HoursPerDay)
	for hour := range buckets {
		buckets[hour].Hour = hour
	}
	for _, c := range counts {
		if c.Hour < 0 || c.Hour >= HoursPerDay {
			continue
		}
		buckets[c.Hour].MessageCount += c.Count
	}
	return buckets
}
