package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

// CompletionService computes session completion and mean duration.
type CompletionService struct {
	repo ActivityRepository
	instrumentation
}

// NewCompletionService constructs a completion calculator.
func NewCompletionService(repo ActivityRepository, metrics *MetricsService, logger *zap.Logger) *CompletionService {
	return &CompletionService{repo: repo, instrumentation: newInstrumentation(metrics, logger)}
}

// Sessions returns session metrics with CompletionRate as a ratio in [0, 1].
func (s *CompletionService) Sessions(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) (models.SessionMetrics, error) {
	if cohort.Empty() {
		return models.SessionMetrics{}, nil
	}

	var facts []models.SessionFact
	err := s.read(ctx, componentCompletion, func(ctx context.Context) error {
		var err error
		facts, err = s.repo.SessionFacts(ctx, cohort.StudentIDs(), window)
		return err
	})
	if err != nil {
		return models.SessionMetrics{}, err
	}
	return sessionMetrics(facts), nil
}

// sessionMetrics averages duration over closed sessions only; open sessions
// still count toward the totals.
func sessionMetrics(facts []models.SessionFact) models.SessionMetrics {
	var (
		completed   int
		closed      int
		totalMinute float64
	)
	for _, f := range facts {
		if f.Completed() {
			completed++
		}
		if f.EndedAt == nil {
			continue
		}
		minutes := f.EndedAt.Sub(f.StartedAt).Minutes()
		if minutes < 0 {
			minutes = 0
		}
		totalMinute += minutes
		closed++
	}

	metrics := models.SessionMetrics{
		TotalSessions:     len(facts),
		CompletedSessions: completed,
		CompletionRate:    ratio(completed, len(facts)),
	}
	if closed > 0 {
		metrics.AvgDurationMinutes = totalMinute / float64(closed)
	}
	return metrics
}
