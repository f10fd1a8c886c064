package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
	"github.com/noah-isme/cohort-analytics-api/internal/repository/memstore"
)

func TestCompletionMetrics(t *testing.T) {
	svc := NewCompletionService(memstore.New(fixtureSnapshot()), nil, zap.NewNop())

	metrics, err := svc.Sessions(context.Background(), fixtureCohort(), marchWindow())
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.TotalSessions)
	assert.Equal(t, 2, metrics.CompletedSessions)
	assert.InDelta(t, 2.0/3.0, metrics.CompletionRate, 1e-9)
	assert.InDelta(t, 20.0, metrics.AvgDurationMinutes, 1e-9)
}

func TestCompletionRateBounds(t *testing.T) {
	start := ts(time.March, 2, 9, 0)
	cases := [][]models.SessionFact{
		nil,
		{{Status: "active", StartedAt: start}},
		{{Status: models.SessionStatusCompleted, StartedAt: start}},
		{{Status: models.SessionStatusCompleted, StartedAt: start}, {Status: "abandoned", StartedAt: start}},
	}
	for _, facts := range cases {
		metrics := sessionMetrics(facts)
		assert.GreaterOrEqual(t, metrics.CompletionRate, 0.0)
		assert.LessOrEqual(t, metrics.CompletionRate, 1.0)
		if metrics.TotalSessions == 0 {
			assert.Zero(t, metrics.CompletionRate)
		} else {
			assert.Equal(t, float64(metrics.CompletedSessions)/float64(metrics.TotalSessions), metrics.CompletionRate)
		}
	}
}

func TestOpenSessionsExcludedFromDuration(t *testing.T) {
	start := ts(time.March, 2, 9, 0)
	metrics := sessionMetrics([]models.SessionFact{
		{StartedAt: start, EndedAt: ptr(start.Add(45 * time.Minute)), Status: models.SessionStatusCompleted},
		{StartedAt: start, Status: models.SessionStatusCompleted},
	})
	assert.Equal(t, 2, metrics.TotalSessions)
	assert.Equal(t, 2, metrics.CompletedSessions)
	assert.InDelta(t, 45.0, metrics.AvgDurationMinutes, 1e-9)
}

func TestCompletionEmptyCohort(t *testing.T) {
	svc := NewCompletionService(memstore.New(fixtureSnapshot()), nil, zap.NewNop())

	metrics, err := svc.Sessions(context.Background(), models.Cohort{}, marchWindow())
	require.NoError(t, err)
	assert.Equal(t, models.SessionMetrics{}, metrics)
}
