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
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

func TestEngagementMetrics(t *testing.T) {
	svc := NewEngagementService(memstore.New(fixtureSnapshot()), nil, zap.NewNop())

	report, err := svc.Engagement(context.Background(), fixtureCohort(), marchWindow())
	require.NoError(t, err)

	assert.Equal(t, []models.StudentSessionCount{
		{StudentID: "s1", StudentName: "Ana", SessionCount: 2},
		{StudentID: "s2", StudentName: "Ben", SessionCount: 1},
		{StudentID: "s3", StudentName: "Cara", SessionCount: 0},
	}, report.StudentActivity)
	assert.Equal(t, 6, report.Metrics.TotalMessages)
	assert.Equal(t, 3, report.Metrics.TotalSessions)
	assert.InDelta(t, 2.0, report.Metrics.AvgMessagesPerStudent, 1e-9)
	assert.InDelta(t, 2.0, report.Metrics.AvgMessagesPerClass, 1e-9)
	assert.InDelta(t, 3.0/7.0, report.Metrics.AvgSessionsPerDay, 1e-9)
}

func TestSessionsPerStudentIncludesIdleStudents(t *testing.T) {
	svc := NewEngagementService(memstore.New(fixtureSnapshot()), nil, zap.NewNop())
	cohort := models.Cohort{TeacherID: "t2", Students: []models.Student{{ID: "s4", Name: "Dev"}, {ID: "s5", Name: "Eli"}}}

	report, err := svc.Engagement(context.Background(), cohort, marchWindow())
	require.NoError(t, err)
	assert.Equal(t, []models.StudentSessionCount{
		{StudentID: "s4", StudentName: "Dev"},
		{StudentID: "s5", StudentName: "Eli"},
	}, report.StudentActivity)
}

func TestSessionsPerStudentStableOnTies(t *testing.T) {
	cohort := models.Cohort{Students: []models.Student{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}}
	facts := []models.SessionFact{{StudentID: "c"}, {StudentID: "b"}, {StudentID: "d"}, {StudentID: "d"}}

	activity := sessionsPerStudent(cohort, facts)
	ids := make([]string, len(activity))
	for i, a := range activity {
		ids[i] = a.StudentID
	}
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids)
}

func TestSessionsPerDayFloorsSubDayWindow(t *testing.T) {
	cohort := models.Cohort{Students: []models.Student{{ID: "a"}}}
	window := models.AnalyticsWindow{Start: ts(time.March, 1, 9, 0), End: ts(time.March, 1, 11, 0)}

	metrics := engagementMetrics(cohort, []models.SessionFact{{StudentID: "a"}, {StudentID: "a"}}, window)
	assert.Equal(t, 2.0, metrics.AvgSessionsPerDay)
}

func TestEngagementEmptyCohortSkipsStorage(t *testing.T) {
	store := memstore.New(fixtureSnapshot())
	store.Fail("SessionFacts", assert.AnError)
	store.Fail("HourlyMessageCounts", assert.AnError)
	svc := NewEngagementService(store, nil, zap.NewNop())

	report, err := svc.Engagement(context.Background(), models.Cohort{TeacherID: "t-empty"}, marchWindow())
	require.NoError(t, err)
	assert.Empty(t, report.StudentActivity)
	assert.Equal(t, models.EngagementMetrics{}, report.Metrics)

	buckets, err := svc.Hourly(context.Background(), models.Cohort{TeacherID: "t-empty"}, marchWindow())
	require.NoError(t, err)
	assert.Len(t, buckets, HoursPerDay)
}

func TestHourlyHasTwentyFourOrderedBuckets(t *testing.T) {
	svc := NewEngagementService(memstore.New(fixtureSnapshot()), nil, zap.NewNop())

	buckets, err := svc.Hourly(context.Background(), fixtureCohort(), marchWindow())
	require.NoError(t, err)
	require.Len(t, buckets, HoursPerDay)

	total := 0
	for hour, b := range buckets {
		assert.Equal(t, hour, b.Hour)
		total += b.MessageCount
	}
	assert.Equal(t, 6, total)
	assert.Equal(t, 3, buckets[9].MessageCount)
	assert.Equal(t, 2, buckets[10].MessageCount)
	assert.Equal(t, 1, buckets[14].MessageCount)
}

func TestHourlyDistributionIgnoresOutOfRangeHours(t *testing.T) {
	buckets := hourlyDistribution([]models.HourCount{{Hour: 24, Count: 5}, {Hour: -1, Count: 1}, {Hour: 0, Count: 2}})
	assert.Len(t, buckets, HoursPerDay)
	assert.Equal(t, 2, buckets[0].MessageCount)
}

func TestEngagementStorageFailure(t *testing.T) {
	store := memstore.New(fixtureSnapshot())
	store.Fail("SessionFacts", assert.AnError)
	svc := NewEngagementService(store, nil, zap.NewNop())

	_, err := svc.Engagement(context.Background(), fixtureCohort(), marchWindow())
	assert.ErrorIs(t, err, appErrors.ErrStorage)
}
