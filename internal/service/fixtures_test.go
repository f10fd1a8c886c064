package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cohort-analytics-api/internal/dto"
	"github.com/noah-isme/cohort-analytics-api/internal/models"
	"github.com/noah-isme/cohort-analytics-api/internal/repository/memstore"
	"github.com/noah-isme/cohort-analytics-api/pkg/config"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

func ts(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2024, month, day, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func marchWindow() models.AnalyticsWindow {
	return models.AnalyticsWindow{Start: ts(time.March, 1, 0, 0), End: ts(time.March, 8, 0, 0)}
}

func marchQuery() dto.ReportQuery {
	return dto.ReportQuery{Start: "2024-03-01", End: "2024-03-08"}
}

func studentMessages(session string, times ...time.Time) []models.ChatMessage {
	msgs := make([]models.ChatMessage, 0, len(times))
	for i, at := range times {
		msgs = append(msgs, models.ChatMessage{
			ID:         session + "-m" + string(rune('a'+i)),
			SessionID:  session,
			Timestamp:  at,
			SenderType: models.SenderStudent,
			Content:    "question",
		})
	}
	return msgs
}

// fixtureSnapshot models teacher t1 with three students, an empty teacher,
// and teacher t2 whose sessions all fall outside March 1-8.
func fixtureSnapshot() memstore.Snapshot {
	var messages []models.ChatMessage
	messages = append(messages, studentMessages("c1", ts(time.March, 2, 9, 0), ts(time.March, 2, 9, 5), ts(time.March, 2, 9, 10))...)
	messages = append(messages,
		models.ChatMessage{ID: "c1-agent-1", SessionID: "c1", Timestamp: ts(time.March, 2, 9, 1), SenderType: "agent"},
		models.ChatMessage{ID: "c1-agent-2", SessionID: "c1", Timestamp: ts(time.March, 2, 9, 6), SenderType: "agent"},
	)
	messages = append(messages, studentMessages("c2", ts(time.March, 3, 14, 0))...)
	messages = append(messages, studentMessages("c3", ts(time.March, 4, 10, 0), ts(time.March, 4, 10, 1))...)
	messages = append(messages, studentMessages("c7", ts(time.March, 2, 9, 0), ts(time.March, 2, 9, 1), ts(time.March, 2, 9, 2), ts(time.March, 2, 9, 3), ts(time.March, 2, 9, 4))...)

	return memstore.Snapshot{
		Teachers: []models.Teacher{
			{ID: "t1", Name: "Ms. Rivera", StudentIDs: []string{"s1", "s2", "s3"}},
			{ID: "t-empty", Name: "New Teacher"},
			{ID: "t2", Name: "Mr. Okafor", StudentIDs: []string{"s4", "s5"}},
		},
		Students: []models.Student{
			{ID: "s1", Name: "Ana"}, {ID: "s2", Name: "Ben"}, {ID: "s3", Name: "Cara"},
			{ID: "s4", Name: "Dev"}, {ID: "s5", Name: "Eli"}, {ID: "s9", Name: "Outsider"},
		},
		Sessions: []models.ChatSession{
			{ID: "c1", StudentID: "s1", StartedAt: ts(time.March, 2, 9, 0), EndedAt: ptr(ts(time.March, 2, 9, 30)), Status: models.SessionStatusCompleted},
			{ID: "c2", StudentID: "s1", StartedAt: ts(time.March, 3, 14, 0), EndedAt: ptr(ts(time.March, 3, 14, 10)), Status: models.SessionStatusCompleted},
			{ID: "c3", StudentID: "s2", StartedAt: ts(time.March, 4, 10, 0), Status: "active"},
			{ID: "c4", StudentID: "s3", StartedAt: ts(time.February, 20, 10, 0), Status: models.SessionStatusCompleted},
			{ID: "c5", StudentID: "s4", StartedAt: ts(time.February, 1, 10, 0), Status: models.SessionStatusCompleted},
			{ID: "c6", StudentID: "s5", StartedAt: ts(time.April, 1, 10, 0), Status: models.SessionStatusCompleted},
			{ID: "c7", StudentID: "s9", StartedAt: ts(time.March, 2, 9, 0), Status: models.SessionStatusCompleted},
		},
		Messages: messages,
		Takeaways: []models.SessionTakeaway{
			{ID: "k1", SessionID: "c1", TakeawayType: "misconception", KeyConcepts: []string{"fractions", "decimals"}, CreatedAt: ts(time.March, 2, 10, 0)},
			{ID: "k2", SessionID: "c2", TakeawayType: "Common Misconception", KeyConcepts: []string{"fractions"}, CreatedAt: ts(time.March, 3, 15, 0)},
			{ID: "k3", SessionID: "c3", TakeawayType: "difficulty", KeyConcepts: []string{"algebra"}, CreatedAt: ts(time.March, 4, 11, 0)},
			{ID: "k4", SessionID: "c3", TakeawayType: "confusion", KeyConcepts: []string{"algebra", "fractions"}, CreatedAt: ts(time.March, 4, 12, 0)},
			{ID: "k5", SessionID: "c1", TakeawayType: "struggle", KeyConcepts: []string{"algebra"}, CreatedAt: ts(time.March, 2, 9, 45)},
			{ID: "k6", SessionID: "c7", TakeawayType: "misconception", KeyConcepts: []string{"geometry"}, CreatedAt: ts(time.March, 2, 10, 0)},
		},
		FAQs: []models.FAQ{
			{ID: "f1", Category: "algebra", QuestionText: "How do I solve for x?", FrequencyCount: 25, SuccessRate: ptr(0.78), LastAsked: ts(time.March, 2, 8, 0)},
			{ID: "f2", Category: "calculus", QuestionText: "What is a derivative?", FrequencyCount: 22, SuccessRate: ptr(0.65), LastAsked: ts(time.March, 3, 8, 0)},
			{ID: "f3", Category: "fractions", QuestionText: "How do I add fractions?", FrequencyCount: 10, SuccessRate: ptr(0.4), LastAsked: ts(time.March, 4, 8, 0)},
			{ID: "f4", Category: "fractions", QuestionText: "Why flip the second fraction?", FrequencyCount: 5, LastAsked: ts(time.March, 5, 8, 0)},
			{ID: "f5", Category: "geometry", QuestionText: "What is pi?", FrequencyCount: 99, SuccessRate: ptr(0.1), LastAsked: ts(time.January, 1, 8, 0)},
		},
		Mastery: []models.MasteryRecord{
			{StudentID: "s1", Date: ts(time.March, 2, 0, 0), ConceptsMastered: []string{"fractions", "decimals"}, SuccessRate: 0.9},
			{StudentID: "s2", Date: ts(time.March, 3, 0, 0), ConceptsMastered: []string{"fractions"}, SuccessRate: 0.7},
			{StudentID: "s1", Date: ts(time.March, 4, 0, 0), ConceptsMastered: []string{"algebra"}, SuccessRate: 0.5},
			{StudentID: "s3", Date: ts(time.March, 5, 0, 0), ConceptsMastered: []string{"decimals"}, SuccessRate: 0.8},
			{StudentID: "s9", Date: ts(time.March, 5, 0, 0), ConceptsMastered: []string{"geometry"}, SuccessRate: 1},
		},
	}
}

func fixtureCohort() models.Cohort {
	return models.Cohort{
		TeacherID:   "t1",
		TeacherName: "Ms. Rivera",
		Students:    []models.Student{{ID: "s1", Name: "Ana"}, {ID: "s2", Name: "Ben"}, {ID: "s3", Name: "Cara"}},
	}
}

type analyticsHarness struct {
	store     *memstore.Store
	cacheRepo *stubCacheRepo
	service   *TeacherAnalyticsService
}

func newAnalyticsHarness(cacheEnabled bool) *analyticsHarness {
	store := memstore.New(fixtureSnapshot())
	cacheRepo := &stubCacheRepo{}
	logger := zap.NewNop()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, logger, cacheEnabled)

	svc := NewTeacherAnalyticsService(TeacherAnalyticsServiceParams{
		Cohorts:        NewCohortService(store, metrics, logger),
		Engagement:     NewEngagementService(store, metrics, logger),
		Completion:     NewCompletionService(store, metrics, logger),
		FAQs:           NewFAQService(store, metrics, logger),
		Misconceptions: NewMisconceptionService(store, store, config.GroupByConcept, metrics, logger),
		Topics:         NewTopicService(store, store, metrics, logger),
		Validator:      NewWindowValidator(nil, 10),
		Cache:          cache,
		Metrics:        metrics,
		Logger:         logger,
		Config:         TeacherAnalyticsConfig{CacheTTL: time.Minute, QueryTimeout: 5 * time.Second, DefaultFAQLimit: 10, OverviewMisconceptions: 5},
	})
	return &analyticsHarness{store: store, cacheRepo: cacheRepo, service: svc}
}

type stubCacheRepo struct {
	mu      sync.Mutex
	store   map[string][]byte
	getErr  error
	deleted []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, pattern)
	s.store = nil
	return nil
}

func (s *stubCacheRepo) keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.store)
}
