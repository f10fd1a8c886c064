// Package memstore is an in-memory snapshot of the tutoring tables. It
// implements the same read contracts as the PostgreSQL repositories and is
// used for tests and for running the API against a JSON fixture.
package memstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

// Snapshot is the full data set held by a Store.
type Snapshot struct {
	Teachers  []models.Teacher         `json:"teachers"`
	Students  []models.Student         `json:"students"`
	Sessions  []models.ChatSession     `json:"sessions"`
	Messages  []models.ChatMessage     `json:"messages"`
	Takeaways []models.SessionTakeaway `json:"takeaways"`
	FAQs      []models.FAQ             `json:"faqs"`
	Mastery   []models.MasteryRecord   `json:"mastery"`
}

// Store serves read queries from a Snapshot. The snapshot is never mutated
// after construction; only failure injection takes the lock.
type Store struct {
	data     Snapshot
	sessions map[string]models.ChatSession

	mu       sync.RWMutex
	failures map[string]error
}

// New builds a store over the snapshot.
func New(data Snapshot) *Store {
	sessions := make(map[string]models.ChatSession, len(data.Sessions))
	for _, s := range data.Sessions {
		sessions[s.ID] = s
	}
	return &Store{data: data, sessions: sessions, failures: map[string]error{}}
}

// LoadFile reads a JSON encoded Snapshot from disk.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var data Snapshot
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return New(data), nil
}

// Fail makes the named operation return err until cleared with a nil error.
func (s *Store) Fail(operation string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, operation)
		return
	}
	s.failures[operation] = err
}

func (s *Store) check(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, ok := s.failures[operation]; ok {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

// FindTeacher returns sql.ErrNoRows for unknown teachers, like the SQL repository.
func (s *Store) FindTeacher(ctx context.Context, teacherID string) (*models.Teacher, error) {
	if err := s.check(ctx, "FindTeacher"); err != nil {
		return nil, err
	}
	for _, t := range s.data.Teachers {
		if t.ID == teacherID {
			teacher := t
			teacher.StudentIDs = append([]string(nil), t.StudentIDs...)
			return &teacher, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) StudentsByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	if err := s.check(ctx, "StudentsByIDs"); err != nil {
		return nil, err
	}
	wanted := toSet(ids)
	var students []models.Student
	for _, st := range s.data.Students {
		if _, ok := wanted[st.ID]; ok {
			students = append(students, st)
		}
	}
	return students, nil
}

func (s *Store) SessionFacts(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.SessionFact, error) {
	if err := s.check(ctx, "SessionFacts"); err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return nil, nil
	}
	cohort := toSet(studentIDs)
	counts := make(map[string]int)
	for _, m := range s.data.Messages {
		if m.SenderType == models.SenderStudent {
			counts[m.SessionID]++
		}
	}
	var facts []models.SessionFact
	for _, sess := range s.data.Sessions {
		if _, ok := cohort[sess.StudentID]; !ok || !window.Contains(sess.StartedAt) {
			continue
		}
		facts = append(facts, models.SessionFact{
			ID:              sess.ID,
			StudentID:       sess.StudentID,
			StartedAt:       sess.StartedAt,
			EndedAt:         sess.EndedAt,
			Status:          sess.Status,
			StudentMessages: counts[sess.ID],
		})
	}
	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].StartedAt.Equal(facts[j].StartedAt) {
			return facts[i].ID < facts[j].ID
		}
		return facts[i].StartedAt.Before(facts[j].StartedAt)
	})
	return facts, nil
}

func (s *Store) HourlyMessageCounts(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.HourCount, error) {
	if err := s.check(ctx, "HourlyMessageCounts"); err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return nil, nil
	}
	cohort := toSet(studentIDs)
	byHour := make(map[int]int)
	for _, m := range s.data.Messages {
		if m.SenderType != models.SenderStudent || !window.Contains(m.Timestamp) {
			continue
		}
		sess, ok := s.sessions[m.SessionID]
		if !ok {
			continue
		}
		if _, ok := cohort[sess.StudentID]; !ok {
			continue
		}
		byHour[m.Timestamp.UTC().Hour()]++
	}
	counts := make([]models.HourCount, 0, len(byHour))
	for hour, count := range byHour {
		counts = append(counts, models.HourCount{Hour: hour, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Hour < counts[j].Hour })
	return counts, nil
}

func (s *Store) FlaggedTakeaways(ctx context.Context, studentIDs []string, window models.AnalyticsWindow, patterns []string) ([]models.TakeawayFact, error) {
	if err := s.check(ctx, "FlaggedTakeaways"); err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 || len(patterns) == 0 {
		return nil, nil
	}
	cohort := toSet(studentIDs)
	var facts []models.TakeawayFact
	for _, t := range s.data.Takeaways {
		if !window.Contains(t.CreatedAt) || !matchesAny(t.TakeawayType, patterns) {
			continue
		}
		sess, ok := s.sessions[t.SessionID]
		if !ok {
			continue
		}
		if _, ok := cohort[sess.StudentID]; !ok {
			continue
		}
		facts = append(facts, models.TakeawayFact{
			SessionID:    t.SessionID,
			StudentID:    sess.StudentID,
			TakeawayType: t.TakeawayType,
			KeyConcepts:  append([]string(nil), t.KeyConcepts...),
			CreatedAt:    t.CreatedAt,
		})
	}
	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].CreatedAt.Equal(facts[j].CreatedAt) {
			return facts[i].SessionID < facts[j].SessionID
		}
		return facts[i].CreatedAt.Before(facts[j].CreatedAt)
	})
	return facts, nil
}

func (s *Store) TopAsked(ctx context.Context, window models.AnalyticsWindow, limit int) ([]models.FAQ, error) {
	if err := s.check(ctx, "TopAsked"); err != nil {
		return nil, err
	}
	faqs := s.faqsIn(window, func(models.FAQ) bool { return true })
	sort.SliceStable(faqs, func(i, j int) bool {
		if faqs[i].FrequencyCount == faqs[j].FrequencyCount {
			return faqs[i].ID < faqs[j].ID
		}
		return faqs[i].FrequencyCount > faqs[j].FrequencyCount
	})
	if limit > 0 && len(faqs) > limit {
		faqs = faqs[:limit]
	}
	return faqs, nil
}

func (s *Store) LowSuccess(ctx context.Context, window models.AnalyticsWindow, threshold float64) ([]models.FAQ, error) {
	if err := s.check(ctx, "LowSuccess"); err != nil {
		return nil, err
	}
	faqs := s.faqsIn(window, func(f models.FAQ) bool {
		return f.SuccessRate == nil || *f.SuccessRate < threshold
	})
	sort.SliceStable(faqs, func(i, j int) bool {
		if faqs[i].Category != faqs[j].Category {
			return faqs[i].Category < faqs[j].Category
		}
		if faqs[i].FrequencyCount != faqs[j].FrequencyCount {
			return faqs[i].FrequencyCount > faqs[j].FrequencyCount
		}
		return faqs[i].ID < faqs[j].ID
	})
	return faqs, nil
}

func (s *Store) Records(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.MasteryRecord, error) {
	if err := s.check(ctx, "Records"); err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return nil, nil
	}
	cohort := toSet(studentIDs)
	var records []models.MasteryRecord
	for _, r := range s.data.Mastery {
		if _, ok := cohort[r.StudentID]; ok && window.Contains(r.Date) {
			records = append(records, r)
		}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

func (s *Store) faqsIn(window models.AnalyticsWindow, keep func(models.FAQ) bool) []models.FAQ {
	var faqs []models.FAQ
	for _, f := range s.data.FAQs {
		if window.Contains(f.LastAsked) && keep(f) {
			faqs = append(faqs, f)
		}
	}
	return faqs
}

func matchesAny(value string, patterns []string) bool {
	value = strings.ToLower(value)
	for _, p := range patterns {
		if strings.Contains(value, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
