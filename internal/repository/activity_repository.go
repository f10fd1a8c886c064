package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

// ActivityRepository reads chat sessions and messages for engagement metrics.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// SessionFacts lists sessions started inside the window by the given students,
// each carrying its count of student-originated messages.
func (r *ActivityRepository) SessionFacts(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.SessionFact, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query, args := newSelect(`SELECT s.id, s.student_id, s.started_at, s.ended_at, s.status,
        COUNT(m.id) FILTER (WHERE m.sender_type = '` + models.SenderStudent + `') AS student_messages
        FROM chat_sessions s
        LEFT JOIN chat_messages m ON m.session_id = s.id`).
		Where("s.student_id = ANY(?)", pq.Array(studentIDs)).
		Where("s.started_at >= ?", window.Start).
		Where("s.started_at <= ?", window.End).
		GroupBy("s.id, s.student_id, s.started_at, s.ended_at, s.status").
		OrderBy("s.started_at ASC, s.id ASC").
		Build()

	var facts []models.SessionFact
	if err := r.db.SelectContext(ctx, &facts, query, args...); err != nil {
		return nil, fmt.Errorf("query session facts: %w", err)
	}
	return facts, nil
}

// HourlyMessageCounts buckets student messages sent inside the window by UTC
// hour of day. Hours without messages are absent from the result.
func (r *ActivityRepository) HourlyMessageCounts(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.HourCount, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query, args := newSelect(`SELECT EXTRACT(HOUR FROM m.timestamp AT TIME ZONE 'UTC')::int AS hour, COUNT(*) AS message_count
        FROM chat_messages m
        JOIN chat_sessions s ON s.id = m.session_id`).
		Where("s.student_id = ANY(?)", pq.Array(studentIDs)).
		Where("m.sender_type = ?", models.SenderStudent).
		Where("m.timestamp >= ?", window.Start).
		Where("m.timestamp <= ?", window.End).
		GroupBy("1").
		OrderBy("1").
		Build()

	var counts []models.HourCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("query hourly message counts: %w", err)
	}
	return counts, nil
}
