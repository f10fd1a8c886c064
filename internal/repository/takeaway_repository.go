package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

// TakeawayRepository reads post-session takeaways for the cohort.
type TakeawayRepository struct {
	db *sqlx.DB
}

// NewTakeawayRepository constructs a TakeawayRepository.
func NewTakeawayRepository(db *sqlx.DB) *TakeawayRepository {
	return &TakeawayRepository{db: db}
}

// FlaggedTakeaways lists takeaways created inside the window for the given
// students whose type contains any of the patterns (case-insensitive).
func (r *TakeawayRepository) FlaggedTakeaways(ctx context.Context, studentIDs []string, window models.AnalyticsWindow, patterns []string) ([]models.TakeawayFact, error) {
	if len(studentIDs) == 0 || len(patterns) == 0 {
		return nil, nil
	}
	likes := make([]string, len(patterns))
	for i, p := range patterns {
		likes[i] = "%" + p + "%"
	}
	query, args := newSelect(`SELECT t.session_id, s.student_id, t.takeaway_type, COALESCE(t.key_concepts, '{}') AS key_concepts, t.created_at
        FROM session_takeaways t
        JOIN chat_sessions s ON s.id = t.session_id`).
		Where("s.student_id = ANY(?)", pq.Array(studentIDs)).
		Where("t.created_at >= ?", window.Start).
		Where("t.created_at <= ?", window.End).
		Where("t.takeaway_type ILIKE ANY(?)", pq.Array(likes)).
		OrderBy("t.created_at ASC, t.session_id ASC").
		Build()

	var rows []struct {
		SessionID    string         `db:"session_id"`
		StudentID    string         `db:"student_id"`
		TakeawayType string         `db:"takeaway_type"`
		KeyConcepts  pq.StringArray `db:"key_concepts"`
		CreatedAt    time.Time      `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query flagged takeaways: %w", err)
	}

	facts := make([]models.TakeawayFact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, models.TakeawayFact{
			SessionID:    row.SessionID,
			StudentID:    row.StudentID,
			TakeawayType: row.TakeawayType,
			KeyConcepts:  []string(row.KeyConcepts),
			CreatedAt:    row.CreatedAt,
		})
	}
	return facts, nil
}
