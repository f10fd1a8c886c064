package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

// MasteryRepository reads per-student learning analytics snapshots.
type MasteryRepository struct {
	db *sqlx.DB
}

// NewMasteryRepository constructs a MasteryRepository.
func NewMasteryRepository(db *sqlx.DB) *MasteryRepository {
	return &MasteryRepository{db: db}
}

// Records lists mastery snapshots dated inside the window for the given students.
func (r *MasteryRepository) Records(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.MasteryRecord, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query, args := newSelect(`SELECT student_id, date, COALESCE(concepts_mastered, '{}') AS concepts_mastered, COALESCE(success_rate, 0) AS success_rate
        FROM learning_analytics`).
		Where("student_id = ANY(?)", pq.Array(studentIDs)).
		Where("date >= ?", window.Start).
		Where("date <= ?", window.End).
		OrderBy("date ASC, student_id ASC").
		Build()

	var rows []struct {
		StudentID        string         `db:"student_id"`
		Date             time.Time      `db:"date"`
		ConceptsMastered pq.StringArray `db:"concepts_mastered"`
		SuccessRate      float64        `db:"success_rate"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query mastery records: %w", err)
	}

	records := make([]models.MasteryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.MasteryRecord{
			StudentID:        row.StudentID,
			Date:             row.Date,
			ConceptsMastered: []string(row.ConceptsMastered),
			SuccessRate:      row.SuccessRate,
		})
	}
	return records, nil
}
