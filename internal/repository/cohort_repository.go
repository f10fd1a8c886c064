package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

// CohortRepository resolves teachers and the students on their rosters.
type CohortRepository struct {
	db *sqlx.DB
}

// NewCohortRepository constructs a CohortRepository.
func NewCohortRepository(db *sqlx.DB) *CohortRepository {
	return &CohortRepository{db: db}
}

// FindTeacher fetches a teacher with its roster. It returns sql.ErrNoRows when
// the teacher does not exist.
func (r *CohortRepository) FindTeacher(ctx context.Context, teacherID string) (*models.Teacher, error) {
	const query = `SELECT id, COALESCE(name, '') AS name, COALESCE(student_ids, '{}') AS student_ids FROM teachers WHERE id = $1`
	var row struct {
		ID         string         `db:"id"`
		Name       string         `db:"name"`
		StudentIDs pq.StringArray `db:"student_ids"`
	}
	if err := r.db.GetContext(ctx, &row, query, teacherID); err != nil {
		return nil, err
	}
	return &models.Teacher{ID: row.ID, Name: row.Name, StudentIDs: []string(row.StudentIDs)}, nil
}

// StudentsByIDs loads display names for the given students. Order is not guaranteed.
func (r *CohortRepository) StudentsByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args := newSelect("SELECT id, COALESCE(name, '') AS name FROM students").
		Where("id = ANY(?)", pq.Array(ids)).
		Build()

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list cohort students: %w", err)
	}
	return students, nil
}
