package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

// CohortRepository reads teachers and their students.
type CohortRepository interface {
	FindTeacher(ctx context.Context, teacherID string) (*models.Teacher, error)
	StudentsByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

// CohortService resolves the students supervised by a teacher.
type CohortService struct {
	repo CohortRepository
	instrumentation
}

// NewCohortService constructs a cohort resolver.
func NewCohortService(repo CohortRepository, metrics *MetricsService, logger *zap.Logger) *CohortService {
	return &CohortService{repo: repo, instrumentation: newInstrumentation(metrics, logger)}
}

// Resolve returns the teacher's cohort in roster order. Duplicate roster
// entries are collapsed and students without a profile row keep an empty
// name. An unknown teacher yields ErrNotFound.
func (s *CohortService) Resolve(ctx context.Context, teacherID string) (models.Cohort, error) {
	if teacherID == "" {
		return models.Cohort{}, appErrors.Clone(appErrors.ErrInvalidArgument, "teacherId is required")
	}

	var (
		teacher  *models.Teacher
		students []models.Student
	)
	err := s.read(ctx, componentCohort, func(ctx context.Context) error {
		var err error
		teacher, err = s.repo.FindTeacher(ctx, teacherID)
		if errors.Is(err, sql.ErrNoRows) {
			teacher = nil
			return nil
		}
		if err != nil {
			return err
		}
		if len(teacher.StudentIDs) == 0 {
			return nil
		}
		students, err = s.repo.StudentsByIDs(ctx, teacher.StudentIDs)
		return err
	})
	if err != nil {
		return models.Cohort{}, err
	}
	if teacher == nil {
		return models.Cohort{}, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.ID] = st.Name
	}

	cohort := models.Cohort{TeacherID: teacher.ID, TeacherName: teacher.Name, Students: []models.Student{}}
	seen := make(map[string]struct{}, len(teacher.StudentIDs))
	for _, id := range teacher.StudentIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		cohort.Students = append(cohort.Students, models.Student{ID: id, Name: names[id]})
	}
	return cohort, nil
}
