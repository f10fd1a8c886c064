package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

const faqColumns = "SELECT id, category, question_text, frequency_count, success_rate, last_asked FROM frequently_asked_questions"

// FAQRepository reads the global FAQ table. FAQs are not scoped to a cohort.
type FAQRepository struct {
	db *sqlx.DB
}

// NewFAQRepository constructs an FAQRepository.
func NewFAQRepository(db *sqlx.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// TopAsked returns FAQs last asked inside the window ordered by frequency.
// A non-positive limit returns every match.
func (r *FAQRepository) TopAsked(ctx context.Context, window models.AnalyticsWindow, limit int) ([]models.FAQ, error) {
	query, args := newSelect(faqColumns).
		Where("last_asked >= ?", window.Start).
		Where("last_asked <= ?", window.End).
		OrderBy("frequency_count DESC, id ASC").
		Limit(limit).
		Build()

	var faqs []models.FAQ
	if err := r.db.SelectContext(ctx, &faqs, query, args...); err != nil {
		return nil, fmt.Errorf("query top faqs: %w", err)
	}
	return faqs, nil
}

// LowSuccess returns FAQs asked inside the window whose success rate is
// unknown or below the threshold.
func (r *FAQRepository) LowSuccess(ctx context.Context, window models.AnalyticsWindow, threshold float64) ([]models.FAQ, error) {
	query, args := newSelect(faqColumns).
		Where("last_asked >= ?", window.Start).
		Where("last_asked <= ?", window.End).
		Where("(success_rate IS NULL OR success_rate < ?)", threshold).
		OrderBy("category ASC, frequency_count DESC, id ASC").
		Build()

	var faqs []models.FAQ
	if err := r.db.SelectContext(ctx, &faqs, query, args...); err != nil {
		return nil, fmt.Errorf("query low success faqs: %w", err)
	}
	return faqs, nil
}
