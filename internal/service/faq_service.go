package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/cohort-analytics-api/internal/dto"
	"github.com/noah-isme/cohort-analytics-api/internal/models"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

// FAQRepository reads the global FAQ table.
type FAQRepository interface {
	TopAsked(ctx context.Context, window models.AnalyticsWindow, limit int) ([]models.FAQ, error)
	LowSuccess(ctx context.Context, window models.AnalyticsWindow, threshold float64) ([]models.FAQ, error)
}

// FAQService ranks frequently asked questions. FAQs are shared across
// cohorts, so the cohort only gates whether anything is returned.
type FAQService struct {
	repo FAQRepository
	instrumentation
}

// NewFAQService constructs an FAQ aggregator.
func NewFAQService(repo FAQRepository, metrics *MetricsService, logger *zap.Logger) *FAQService {
	return &FAQService{repo: repo, instrumentation: newInstrumentation(metrics, logger)}
}

// Top returns at most limit FAQs asked in the window, most frequent first.
func (s *FAQService) Top(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow, limit int) ([]models.FAQ, error) {
	if limit < MinFAQLimit || limit > MaxFAQLimit {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "limit must be between 1 and 50")
	}
	if cohort.Empty() {
		return []models.FAQ{}, nil
	}

	var faqs []models.FAQ
	err := s.read(ctx, componentFAQ, func(ctx context.Context) error {
		var err error
		faqs, err = s.repo.TopAsked(ctx, window, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(faqs) > limit {
		faqs = faqs[:limit]
	}
	if faqs == nil {
		faqs = []models.FAQ{}
	}
	return faqs, nil
}

// GroupFAQsByCategory buckets FAQs by category keeping their input order.
func GroupFAQsByCategory(faqs []models.FAQ) map[string][]models.FAQ {
	grouped := make(map[string][]models.FAQ)
	for _, faq := range faqs {
		grouped[faq.Category] = append(grouped[faq.Category], faq)
	}
	return grouped
}

// summarizeFAQs averages success over FAQs that report one.
func summarizeFAQs(faqs []models.FAQ, byCategory map[string][]models.FAQ) dto.FAQSummary {
	summary := dto.FAQSummary{TotalFAQs: len(faqs), CategoriesCount: len(byCategory)}
	if mean, ok := meanSuccessRate(faqs); ok {
		summary.AvgSuccessRate = round2(mean)
	}
	return summary
}

func meanSuccessRate(faqs []models.FAQ) (float64, bool) {
	var (
		sum   float64
		count int
	)
	for _, faq := range faqs {
		if faq.SuccessRate == nil {
			continue
		}
		sum += *faq.SuccessRate
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
