package service

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
	"github.com/noah-isme/cohort-analytics-api/pkg/config"
)

// LowSuccessThreshold separates confident FAQ categories from misconception
// candidates. FAQs without a success rate count as low.
const LowSuccessThreshold = 0.7

var misconceptionPatterns = []string{"misconception"}

// TakeawayRepository reads pattern-matched takeaways for a cohort.
type TakeawayRepository interface {
	FlaggedTakeaways(ctx context.Context, studentIDs []string, window models.AnalyticsWindow, patterns []string) ([]models.TakeawayFact, error)
}

// MisconceptionService merges takeaway and FAQ signals into one ranking.
type MisconceptionService struct {
	takeaways TakeawayRepository
	faqs      FAQRepository
	grouping  string
	instrumentation
}

// NewMisconceptionService constructs a misconception aggregator. grouping is
// config.GroupByConcept or config.GroupByType.
func NewMisconceptionService(takeaways TakeawayRepository, faqs FAQRepository, grouping string, metrics *MetricsService, logger *zap.Logger) *MisconceptionService {
	if grouping != config.GroupByType {
		grouping = config.GroupByConcept
	}
	return &MisconceptionService{takeaways: takeaways, faqs: faqs, grouping: grouping, instrumentation: newInstrumentation(metrics, logger)}
}

// Rank returns every misconception category by frequency descending. Callers
// cap the list for display.
func (s *MisconceptionService) Rank(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) ([]models.Misconception, error) {
	if cohort.Empty() {
		return []models.Misconception{}, nil
	}

	var (
		flagged []models.TakeawayFact
		lowFAQs []models.FAQ
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.read(gctx, componentMisconceptions, func(ctx context.Context) error {
			var err error
			flagged, err = s.takeaways.FlaggedTakeaways(ctx, cohort.StudentIDs(), window, misconceptionPatterns)
			return err
		})
	})
	g.Go(func() error {
		return s.read(gctx, componentFAQ, func(ctx context.Context) error {
			var err error
			lowFAQs, err = s.faqs.LowSuccess(ctx, window, LowSuccessThreshold)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeMisconceptions(takeawaySignal(flagged, s.grouping), faqSignal(lowFAQs)), nil
}

// categorySignal is an insertion-ordered category map.
type categorySignal struct {
	order  []string
	counts map[string]int
	texts  map[string][]string
}

func newCategorySignal() *categorySignal {
	return &categorySignal{counts: map[string]int{}, texts: map[string][]string{}}
}

func (c *categorySignal) touch(category string) {
	if _, ok := c.counts[category]; !ok {
		c.order = append(c.order, category)
		c.counts[category] = 0
	}
}

func takeawaySignal(facts []models.TakeawayFact, grouping string) *categorySignal {
	signal := newCategorySignal()
	for _, fact := range facts {
		if grouping == config.GroupByType {
			signal.touch(fact.TakeawayType)
			signal.counts[fact.TakeawayType]++
			continue
		}
		for _, concept := range distinct(fact.KeyConcepts) {
			signal.touch(concept)
			signal.counts[concept]++
		}
	}
	return signal
}

func faqSignal(faqs []models.FAQ) *categorySignal {
	signal := newCategorySignal()
	for _, faq := range faqs {
		signal.touch(faq.Category)
		signal.texts[faq.Category] = append(signal.texts[faq.Category], faq.QuestionText)
	}
	return signal
}

// mergeMisconceptions starts from the takeaway signal. A category also seen
// in the FAQ signal has its examples replaced by the FAQ question texts; a
// FAQ-only category is added with frequency equal to its question count.
func mergeMisconceptions(takeaways, faqs *categorySignal) []models.Misconception {
	merged := make([]models.Misconception, 0, len(takeaways.order)+len(faqs.order))
	index := make(map[string]int, len(takeaways.order))
	for _, category := range takeaways.order {
		index[category] = len(merged)
		merged = append(merged, models.Misconception{
			Category:             category,
			Frequency:            takeaways.counts[category],
			CommonMisconceptions: []string{},
		})
	}

	for _, category := range faqs.order {
		questions := append([]string{}, faqs.texts[category]...)
		if i, ok := index[category]; ok {
			merged[i].CommonMisconceptions = questions
			continue
		}
		index[category] = len(merged)
		merged = append(merged, models.Misconception{
			Category:             category,
			Frequency:            len(questions),
			CommonMisconceptions: questions,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Frequency > merged[j].Frequency
	})
	return merged
}

// distinct drops empty and repeated tags preserving first occurrence.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
