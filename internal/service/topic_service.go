package service

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

const (
	// MasteryThreshold is the mean success rate a concept needs to count as mastered.
	MasteryThreshold = 0.7
	// TopicListCap bounds both topic rankings.
	TopicListCap = 10
	// StrugglingTopicSuccessRate is reported for every struggling topic.
	// Takeaways carry no outcome score, so no per-topic rate is computed.
	StrugglingTopicSuccessRate = 0.3
)

var strugglePatterns = []string{"difficulty", "struggle", "confusion"}

// MasteryRepository reads per-student mastery snapshots.
type MasteryRepository interface {
	Records(ctx context.Context, studentIDs []string, window models.AnalyticsWindow) ([]models.MasteryRecord, error)
}

// TopicPerformance holds both topic rankings.
type TopicPerformance struct {
	Successful []models.TopicPerformance
	Struggling []models.TopicPerformance
}

// TopicService splits concepts into mastered and struggling.
type TopicService struct {
	mastery   MasteryRepository
	takeaways TakeawayRepository
	instrumentation
}

// NewTopicService constructs a topic performance analyzer.
func NewTopicService(mastery MasteryRepository, takeaways TakeawayRepository, metrics *MetricsService, logger *zap.Logger) *TopicService {
	return &TopicService{mastery: mastery, takeaways: takeaways, instrumentation: newInstrumentation(metrics, logger)}
}

// Performance reads mastery records and difficulty takeaways concurrently.
func (s *TopicService) Performance(ctx context.Context, cohort models.Cohort, window models.AnalyticsWindow) (*TopicPerformance, error) {
	if cohort.Empty() {
		return &TopicPerformance{Successful: []models.TopicPerformance{}, Struggling: []models.TopicPerformance{}}, nil
	}

	var (
		records []models.MasteryRecord
		flagged []models.TakeawayFact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.read(gctx, componentMastery, func(ctx context.Context) error {
			var err error
			records, err = s.mastery.Records(ctx, cohort.StudentIDs(), window)
			return err
		})
	})
	g.Go(func() error {
		return s.read(gctx, componentStruggling, func(ctx context.Context) error {
			var err error
			flagged, err = s.takeaways.FlaggedTakeaways(ctx, cohort.StudentIDs(), window, strugglePatterns)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &TopicPerformance{
		Successful: successfulTopics(records),
		Struggling: strugglingTopics(flagged),
	}, nil
}

type topicAccumulator struct {
	topic    string
	rateSum  float64
	samples  int
	students map[string]struct{}
	issues   []string
	seen     map[string]struct{}
}

func newTopicAccumulator(topic string) *topicAccumulator {
	return &topicAccumulator{topic: topic, students: map[string]struct{}{}, seen: map[string]struct{}{}}
}

func (a *topicAccumulator) addIssue(issue string) {
	if _, ok := a.seen[issue]; ok || issue == "" {
		return
	}
	a.seen[issue] = struct{}{}
	a.issues = append(a.issues, issue)
}

func (a *topicAccumulator) mean() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.rateSum / float64(a.samples)
}

// successfulTopics keeps concepts whose mean success rate reaches
// MasteryThreshold, ordered by mean then distinct students.
func successfulTopics(records []models.MasteryRecord) []models.TopicPerformance {
	order, acc := accumulate(func(visit func(topic, student string) *topicAccumulator) {
		for _, r := range records {
			for _, concept := range distinct(r.ConceptsMastered) {
				a := visit(concept, r.StudentID)
				a.rateSum += r.SuccessRate
				a.samples++
			}
		}
	})

	topics := make([]models.TopicPerformance, 0, len(order))
	for _, name := range order {
		a := acc[name]
		if a.mean() < MasteryThreshold {
			continue
		}
		topics = append(topics, models.TopicPerformance{
			Topic:        name,
			SuccessRate:  round2(a.mean()),
			StudentCount: len(a.students),
		})
	}
	sort.SliceStable(topics, func(i, j int) bool {
		mi, mj := acc[topics[i].Topic].mean(), acc[topics[j].Topic].mean()
		if mi != mj {
			return mi > mj
		}
		return topics[i].StudentCount > topics[j].StudentCount
	})
	return capTopics(topics)
}

// strugglingTopics ranks difficulty concepts by distinct students affected.
func strugglingTopics(facts []models.TakeawayFact) []models.TopicPerformance {
	order, acc := accumulate(func(visit func(topic, student string) *topicAccumulator) {
		for _, f := range facts {
			for _, concept := range distinct(f.KeyConcepts) {
				visit(concept, f.StudentID).addIssue(f.TakeawayType)
			}
		}
	})

	topics := make([]models.TopicPerformance, 0, len(order))
	for _, name := range order {
		a := acc[name]
		topics = append(topics, models.TopicPerformance{
			Topic:        name,
			SuccessRate:  StrugglingTopicSuccessRate,
			StudentCount: len(a.students),
			CommonIssues: append([]string{}, a.issues...),
		})
	}
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].StudentCount > topics[j].StudentCount
	})
	return capTopics(topics)
}

func accumulate(walk func(visit func(topic, student string) *topicAccumulator)) ([]string, map[string]*topicAccumulator) {
	var order []string
	acc := map[string]*topicAccumulator{}
	walk(func(topic, student string) *topicAccumulator {
		a, ok := acc[topic]
		if !ok {
			a = newTopicAccumulator(topic)
			acc[topic] = a
			order = append(order, topic)
		}
		a.students[student] = struct{}{}
		return a
	})
	return order, acc
}

func capTopics(topics []models.TopicPerformance) []models.TopicPerformance {
	if len(topics) > TopicListCap {
		return topics[:TopicListCap]
	}
	return topics
}
