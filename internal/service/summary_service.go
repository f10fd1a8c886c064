package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

const maxRecommendations = 5

// SummaryInput is everything the narrative is derived from. It carries no
// storage handles.
type SummaryInput struct {
	Window     models.AnalyticsWindow
	FAQs       []models.FAQ
	Successful []models.TopicPerformance
	Struggling []models.TopicPerformance
}

// Summary is advisory text built from report numbers.
type Summary struct {
	Narrative       string
	KeyInsights     []string
	Recommendations []string
}

// InsufficientDataSummary is returned when nothing can be said about a period.
func InsufficientDataSummary() Summary {
	return Summary{
		Narrative:       "Insufficient data to summarize this period.",
		KeyInsights:     []string{"Insufficient data to derive insights."},
		Recommendations: []string{"Collect more tutoring activity before planning remediation."},
	}
}

// Synthesize never fails: missing sections get an insufficient-data phrase
// and any internal inconsistency yields InsufficientDataSummary.
func Synthesize(in SummaryInput) (out Summary) {
	defer func() {
		if r := recover(); r != nil {
			out = InsufficientDataSummary()
		}
	}()

	if len(in.FAQs) == 0 && len(in.Successful) == 0 && len(in.Struggling) == 0 {
		return InsufficientDataSummary()
	}

	categories := faqCategories(in.FAQs)
	return Summary{
		Narrative:       narrative(in),
		KeyInsights:     keyInsights(in, categories),
		Recommendations: recommendations(in, categories),
	}
}

func narrative(in SummaryInput) string {
	parts := []string{fmt.Sprintf("Between %s and %s,", in.Window.Start.Format(dateOnly), in.Window.End.Format(dateOnly))}

	if len(in.FAQs) == 0 {
		parts = append(parts, "no frequently asked questions were recorded (insufficient data).")
	} else {
		total := 0
		for _, faq := range in.FAQs {
			total += faq.FrequencyCount
		}
		if mean, ok := meanSuccessRate(in.FAQs); ok {
			parts = append(parts, fmt.Sprintf("students asked %d questions with an average success rate of %s.", total, percent(mean)))
		} else {
			parts = append(parts, fmt.Sprintf("students asked %d questions; success rates were not recorded.", total))
		}
	}

	if len(in.Successful) > 0 {
		best := in.Successful[0]
		parts = append(parts, fmt.Sprintf("The best-performing topic was %s at %s success.", best.Topic, percent(best.SuccessRate)))
	} else {
		parts = append(parts, "Topic mastery: insufficient data.")
	}

	if len(in.Struggling) > 0 {
		hardest := in.Struggling[0]
		parts = append(parts, fmt.Sprintf("The most challenging topic was %s, affecting %s.", hardest.Topic, plural(hardest.StudentCount, "student")))
	} else {
		parts = append(parts, "Struggling topics: insufficient data.")
	}

	return strings.Join(parts, " ")
}

type faqCategory struct {
	name      string
	frequency int
	rateSum   float64
	rated     int
}

func (c faqCategory) confident() bool {
	return c.rated > 0 && c.rateSum/float64(c.rated) >= LowSuccessThreshold
}

// faqCategories aggregates FAQs per category in first-seen order.
func faqCategories(faqs []models.FAQ) []faqCategory {
	index := map[string]int{}
	var categories []faqCategory
	for _, faq := range faqs {
		i, ok := index[faq.Category]
		if !ok {
			i = len(categories)
			index[faq.Category] = i
			categories = append(categories, faqCategory{name: faq.Category})
		}
		categories[i].frequency += faq.FrequencyCount
		if faq.SuccessRate != nil {
			categories[i].rateSum += *faq.SuccessRate
			categories[i].rated++
		}
	}
	return categories
}

func keyInsights(in SummaryInput, categories []faqCategory) []string {
	insights := []string{}
	if len(categories) == 0 {
		insights = append(insights, "FAQ confidence: insufficient data.")
	} else {
		high := 0
		for _, c := range categories {
			if c.confident() {
				high++
			}
		}
		insights = append(insights,
			fmt.Sprintf("%s with high confidence (success rate of 70%% or more)", plural(high, "category")),
			fmt.Sprintf("%s with low confidence (success rate below 70%%)", plural(len(categories)-high, "category")),
		)
	}
	if len(in.Successful) > 0 {
		insights = append(insights, fmt.Sprintf("%s mastered across the cohort", plural(len(in.Successful), "topic")))
	}
	if len(in.Struggling) > 0 {
		insights = append(insights, fmt.Sprintf("%s flagged as difficult", plural(len(in.Struggling), "topic")))
	}
	return insights
}

// recommendations lists low-confidence categories, most asked first, then
// struggling topics with their recorded issues.
func recommendations(in SummaryInput, categories []faqCategory) []string {
	low := make([]faqCategory, 0, len(categories))
	for _, c := range categories {
		if !c.confident() {
			low = append(low, c)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].frequency > low[j].frequency })

	recs := []string{}
	seen := map[string]struct{}{}
	add := func(topic, text string) {
		if _, ok := seen[topic]; ok || len(recs) >= maxRecommendations {
			return
		}
		seen[topic] = struct{}{}
		recs = append(recs, text)
	}
	for _, c := range low {
		add(c.name, "Focus remediation on "+c.name)
	}
	for _, t := range in.Struggling {
		text := "Revisit " + t.Topic
		if len(t.CommonIssues) > 0 {
			text += " (" + strings.Join(t.CommonIssues, ", ") + ")"
		}
		add(t.Topic, text)
	}
	if len(recs) == 0 {
		recs = append(recs, "No remediation needed; keep reinforcing mastered topics.")
	}
	return recs
}

func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
