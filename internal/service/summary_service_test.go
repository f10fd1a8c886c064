package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
)

func TestSynthesizeNarrative(t *testing.T) {
	summary := Synthesize(SummaryInput{
		Window: marchWindow(),
		FAQs: []models.FAQ{
			{Category: "algebra", FrequencyCount: 25, SuccessRate: ptr(0.78)},
			{Category: "calculus", FrequencyCount: 22, SuccessRate: ptr(0.65)},
			{Category: "fractions", FrequencyCount: 10, SuccessRate: ptr(0.4)},
			{Category: "fractions", FrequencyCount: 5},
		},
		Successful: []models.TopicPerformance{{Topic: "decimals", SuccessRate: 0.85, StudentCount: 2}},
		Struggling: []models.TopicPerformance{{Topic: "algebra", StudentCount: 2, CommonIssues: []string{"struggle", "difficulty"}}},
	})

	assert.Equal(t, "Between 2024-03-01 and 2024-03-08, students asked 62 questions with an average success rate of 61%. "+
		"The best-performing topic was decimals at 85% success. "+
		"The most challenging topic was algebra, affecting 2 students.", summary.Narrative)
	assert.Equal(t, []string{
		"1 category with high confidence (success rate of 70% or more)",
		"2 categories with low confidence (success rate below 70%)",
		"1 topic mastered across the cohort",
		"1 topic flagged as difficult",
	}, summary.KeyInsights)
	assert.Equal(t, []string{
		"Focus remediation on calculus",
		"Focus remediation on fractions",
		"Revisit algebra (struggle, difficulty)",
	}, summary.Recommendations)
}

func TestSynthesizeInsufficientData(t *testing.T) {
	assert.Equal(t, InsufficientDataSummary(), Synthesize(SummaryInput{Window: marchWindow()}))
}

func TestSynthesizePartialData(t *testing.T) {
	summary := Synthesize(SummaryInput{
		Window:     marchWindow(),
		Successful: []models.TopicPerformance{{Topic: "fractions", SuccessRate: 0.9, StudentCount: 1}},
	})

	assert.Contains(t, summary.Narrative, "no frequently asked questions were recorded (insufficient data)")
	assert.Contains(t, summary.Narrative, "Struggling topics: insufficient data.")
	assert.Contains(t, summary.KeyInsights, "FAQ confidence: insufficient data.")
	assert.Equal(t, []string{"No remediation needed; keep reinforcing mastered topics."}, summary.Recommendations)
}

func TestSynthesizeUnratedFAQs(t *testing.T) {
	summary := Synthesize(SummaryInput{
		Window: marchWindow(),
		FAQs:   []models.FAQ{{Category: "ratios", FrequencyCount: 3}},
	})

	assert.Contains(t, summary.Narrative, "students asked 3 questions; success rates were not recorded.")
	assert.Equal(t, []string{"Focus remediation on ratios"}, summary.Recommendations)
}

func TestSynthesizeCapsRecommendations(t *testing.T) {
	var struggling []models.TopicPerformance
	for _, topic := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		struggling = append(struggling, models.TopicPerformance{Topic: topic, StudentCount: 1})
	}

	summary := Synthesize(SummaryInput{Window: marchWindow(), Struggling: struggling})
	assert.Len(t, summary.Recommendations, maxRecommendations)
	assert.Contains(t, summary.Narrative, "affecting 1 student.")
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 category", plural(1, "category"))
	assert.Equal(t, "0 categories", plural(0, "category"))
	assert.Equal(t, "3 topics", plural(3, "topic"))
}
