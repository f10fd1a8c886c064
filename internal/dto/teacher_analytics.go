package dto

import "github.com/noah-isme/cohort-analytics-api/internal/models"

// CohortInfo describes the resolved cohort behind a report.
type CohortInfo struct {
	TeacherID    string   `json:"teacherId"`
	TeacherName  string   `json:"teacherName"`
	StudentIDs   []string `json:"studentIds"`
	StudentCount int      `json:"studentCount"`
}

// ReportPeriod echoes the analysed window.
type ReportPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// EngagementInsights are qualitative readings of the overview numbers.
type EngagementInsights struct {
	MessageActivity string `json:"messageActivity"`
	CompletionTrend string `json:"completionTrend"`
	SessionLength   string `json:"sessionLength"`
}

// TeacherOverviewResponse is the composed overview report.
type TeacherOverviewResponse struct {
	CohortInfo        CohortInfo                   `json:"cohortInfo"`
	Period            ReportPeriod                 `json:"period"`
	EngagementMetrics models.EngagementMetrics     `json:"engagementMetrics"`
	SessionMetrics    models.SessionMetrics        `json:"sessionMetrics"`
	StudentActivity   []models.StudentSessionCount `json:"studentActivity"`
	TopMisconceptions []models.Misconception       `json:"topMisconceptions"`
	Insights          EngagementInsights           `json:"insights"`
}

// HourlySummary condenses the 24 hour histogram.
type HourlySummary struct {
	TotalMessages int  `json:"totalMessages"`
	PeakHour      *int `json:"peakHour"`
	ActiveHours   int  `json:"activeHours"`
}

// HourlyActivityResponse carries the hour-of-day distribution.
type HourlyActivityResponse struct {
	TeacherID          string                `json:"teacherId"`
	Period             ReportPeriod          `json:"period"`
	HourlyDistribution []models.HourlyBucket `json:"hourlyDistribution"`
	Summary            HourlySummary         `json:"summary"`
}

// FAQSummary condenses the FAQ report.
type FAQSummary struct {
	TotalFAQs       int     `json:"totalFaqs"`
	CategoriesCount int     `json:"categoriesCount"`
	AvgSuccessRate  float64 `json:"avgSuccessRate"`
}

// FAQAnalyticsResponse is the FAQ and misconception report.
type FAQAnalyticsResponse struct {
	TeacherID      string                  `json:"teacherId"`
	Period         ReportPeriod            `json:"period"`
	TopFAQs        []models.FAQ            `json:"topFaqs"`
	FAQsByCategory map[string][]models.FAQ `json:"faqsByCategory"`
	Misconceptions []models.Misconception  `json:"misconceptions"`
	Summary        FAQSummary              `json:"summary"`
}

// TopicPerformanceSummary counts both topic lists.
type TopicPerformanceSummary struct {
	TotalSuccessfulTopics int `json:"totalSuccessfulTopics"`
	TotalStrugglingTopics int `json:"totalStrugglingTopics"`
}

// TopicPerformanceResponse splits concepts into mastered and struggling.
type TopicPerformanceResponse struct {
	TeacherID        string                    `json:"teacherId"`
	Period           ReportPeriod              `json:"period"`
	SuccessfulTopics []models.TopicPerformance `json:"successfulTopics"`
	StrugglingTopics []models.TopicPerformance `json:"strugglingTopics"`
	Summary          TopicPerformanceSummary   `json:"summary"`
}

// AnalyticsSummaryResponse is the synthesized narrative.
type AnalyticsSummaryResponse struct {
	TeacherID       string       `json:"teacherId"`
	Period          ReportPeriod `json:"period"`
	Summary         string       `json:"summary"`
	KeyInsights     []string     `json:"keyInsights"`
	Recommendations []string     `json:"recommendations"`
}

// ReportQuery captures the common query string of every teacher report.
type ReportQuery struct {
	Start string `form:"start" validate:"required"`
	End   string `form:"end" validate:"required"`
	Limit *int   `form:"limit" validate:"omitempty,min=1,max=50"`
}
