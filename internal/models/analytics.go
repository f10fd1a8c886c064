package models

import "time"

// StudentSessionCount is one row of the sessions-per-student ranking.
type StudentSessionCount struct {
	StudentID    string `json:"studentId"`
	StudentName  string `json:"name"`
	SessionCount int    `json:"sessionCount"`
}

// EngagementMetrics aggregates message and session volume for a cohort.
type EngagementMetrics struct {
	AvgMessagesPerStudent float64 `json:"avgMessagesPerStudent"`
	AvgMessagesPerClass   float64 `json:"avgMessagesPerClass"`
	AvgSessionsPerDay     float64 `json:"avgSessionsPerDay"`
	TotalMessages         int     `json:"totalMessages"`
	TotalSessions         int     `json:"totalSessions"`
}

// HourlyBucket is one entry of the 24-hour message histogram.
type HourlyBucket struct {
	Hour         int `json:"hour"`
	MessageCount int `json:"messageCount"`
}

// SessionMetrics captures completion and duration for sessions in a window.
// CompletionRate is a ratio in [0, 1].
type SessionMetrics struct {
	TotalSessions      int     `json:"totalSessions"`
	CompletedSessions  int     `json:"completedSessions"`
	CompletionRate     float64 `json:"completionRate"`
	AvgDurationMinutes float64 `json:"avgDurationMinutes"`
}

// Misconception is a category of student difficulty with example issues.
type Misconception struct {
	Category             string   `json:"category"`
	Frequency            int      `json:"frequency"`
	CommonMisconceptions []string `json:"commonMisconceptions"`
}

// TopicPerformance ranks a concept by mastery or difficulty.
type TopicPerformance struct {
	Topic        string   `json:"topic"`
	SuccessRate  float64  `json:"successRate"`
	StudentCount int      `json:"studentCount"`
	CommonIssues []string `json:"commonIssues,omitempty"`
}

// AnalyticsSystemMetrics represents system level analytics captured from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	DBQueryCount             uint64    `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64   `json:"averageDbQueryDurationMs"`
	ComponentFailures        uint64    `json:"componentFailures"`
	ReportsServed            uint64    `json:"reportsServed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
