package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cohort Analytics API",
        "description": "Teacher-facing analytics over tutoring sessions, messages, takeaways, FAQs and mastery",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "produces": [
        "application/json"
    ],
    "tags": [
        {"name": "Teacher Analytics", "description": "Per-teacher cohort reports"},
        {"name": "System", "description": "Health and instrumentation"}
    ],
    "paths": {
        "/teacher/{teacherId}/overview": {
            "get": {
                "tags": ["Teacher Analytics"],
                "summary": "Cohort overview",
                "parameters": [
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TeacherOverviewResponse"}},
                    "400": {"description": "Invalid window or limit", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Component query failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "503": {"description": "Component query timed out", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/{teacherId}/overview/export": {
            "get": {
                "tags": ["Teacher Analytics"],
                "summary": "Download the cohort overview",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "refresh", "in": "query", "type": "boolean"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Invalid window or limit", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Component query failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "503": {"description": "Component query timed out", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/{teacherId}/hourly": {
            "get": {
                "tags": ["Teacher Analytics"],
                "summary": "Hour-of-day message distribution",
                "parameters": [
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HourlyActivityResponse"}},
                    "400": {"description": "Invalid window or limit", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Component query failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "503": {"description": "Component query timed out", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/{teacherId}/faqs": {
            "get": {
                "tags": ["Teacher Analytics"],
                "summary": "Most asked questions and misconceptions",
                "parameters": [
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "refresh", "in": "query", "type": "boolean"},
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 50}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FAQAnalyticsResponse"}},
                    "400": {"description": "Invalid window or limit", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Component query failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "503": {"description": "Component query timed out", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/{teacherId}/topic-performance": {
            "get": {
                "tags": ["Teacher Analytics"],
                "summary": "Successful and struggling topics",
                "parameters": [
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TopicPerformanceResponse"}},
                    "400": {"description": "Invalid window or limit", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Component query failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "503": {"description": "Component query timed out", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/teacher/{teacherId}/analytics-summary": {
            "get": {
                "tags": ["Teacher Analytics"],
                "summary": "Narrative summary with recommendations",
                "parameters": [
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or RFC3339"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AnalyticsSummaryResponse"}},
                    "400": {"description": "Invalid window or limit", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Component query failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "503": {"description": "Component query timed out", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["System"],
                "summary": "Cache and component counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AnalyticsSystemMetrics"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "ReportPeriod": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "days": {"type": "integer"}
            }
        },
        "CohortInfo": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "teacherName": {"type": "string"},
                "studentIds": {"type": "array", "items": {"type": "string"}},
                "studentCount": {"type": "integer"}
            }
        },
        "EngagementMetrics": {
            "type": "object",
            "properties": {
                "avgMessagesPerStudent": {"type": "number"},
                "avgMessagesPerClass": {"type": "number"},
                "avgSessionsPerDay": {"type": "number"},
                "totalMessages": {"type": "integer"},
                "totalSessions": {"type": "integer"}
            }
        },
        "SessionMetrics": {
            "type": "object",
            "properties": {
                "totalSessions": {"type": "integer"},
                "completedSessions": {"type": "integer"},
                "completionRate": {"type": "number", "description": "Percentage with two decimals"},
                "avgDurationMinutes": {"type": "number"}
            }
        },
        "StudentSessionCount": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "name": {"type": "string"},
                "sessionCount": {"type": "integer"}
            }
        },
        "Misconception": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "frequency": {"type": "integer"},
                "commonMisconceptions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "EngagementInsights": {
            "type": "object",
            "properties": {
                "messageActivity": {"type": "string"},
                "completionTrend": {"type": "string"},
                "sessionLength": {"type": "string"}
            }
        },
        "TeacherOverviewResponse": {
            "type": "object",
            "properties": {
                "cohortInfo": {"$ref": "#/definitions/CohortInfo"},
                "period": {"$ref": "#/definitions/ReportPeriod"},
                "engagementMetrics": {"$ref": "#/definitions/EngagementMetrics"},
                "sessionMetrics": {"$ref": "#/definitions/SessionMetrics"},
                "studentActivity": {"type": "array", "items": {"$ref": "#/definitions/StudentSessionCount"}},
                "topMisconceptions": {"type": "array", "items": {"$ref": "#/definitions/Misconception"}},
                "insights": {"$ref": "#/definitions/EngagementInsights"}
            }
        },
        "HourlyBucket": {
            "type": "object",
            "properties": {
                "hour": {"type": "integer"},
                "messageCount": {"type": "integer"}
            }
        },
        "HourlyActivityResponse": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "period": {"$ref": "#/definitions/ReportPeriod"},
                "hourlyDistribution": {"type": "array", "items": {"$ref": "#/definitions/HourlyBucket"}},
                "summary": {
                    "type": "object",
                    "properties": {
                        "totalMessages": {"type": "integer"},
                        "peakHour": {"type": "integer", "x-nullable": true},
                        "activeHours": {"type": "integer"}
                    }
                }
            }
        },
        "FAQ": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "category": {"type": "string"},
                "question": {"type": "string"},
                "frequency": {"type": "integer"},
                "successRate": {"type": "number", "x-nullable": true},
                "lastAsked": {"type": "string", "format": "date-time"}
            }
        },
        "FAQAnalyticsResponse": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "period": {"$ref": "#/definitions/ReportPeriod"},
                "topFaqs": {"type": "array", "items": {"$ref": "#/definitions/FAQ"}},
                "faqsByCategory": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/FAQ"}}},
                "misconceptions": {"type": "array", "items": {"$ref": "#/definitions/Misconception"}},
                "summary": {
                    "type": "object",
                    "properties": {
                        "totalFaqs": {"type": "integer"},
                        "categoriesCount": {"type": "integer"},
                        "avgSuccessRate": {"type": "number"}
                    }
                }
            }
        },
        "TopicPerformance": {
            "type": "object",
            "properties": {
                "topic": {"type": "string"},
                "successRate": {"type": "number"},
                "studentCount": {"type": "integer"},
                "commonIssues": {"type": "array", "items": {"type": "string"}}
            }
        },
        "TopicPerformanceResponse": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "period": {"$ref": "#/definitions/ReportPeriod"},
                "successfulTopics": {"type": "array", "items": {"$ref": "#/definitions/TopicPerformance"}},
                "strugglingTopics": {"type": "array", "items": {"$ref": "#/definitions/TopicPerformance"}},
                "summary": {
                    "type": "object",
                    "properties": {
                        "totalSuccessfulTopics": {"type": "integer"},
                        "totalStrugglingTopics": {"type": "integer"}
                    }
                }
            }
        },
        "AnalyticsSummaryResponse": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "period": {"$ref": "#/definitions/ReportPeriod"},
                "summary": {"type": "string"},
                "keyInsights": {"type": "array", "items": {"type": "string"}},
                "recommendations": {"type": "array", "items": {"type": "string"}}
            }
        },
        "AnalyticsSystemMetrics": {
            "type": "object",
            "properties": {
                "cacheHitRatio": {"type": "number"},
                "cacheHits": {"type": "integer"},
                "cacheMisses": {"type": "integer"},
                "requestsTotal": {"type": "integer"},
                "averageRequestDurationMs": {"type": "number"},
                "dbQueryCount": {"type": "integer"},
                "averageDbQueryDurationMs": {"type": "number"},
                "componentFailures": {"type": "integer"},
                "reportsServed": {"type": "integer"},
                "goroutines": {"type": "integer"},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
