package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/cohort-analytics-api/internal/dto"
	"github.com/noah-isme/cohort-analytics-api/pkg/export"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

// Export formats for the overview download.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type overviewProvider interface {
	Overview(ctx context.Context, teacherID string, query dto.ReportQuery) (*dto.TeacherOverviewResponse, bool, error)
}

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

// ExportResult is a rendered overview ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	CacheHit    bool
}

// ExportService renders the teacher overview as CSV or PDF.
type ExportService struct {
	overview overviewProvider
	csv      reportRenderer
	pdf      reportRenderer
	logger   *zap.Logger
}

// NewExportService constructs an export service with the default renderers.
func NewExportService(overview overviewProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{overview: overview, csv: export.NewCSVExporter(), pdf: export.NewPDFExporter(), logger: logger}
}

// Overview renders the overview report in the requested format.
func (s *ExportService) Overview(ctx context.Context, teacherID string, query dto.ReportQuery, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}

	var (
		renderer    reportRenderer
		contentType string
	)
	switch format {
	case FormatCSV:
		renderer, contentType = s.csv, "text/csv"
	case FormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "format must be csv or pdf")
	}

	overview, hit, err := s.overview.Overview(ctx, teacherID, query)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(overviewReport(overview))
	if err != nil {
		s.logger.Error("render overview export", zap.String("teacher_id", teacherID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("teacher-%s-overview.%s", teacherID, format),
		ContentType: contentType,
		Body:        body,
		CacheHit:    hit,
	}, nil
}

func overviewReport(o *dto.TeacherOverviewResponse) export.Report {
	metrics := export.Dataset{
		Headers: []string{"metric", "value"},
		Rows: []map[string]string{
			{"metric": "students", "value": strconv.Itoa(o.CohortInfo.StudentCount)},
			{"metric": "avgMessagesPerStudent", "value": formatFloat(o.EngagementMetrics.AvgMessagesPerStudent)},
			{"metric": "avgMessagesPerClass", "value": formatFloat(o.EngagementMetrics.AvgMessagesPerClass)},
			{"metric": "avgSessionsPerDay", "value": formatFloat(o.EngagementMetrics.AvgSessionsPerDay)},
			{"metric": "totalSessions", "value": strconv.Itoa(o.SessionMetrics.TotalSessions)},
			{"metric": "completedSessions", "value": strconv.Itoa(o.SessionMetrics.CompletedSessions)},
			{"metric": "completionRate", "value": formatFloat(o.SessionMetrics.CompletionRate)},
			{"metric": "avgDurationMinutes", "value": formatFloat(o.SessionMetrics.AvgDurationMinutes)},
		},
	}

	activity := export.Dataset{Headers: []string{"studentId", "name", "sessionCount"}}
	for _, row := range o.StudentActivity {
		activity.Rows = append(activity.Rows, map[string]string{
			"studentId":    row.StudentID,
			"name":         row.StudentName,
			"sessionCount": strconv.Itoa(row.SessionCount),
		})
	}

	misconceptions := export.Dataset{Headers: []string{"category", "frequency", "examples"}}
	for _, m := range o.TopMisconceptions {
		misconceptions.Rows = append(misconceptions.Rows, map[string]string{
			"category":  m.Category,
			"frequency": strconv.Itoa(m.Frequency),
			"examples":  strings.Join(m.CommonMisconceptions, "; "),
		})
	}

	title := "Teacher overview"
	if o.CohortInfo.TeacherName != "" {
		title += ": " + o.CohortInfo.TeacherName
	}
	return export.Report{
		Title:    title,
		Subtitle: fmt.Sprintf("%s to %s", o.Period.Start, o.Period.End),
		Sections: []export.Section{
			{Title: "Metrics", Data: metrics},
			{Title: "Student activity", Data: activity},
			{Title: "Top misconceptions", Data: misconceptions},
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
