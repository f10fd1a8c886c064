package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/cohort-analytics-api/internal/dto"
	"github.com/noah-isme/cohort-analytics-api/internal/models"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

// FAQ limit bounds accepted by the FAQ report.
const (
	MinFAQLimit = 1
	MaxFAQLimit = 50
)

const dateOnly = "2006-01-02"

// WindowValidator turns raw report query parameters into a validated window.
type WindowValidator struct {
	validate     *validator.Validate
	defaultLimit int
}

// NewWindowValidator constructs a validator. defaultLimit is used when the
// request carries no limit.
func NewWindowValidator(validate *validator.Validate, defaultLimit int) *WindowValidator {
	if validate == nil {
		validate = validator.New()
	}
	if defaultLimit < MinFAQLimit || defaultLimit > MaxFAQLimit {
		defaultLimit = 10
	}
	return &WindowValidator{validate: validate, defaultLimit: defaultLimit}
}

// Window parses start and end. Both are required, must parse as a date or
// RFC3339 timestamp, and start must be strictly before end. The limit is left
// to Limit since only the FAQ report reads it.
func (v *WindowValidator) Window(query dto.ReportQuery) (models.AnalyticsWindow, error) {
	if err := v.validate.StructPartial(query, "Start", "End"); err != nil {
		return models.AnalyticsWindow{}, invalidQuery(err)
	}
	start, err := parseReportDate(query.Start)
	if err != nil {
		return models.AnalyticsWindow{}, appErrors.Clone(appErrors.ErrInvalidArgument, "start must be an ISO-8601 date")
	}
	end, err := parseReportDate(query.End)
	if err != nil {
		return models.AnalyticsWindow{}, appErrors.Clone(appErrors.ErrInvalidArgument, "end must be an ISO-8601 date")
	}
	if !start.Before(end) {
		return models.AnalyticsWindow{}, appErrors.Clone(appErrors.ErrInvalidArgument, "start must be before end")
	}
	return models.AnalyticsWindow{Start: start, End: end}, nil
}

// Limit returns the FAQ limit for the query, rejecting values outside [1,50].
func (v *WindowValidator) Limit(query dto.ReportQuery) (int, error) {
	if query.Limit == nil {
		return v.defaultLimit, nil
	}
	if err := v.validate.Var(*query.Limit, "min=1,max=50"); err != nil {
		return 0, appErrors.Clone(appErrors.ErrInvalidArgument, "limit must be between 1 and 50")
	}
	return *query.Limit, nil
}

func invalidQuery(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := strings.ToLower(fieldErrs[0].Field())
		switch fieldErrs[0].Tag() {
		case "required":
			return appErrors.Clone(appErrors.ErrInvalidArgument, field+" is required")
		}
	}
	return appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "invalid query parameters")
}

func parseReportDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
