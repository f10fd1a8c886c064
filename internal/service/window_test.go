package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cohort-analytics-api/internal/dto"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

func TestWindowParsesDatesAndTimestamps(t *testing.T) {
	v := NewWindowValidator(nil, 10)

	window, err := v.Window(dto.ReportQuery{Start: "2024-03-01", End: "2024-03-08T12:30:00+02:00"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2024, 3, 8, 10, 30, 0, 0, time.UTC), window.End)
}

func TestWindowRejectsInvalidInput(t *testing.T) {
	v := NewWindowValidator(nil, 10)
	cases := map[string]struct {
		query   dto.ReportQuery
		message string
	}{
		"missing start":   {dto.ReportQuery{End: "2024-03-08"}, "start is required"},
		"missing end":     {dto.ReportQuery{Start: "2024-03-01"}, "end is required"},
		"malformed":       {dto.ReportQuery{Start: "03/01/2024", End: "2024-03-08"}, "start must be an ISO-8601 date"},
		"start == end":    {dto.ReportQuery{Start: "2024-03-01", End: "2024-03-01"}, "start must be before end"},
		"start after end": {dto.ReportQuery{Start: "2024-03-09", End: "2024-03-01"}, "start must be before end"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Window(tc.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrInvalidArgument)
			assert.Equal(t, tc.message, appErrors.FromError(err).Message)
		})
	}
}

func TestWindowDoesNotCheckLimit(t *testing.T) {
	v := NewWindowValidator(nil, 10)

	_, err := v.Window(dto.ReportQuery{Start: "2024-03-01", End: "2024-03-08", Limit: ptr(0)})
	assert.NoError(t, err)
}

func TestLimitBounds(t *testing.T) {
	v := NewWindowValidator(nil, 10)

	limit, err := v.Limit(dto.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10, limit)

	for _, ok := range []int{1, 25, 50} {
		limit, err := v.Limit(dto.ReportQuery{Limit: ptr(ok)})
		require.NoError(t, err)
		assert.Equal(t, ok, limit)
	}
	for _, bad := range []int{-1, 0, 51} {
		_, err := v.Limit(dto.ReportQuery{Limit: ptr(bad)})
		assert.ErrorIs(t, err, appErrors.ErrInvalidArgument, "limit %d", bad)
	}
}
