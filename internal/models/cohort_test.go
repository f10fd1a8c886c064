package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalyticsWindowContainsIsInclusive(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	window := AnalyticsWindow{Start: start, End: end}

	assert.True(t, window.Contains(start))
	assert.True(t, window.Contains(end))
	assert.True(t, window.Contains(start.Add(36*time.Hour)))
	assert.False(t, window.Contains(start.Add(-time.Second)))
	assert.False(t, window.Contains(end.Add(time.Second)))
}

func TestAnalyticsWindowDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := map[string]struct {
		end  time.Time
		want int
	}{
		"whole week":  {end: start.AddDate(0, 0, 7), want: 7},
		"partial day": {end: start.Add(30 * time.Hour), want: 2},
		"under a day": {end: start.Add(time.Hour), want: 1},
		"zero length": {end: start, want: 1},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			window := AnalyticsWindow{Start: start, End: tc.end}
			assert.Equal(t, tc.want, window.Days())
		})
	}
}
