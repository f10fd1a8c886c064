package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cohort-analytics-api/internal/service"
)

// unmatchedRoute labels requests that hit no route, keeping raw URLs out of
// the label set.
const unmatchedRoute = "unmatched"

// Metrics records duration and status per route template. Routes listed in
// skip such as health checks and the scrape endpoint are served but not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	ignored := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		ignored[route] = struct{}{}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := ignored[route]; ok {
			c.Next()
			return
		}
		if route == "" {
			route = unmatchedRoute
		}

		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
