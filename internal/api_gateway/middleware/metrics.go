package middleware

import (
	"time"

	"github.com/flight-booking-engine/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no registered route, keeping label cardinality bounded
const unmatchedRoute = "unmatched"

// Metrics records the latency of every request by method, route template and status
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
