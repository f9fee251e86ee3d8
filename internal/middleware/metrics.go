// internal/middleware/metrics.go
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/robustlab/smoothing-service/internal/metrics"
)

// Metrics records Prometheus histogram metrics for HTTP requests. It
// measures the duration of each request and records it with route and
// status code labels.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())

		metrics.RecordHTTPLatency(route, code, duration)
	}
}
