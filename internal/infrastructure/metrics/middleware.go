package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware returns a gin middleware that records metrics for each request.
func Middleware(exporter *PrometheusExporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Use the route template, not the raw URL, to keep label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		exporter.RecordRequest(method, path)
		exporter.RecordDuration(method, path, time.Since(start).Seconds())

		if c.Writer.Status() >= 400 {
			exporter.RecordError(method, path)
		}
	}
}
