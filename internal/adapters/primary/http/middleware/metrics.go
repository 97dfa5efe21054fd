package middleware

import (
	"time"

	"model-governance-service/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route template. Unmatched
// routes are grouped under one label to bound cardinality.
func Metrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
