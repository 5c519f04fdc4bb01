package middleware

import (
	"github.com/gin-gonic/gin"
	"microblog/internal/metrics"
)

// RecordMetrics counts every request by matched route and status class.
func RecordMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, metrics.StatusClass(c.Writer.Status())).Inc()
	}
}
