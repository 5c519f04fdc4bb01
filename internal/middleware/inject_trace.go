package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"microblog/internal/utils"
)

// InjectTrace tags the request with a fresh trace id. It is stored on the gin context, on the request
// context for code that only sees a context.Context, and echoed in the X-Trace-Id header.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), utils.TraceIdKey, traceId))
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
