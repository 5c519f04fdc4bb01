package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"microblog/internal/utils"
)

const slowRequestThreshold = 2 * time.Second

func LogRequest() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		utils.LogMessageWithFields(ctx, "info", "Request received: "+ctx.Request.Method+" "+ctx.Request.URL.Path)

		ctx.Next()

		duration := time.Since(start)
		entry := utils.EntryFromContext(ctx).WithFields(log.Fields{
			"method":   ctx.Request.Method,
			"path":     ctx.Request.URL.Path,
			"status":   ctx.Writer.Status(),
			"duration": duration.String(),
		})
		if len(ctx.Errors) > 0 {
			entry = entry.WithField("errors", ctx.Errors.String())
		}

		message := "Request completed with status " + strconv.Itoa(ctx.Writer.Status())
		if duration > slowRequestThreshold {
			utils.LogEntry(entry, "warn", "Slow request: "+message)
			return
		}
		utils.LogEntry(entry, "info", message)
	}
}
