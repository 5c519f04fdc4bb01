package utils

import (
	"context"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func GenerateTraceId() string {
	return uuid.New().String()
}

// ExtractServiceName names the deployment in log entries, "main" unless PR_NUMBER is set.
func ExtractServiceName() string {
	if pr := os.Getenv("PR_NUMBER"); pr != "" {
		return "PR-" + pr
	}
	return "main"
}

func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	case "panic":
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

func LogMessage(level, message string) {
	entry := log.WithFields(log.Fields{
		"service": ExtractServiceName(),
	})

	LogEntry(entry, level, message)
}

// EntryFromContext returns a log entry tagged with the trace id of the request, if there is one.
func EntryFromContext(ctx context.Context) *log.Entry {
	fields := log.Fields{
		"service": ExtractServiceName(),
	}
	if ctx != nil {
		if traceId, ok := ctx.Value(TraceIdKey).(string); ok {
			fields["traceId"] = traceId
		} else if traceId, ok := ctx.Value(TraceIdKey.String()).(string); ok {
			fields["traceId"] = traceId
		}
	}
	return log.WithFields(fields)
}

func LogMessageWithFields(ctx context.Context, level, message string) {
	LogEntry(EntryFromContext(ctx), level, message)
}

func LogMessageWithFieldsAndError(ctx context.Context, level, message string, err error) {
	LogEntry(EntryFromContext(ctx).WithError(err), level, message)
}
