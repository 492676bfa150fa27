package observability

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the process logger and installs it as the zap global.
// An unknown level falls back to info.
func InitLogger(serviceName, level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	logger = logger.With(
		zap.String("service", serviceName),
		zap.String("instance", uuid.NewString()),
	)
	zap.ReplaceGlobals(logger)
	return logger
}

// GetLogger returns the global logger tagged with the trace and span of ctx.
// Before InitLogger it returns a no-op logger.
func GetLogger(ctx context.Context) *zap.Logger {
	logger := zap.L()

	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		logger = logger.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return logger
}
