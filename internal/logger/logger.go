package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// requestIDKey is the key used to store request ID in context
type requestIDKey struct{}

// New builds the process logger. Production uses JSON output, everything
// else the console encoder.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// WithRequestID stores the request ID in a standard context.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID extracts the request ID from a standard context.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides request-scoped structured logging for services
type Logger struct {
	z *zap.Logger
}

// NewLogger creates a logger with request context
func NewLogger(ctx context.Context, base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{z: base.With(zap.String("request_id", requestID))}
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error) {
	l.z.Error("operation failed", zap.String("operation", operation), zap.Error(err))
}

// LogInfof logs a formatted info message with context
func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	l.z.Info(fmt.Sprintf(format, args...), zap.String("operation", operation))
}

// LogWarn logs a warning with context
func (l *Logger) LogWarn(operation string, message string) {
	l.z.Warn(message, zap.String("operation", operation))
}

// LogWarnf logs a formatted warning with context
func (l *Logger) LogWarnf(operation string, format string, args ...interface{}) {
	l.z.Warn(fmt.Sprintf(format, args...), zap.String("operation", operation))
}
