package mfvec

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/mfvec/model"
)

// Logger wraps slog.Logger with field-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithHandle adds a handle field to the logger.
func (l *Logger) WithHandle(h model.Handle) *Logger {
	return &Logger{
		Logger: l.Logger.With("handle", uint32(h)),
	}
}

// LogBind logs the construction of a field.
func (l *Logger) LogBind(ctx context.Context, op string, h model.Handle, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "field construction failed",
			"op", op,
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "field bound",
			"op", op,
			"handle", uint32(h),
			"size", size,
		)
	}
}

// LogRelease logs the release of a field's handle.
func (l *Logger) LogRelease(ctx context.Context, h model.Handle, err error) {
	if err != nil {
		l.ErrorContext(ctx, "field release failed",
			"handle", uint32(h),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "field released",
			"handle", uint32(h),
		)
	}
}

// LogWrite logs a failed mutation. Successful writes are not logged.
func (l *Logger) LogWrite(ctx context.Context, op string, h model.Handle, err error) {
	if err == nil {
		return
	}
	l.ErrorContext(ctx, "field write failed",
		"op", op,
		"handle", uint32(h),
		"error", err,
	)
}
