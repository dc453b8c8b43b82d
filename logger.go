package searchtree

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with searchtree-specific context.
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
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithService adds a service field to the logger.
func (l *Logger) WithService(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("service", id),
	}
}

// WithSource adds a source field (archive name, file path) to the logger.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", name),
	}
}

// LogParse logs a finished parse.
func (l *Logger) LogParse(ctx context.Context, response string, results, skipped int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "parse failed",
			"duration", duration,
			"error", err,
		)
		return
	}
	if skipped > 0 {
		l.WarnContext(ctx, "parse completed with skipped results",
			"response", response,
			"results", results,
			"skipped", skipped,
			"duration", duration,
		)
		return
	}
	l.DebugContext(ctx, "parse completed",
		"response", response,
		"results", results,
		"duration", duration,
	)
}

// LogSkippedResult logs an element dropped without failing the parse.
func (l *Logger) LogSkippedResult(ctx context.Context, name, reason string, err error) {
	if err != nil {
		l.DebugContext(ctx, "result skipped",
			"element", name,
			"reason", reason,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "result skipped",
		"element", name,
		"reason", reason,
	)
}

// LogDiscardedResult logs a common result that its target declined.
func (l *Logger) LogDiscardedResult(ctx context.Context, name, target string) {
	l.DebugContext(ctx, "result discarded",
		"element", name,
		"target", target,
	)
}

// LogRegistration logs a change to the type registry.
func (l *Logger) LogRegistration(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.WarnContext(ctx, "registration failed",
			"op", op,
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "registration updated",
		"op", op,
		"name", name,
	)
}
