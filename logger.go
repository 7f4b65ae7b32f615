package subdb

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with subdb-specific context.
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
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRun adds the stores of a run to the logger.
func (l *Logger) WithRun(cfg Config) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			"source", cfg.Source,
			"dest", cfg.Dest,
			"mode", cfg.Mode.String(),
		),
	}
}

// LogSkip logs a row that was not carried into the destination. Malformed rows are
// logged as errors, all other skips as warnings.
func (l *Logger) LogSkip(ctx context.Context, line int, descriptor string, reason SkipReason, err error) {
	level := slog.LevelWarn
	if reason == SkipMalformed {
		level = slog.LevelError
	}
	l.Log(ctx, level, "row skipped",
		"line", line,
		"descriptor", descriptor,
		"reason", reason.String(),
		"error", err,
	)
}

// LogDuplicate logs a key written more than once.
func (l *Logger) LogDuplicate(ctx context.Context, line int, key uint32) {
	l.WarnContext(ctx, "duplicate key",
		"line", line,
		"key", key,
	)
}

// LogRow logs a projected row.
func (l *Logger) LogRow(ctx context.Context, line int, key uint32, strategy string, written uint64) {
	l.DebugContext(ctx, "row written",
		"line", line,
		"key", key,
		"strategy", strategy,
		"bytes", written,
	)
}

// LogSummary logs the outcome of a run.
func (l *Logger) LogSummary(ctx context.Context, s *Summary, err error) {
	if err != nil {
		l.ErrorContext(ctx, "subset failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "subset created",
		"rows", s.Rows,
		"written", s.Written(),
		"skipped", s.Skipped(),
		"duplicates", s.Duplicates,
		"bytes", s.Bytes,
		"ordered", s.Ordered,
		"index_format", s.IndexFormat,
		"dbtype", s.DBType.String(),
	)
}
