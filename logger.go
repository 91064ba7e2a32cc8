package adago

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with adago-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithEpoch adds an epoch field to the logger.
func (l *Logger) WithEpoch(epoch int) *Logger {
	return &Logger{
		Logger: l.Logger.With("epoch", epoch),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogCentroidPass logs one epoch-begin centroid/clustering pass.
func (l *Logger) LogCentroidPass(ctx context.Context, k, sourceCount, targetCount, iterations int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "centroid pass failed",
			"k", k,
			"source_samples", sourceCount,
			"target_samples", targetCount,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "centroid pass completed",
			"k", k,
			"source_samples", sourceCount,
			"target_samples", targetCount,
			"iterations", iterations,
		)
	}
}

// LogBankUpdate logs one batch-end memory-bank update.
func (l *Logger) LogBankUpdate(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "memory bank update failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "memory bank updated",
			"rows", rows,
		)
	}
}

// LogCheckpoint logs a memory-bank checkpoint save or load.
func (l *Logger) LogCheckpoint(ctx context.Context, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint completed",
			"name", name,
			"bytes", bytes,
		)
	}
}
