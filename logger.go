package selfcell

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with selfcell-specific context.
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
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

var noopLogger = NoopLogger()

// WithOwnerType adds an owner type field to the logger.
func (l *Logger) WithOwnerType(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("owner", name),
	}
}

// WithDependentType adds a dependent type field to the logger.
func (l *Logger) WithDependentType(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dependent", name),
	}
}

// LogConstruct logs a cell construction.
func (l *Logger) LogConstruct(ctx context.Context, size int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "cell construction failed",
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cell constructed",
			"size", size,
		)
	}
}

// LogDestroy logs a cell teardown. op is "destroy" or "into_owner".
func (l *Logger) LogDestroy(ctx context.Context, op string, err error) {
	if err != nil {
		l.WarnContext(ctx, "cell teardown reported errors",
			"op", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cell torn down",
			"op", op,
		)
	}
}

// LogTeardownPanic logs a destructor hook that panicked. The panic itself
// continues to propagate after this call.
func (l *Logger) LogTeardownPanic(ctx context.Context, op string) {
	l.ErrorContext(ctx, "destructor hook panicked; owner destroyed and block freed",
		"op", op,
	)
}

// LogLazyInit logs the publication of a lazily built dependent.
func (l *Logger) LogLazyInit(ctx context.Context, took time.Duration) {
	l.DebugContext(ctx, "lazy dependent initialized",
		"took", took,
	)
}
