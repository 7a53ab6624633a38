package tabgo

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Logger wraps slog.Logger with tabgo-specific helpers.
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

// NewConsoleLogger creates a Logger with colored output for interactive
// use. Colors are disabled when stderr is not a terminal.
func NewConsoleLogger(level slog.Level) *Logger {
	return NewLogger(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// LogTableCreated logs the creation of a table store.
func (l *Logger) LogTableCreated(name string) {
	l.Debug("table created", "table", name)
}

// LogTableDestroyed logs the destruction of a table store with its last view.
func (l *Logger) LogTableDestroyed(name string, rows, columns int) {
	l.Debug("table destroyed",
		"table", name,
		"rows", rows,
		"columns", columns,
	)
}

// LogKeyRebuild logs a primary-key index rebuild.
func (l *Logger) LogKeyRebuild(name string, keys, rows int, duration time.Duration, err error) {
	if err != nil {
		l.Warn("key index rebuild failed",
			"table", name,
			"keys", keys,
			"error", err,
		)
	} else {
		l.Debug("key index rebuilt",
			"table", name,
			"keys", keys,
			"rows", rows,
			"duration", duration,
		)
	}
}

// LogRestore logs a restore from a dump.
func (l *Logger) LogRestore(name, source string, records int, err error) {
	if err != nil {
		l.Error("restore failed",
			"table", name,
			"source", source,
			"records", records,
			"error", err,
		)
	} else {
		l.Info("restore completed",
			"table", name,
			"source", source,
			"records", records,
		)
	}
}

// LogCallbackError logs an error returned by a trace or notifier callback.
func (l *Logger) LogCallbackError(name string, err error) {
	l.Error("callback failed",
		"table", name,
		"error", err,
	)
}
