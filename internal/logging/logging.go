// Package logging provides the structured logging wrapper shared by every
// other package. It wraps log/slog with a package-level default logger so
// callers never thread a *slog.Logger through constructors they don't
// otherwise need.
package logging

import (
	"io"
	"log/slog"
	"os"
)

var (
	defaultLogger *slog.Logger
	level         = new(slog.LevelVar)
)

// Init (re)configures the default logger. format "json" selects a JSON
// handler; anything else (including "") selects text. A nil output defaults
// to stderr, keeping stdout free for duplicate-group output.
func Init(levelName, format string, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}

	switch levelName {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn", "":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelWarn)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	defaultLogger = slog.New(handler)
}

// Logger returns the default logger, initializing it with warn/text/stderr
// defaults on first use so packages never see a nil logger in tests that
// skip Init.
func Logger() *slog.Logger {
	if defaultLogger == nil {
		Init("warn", "text", nil)
	}
	return defaultLogger
}

func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// With returns a logger carrying the given key-value pairs in every
// subsequent record, e.g. logging.With("path", p).Warn("stat failed").
func With(args ...any) *slog.Logger { return Logger().With(args...) }
