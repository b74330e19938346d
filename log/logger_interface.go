package log

import (
	"context"
	"strings"
)

type contextKey string

const (
	loggerKey contextKey = "skillsearch.logger"
)

var defaultLevel = LevelWarn

// SetDefaultLevel sets the level used by loggers created without an
// explicit level, including the fallback returned by Ctx.
func SetDefaultLevel(level Level) {
	defaultLevel = level
}

// GetDefaultLevel returns the current default log level.
func GetDefaultLevel() Level {
	return defaultLevel
}

// Logger is the logging surface used throughout skill-search. It mirrors the
// slog method set so that any slog-backed or third-party logger can be adapted.
type Logger interface {
	// Debug logs a message at debug level with optional key-value pairs
	Debug(msg string, args ...any)

	// Info logs a message at info level with optional key-value pairs
	Info(msg string, args ...any)

	// Warn logs a message at warn level with optional key-value pairs
	Warn(msg string, args ...any)

	// Error logs a message at error level with optional key-value pairs
	Error(msg string, args ...any)

	// With returns a Logger that includes the given attributes in each
	// output operation.
	With(args ...any) Logger
}

// WithLogger returns a new context carrying the given logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Ctx returns the logger stored in ctx, or a stderr logger at the default
// level when there is none.
func Ctx(ctx context.Context) Logger {
	if ctx == nil {
		return New(defaultLevel)
	}
	logger, ok := ctx.Value(loggerKey).(Logger)
	if !ok {
		return New(defaultLevel)
	}
	return logger
}

// OrNull returns logger, or a NullLogger when logger is nil.
func OrNull(logger Logger) Logger {
	if logger == nil {
		return NewNullLogger()
	}
	return logger
}

// LevelFromString converts a level name to a Level. Unknown names map to the
// default level.
func LevelFromString(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "none", "off":
		return LevelNone
	default:
		return defaultLevel
	}
}

// ValidLevel reports whether value names a known level.
func ValidLevel(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug", "info", "warn", "warning", "error", "none", "off":
		return true
	}
	return false
}
