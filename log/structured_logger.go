package log

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Level represents the minimum log level
type Level slog.Level

// Available log levels
const (
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
	LevelNone  Level = Level(math.MaxInt32)
)

// Options configures a StructuredLogger.
type Options struct {
	// Writer receives log lines. Defaults to os.Stderr so that command
	// output on stdout stays machine readable.
	Writer io.Writer

	// Level is the minimum level that is written.
	Level Level

	// NoColor disables ANSI colors. When false, colors are still disabled
	// if Writer is not a terminal.
	NoColor bool
}

// StructuredLogger implements the Logger interface using slog and tint
type StructuredLogger struct {
	logger *slog.Logger
}

// New returns a StructuredLogger writing to stderr at the given level.
func New(level Level) *StructuredLogger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions returns a StructuredLogger configured by opts.
func NewWithOptions(opts Options) *StructuredLogger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	tintHandler := tint.NewHandler(w, &tint.Options{
		NoColor:    opts.NoColor || !isTerminal(w),
		TimeFormat: time.Kitchen,
		Level:      slog.Level(opts.Level),
	})
	return &StructuredLogger{
		logger: slog.New(tintHandler),
	}
}

func (l *StructuredLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, withCaller(args...)...)
}

func (l *StructuredLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, withCaller(args...)...)
}

func (l *StructuredLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, withCaller(args...)...)
}

func (l *StructuredLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, withCaller(args...)...)
}

func (l *StructuredLogger) With(args ...any) Logger {
	return &StructuredLogger{logger: l.logger.With(args...)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func withCaller(args ...any) []any {
	const callerSkip = 2 // withCaller and the logging method
	if _, file, line, ok := runtime.Caller(callerSkip); ok {
		return append([]any{"caller", formatCaller(file, line)}, args...)
	}
	return args
}

func formatCaller(file string, line int) string {
	// last two path components
	parts := strings.Split(file, "/")
	switch len(parts) {
	case 0:
		return "unknown"
	case 1:
		return fmt.Sprintf("%s:%d", parts[0], line)
	default:
		return fmt.Sprintf("%s/%s:%d",
			parts[len(parts)-2],
			parts[len(parts)-1],
			line)
	}
}
