// Package debug provides the process-wide structured logger, a log/slog
// front end over a charmbracelet/log handler.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	// logger is the global logger instance
	logger *slog.Logger
	// enabled indicates if debug level output is enabled
	enabled bool
	// mu protects the logger and enabled flag
	mu sync.RWMutex
)

// Options configures Init.
type Options struct {
	// Verbose enables debug level output. Otherwise only warnings and
	// errors are written.
	Verbose bool
	// JSON switches to one JSON object per line.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

func init() {
	Init(Options{})
}

// Init replaces the global logger.
func Init(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := charmlog.WarnLevel
	if opts.Verbose {
		level = charmlog.DebugLevel
	}

	handler := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	if opts.JSON {
		handler.SetFormatter(charmlog.JSONFormatter)
	}

	enabled = opts.Verbose
	logger = slog.New(handler)
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
