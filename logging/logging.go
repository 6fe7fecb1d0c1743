package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Options describes logger construction parameters
type Options struct {
	// Level is one of debug, info, warn, error
	Level string
	// Format is text or json
	Format string
	// FilePath additionally appends every record, debug included, to a file
	FilePath string
	// Stderr overrides the console writer; nil means os.Stderr
	Stderr io.Writer
}

var (
	logger  = newLogger(os.Stderr, slog.LevelWarn, "text")
	logFile *os.File
	mu      sync.Mutex
)

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	return slog.New(newHandler(w, level, format))
}

func newHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a level name to a slog level; unknown names mean info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger replaces the process logger. Calling it again closes any
// previously opened log file.
func SetupLogger(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "", "text", "console":
		format = "text"
	case "json":
	default:
		return fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	var w io.Writer = os.Stderr
	if opts.Stderr != nil {
		w = opts.Stderr
	}

	closeFileLocked()
	handlers := []slog.Handler{newHandler(w, ParseLevel(opts.Level), format)}

	// The log file receives every record regardless of the console level
	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %v", err)
		}
		logFile = f
		handlers = append(handlers, newHandler(f, slog.LevelDebug, format))
	}

	logger = slog.New(newFanoutHandler(handlers...))
	logger.Debug("logger started", "at", time.Now().Format(time.RFC3339))
	return nil
}

// CloseLogger closes the log file and restores the default stderr logger
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	closeFileLocked()
	logger = newLogger(os.Stderr, slog.LevelWarn, "text")
}

func closeFileLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Logger returns the current process logger
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func logf(level slog.Level, format string, args ...interface{}) {
	l := Logger()
	if !l.Enabled(context.Background(), level) {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	logf(slog.LevelInfo, format, args...)
}

// DebugLog logs a message if debug level is enabled
func DebugLog(format string, args ...interface{}) {
	logf(slog.LevelDebug, format, args...)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logf(slog.LevelError, format, args...)
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	logf(slog.LevelWarn, format, args...)
}

// LogConversion logs the outcome of converting one source
func LogConversion(source, output string, err error) {
	l := Logger()
	if err != nil {
		l.Error("conversion failed", "source", source, "error", err.Error())
		return
	}
	l.Info("converted", "source", source, "output", output)
}
