package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bashhack/linklock/internal/common"
)

// Logger is the logging interface used by the linklock commands.
// It extends common.Logger with Close so the log file can be flushed on exit.
type Logger interface {
	common.Logger

	// Close ensures any buffered data is written and closes open log file handles.
	// This should be called before the application exits to ensure all logs are properly saved.
	Close() error
}

// DefaultLogger provides structured logging capability and implements the Logger interface
type DefaultLogger struct {
	mu      sync.Mutex
	logger  *slog.Logger
	enabled bool
	logFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File // Store file handle for closing
}

// New creates a new DefaultLogger writing user messages to the process stdout/stderr
func New(enabled bool, logFile string, verbose bool) *DefaultLogger {
	return NewWithOutput(enabled, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers
func NewWithOutput(enabled bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	var logger *slog.Logger

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var file *os.File

	if enabled {
		logDir := filepath.Dir(logFile)
		if logDir != "." {
			err := os.MkdirAll(logDir, 0755)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "⚠️ Failed to create log directory: %v\n", err)
			}
		}

		// Several cooperating processes may share one log file, so it is
		// opened append-only and each line carries the writer's pid.
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			file = f
			logger = slog.New(slog.NewTextHandler(f, opts)).With("pid", os.Getpid())
			_, _ = fmt.Fprintf(stdout, "🔍 Debug logging enabled. Logs will be written to: %s\n", logFile)

			logger.Info("linklock debug logging started")
		} else {
			logger = slog.New(slog.NewTextHandler(stderr, opts))
			_, _ = fmt.Fprintf(stderr, "⚠️ Failed to open log file: %v, using stderr instead\n", err)
		}
	} else {
		logger = slog.New(slog.NewTextHandler(stderr, opts))
	}

	return &DefaultLogger{
		logger:  logger,
		enabled: enabled,
		logFile: logFile,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
		file:    file,
	}
}

// SetOwner tags every subsequent file log record with the lock owner id.
func (l *DefaultLogger) SetOwner(owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = l.logger.With("owner", owner)
}

// emit writes msg to the debug log at level when file logging is on, and to
// console (prefixed) when console is non-nil. Callers hold l.mu.
func (l *DefaultLogger) emit(level slog.Level, console io.Writer, prefix, msg string) {
	if l.enabled {
		l.logger.Log(context.Background(), level, msg)
	}
	if console == nil {
		return
	}
	if prefix != "" {
		msg = prefix + " " + msg
	}
	_, _ = fmt.Fprintln(console, msg)
}

// Info logs an informational message (file only)
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emit(slog.LevelInfo, nil, "", fmt.Sprintf(format, args...))
}

// Warning logs a warning. It reaches the console only in verbose mode.
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var console io.Writer
	if l.verbose {
		console = l.stdout
	}
	l.emit(slog.LevelWarn, console, "⚠️ ", fmt.Sprintf(format, args...))
}

// Error logs an error message; errors always reach stderr
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emit(slog.LevelError, l.stderr, "❌", fmt.Sprintf(format, args...))
}

// InfoToUser logs an informational message to both file and stdout
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emit(slog.LevelInfo, l.stdout, "ℹ️ ", fmt.Sprintf(format, args...))
}

// WarningToUser logs a warning message to both file and stdout
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emit(slog.LevelWarn, l.stdout, "⚠️ ", fmt.Sprintf(format, args...))
}

// Success logs a success message to both file and stdout
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emit(slog.LevelInfo, l.stdout, "✅", fmt.Sprintf(format, args...))
}

// StatusMessage prints a progress line to stdout only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintln(l.stdout, fmt.Sprintf(format, args...))
}

// Close ensures any buffered data is written and closes open log file handles
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if err := l.file.Sync(); err != nil {
			return err
		}
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// SetStdout sets a custom writer for user-facing stdout messages only.
// NOTE: This does not affect where structured log messages from slog are directed.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages only.
// NOTE: This does not affect where structured log messages from slog are directed.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
