// Package logger provides logging facilities for the linklock commands.
//
// The package separates two audiences. Debug records go through log/slog to a
// text log file when debug logging is enabled; user-facing messages are
// printed to stdout/stderr with an emoji prefix regardless of that setting.
//
// # Core Components
//
// - Logger: the interface used by the commands (common.Logger plus Close)
// - DefaultLogger: the implementation writing to console and/or file
//
// # Message Types
//
// - Info: debug-only, written to the log file
// - InfoToUser: printed to stdout and written to the log file
// - Warning: written to the log file, printed only when verbose
// - WarningToUser: printed to stdout and written to the log file
// - Error: printed to stderr and written to the log file
// - Success: printed to stdout and written to the log file
// - StatusMessage: printed to stdout only
//
// # Shared Log Files
//
// The default log file is derived from the lock path, so a reader and a writer
// guarding the same resource append to the same file. Every record carries
// the pid of the writing process, and SetOwner adds the lock owner id:
//
//	log := logger.New(true, "/tmp/linklock.log", true)
//	log.SetOwner(ownerID)
//	defer log.Close()
//
//	log.Info("Obtained lock (%s -> %s)", marker, path)
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use by multiple goroutines.
package logger
