// Package config provides configuration handling for the linklock commands.
//
// This package manages all configuration parameters, including binding
// command-line flags, loading environment variables, and providing default
// values. It ensures configuration values are consistent and valid before
// they are used.
//
// # Configuration Sources
//
// Configuration values are loaded with the following precedence:
//
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Default values (lowest priority)
//
// # Environment Variables
//
//	LINKLOCK_LOCK_PATH     Path to the lock file (default: /tmp/content.lock)
//	LINKLOCK_CONTENT_PATH  Path to the content file (default: /tmp/content.json)
//	LINKLOCK_COUNT         Values written by the writer / awaited by the reader (default: 10)
//	LINKLOCK_OWNER         Owner id used in the marker name (default: host_pid_nonce)
//	LINKLOCK_TIMEOUT       How long to wait for the lock, e.g. 60s (default: 60s)
//	LINKLOCK_VERBOSE       Whether to show informational messages (default: true)
//	LINKLOCK_DEBUG         Enable debug logging (default: false)
//	LINKLOCK_LOG_FILE      Path to log file (default: ~/.local/share/linklock/logs/linklock-<hash>.log)
//
// # Command-line Flags
//
//	-l, --lock-path     Path to the lock file
//	-c, --content-path  Path to the content file
//	-n, --count         Values written / awaited
//	    --owner         Owner id
//	    --timeout       How long to wait for the lock
//	-d, --debug         Enable debug logging
//	    --log-file      Path to log file
//	-q, --quiet         Hide informational messages
//
// # Usage
//
//	cfg := config.New()
//	cfg.LoadFromEnvironment()
//	cfg.BindFlags(cmd.PersistentFlags())
//
//	// after cobra has parsed the command line
//	if err := cfg.Finalize(); err != nil {
//	    // Handle error
//	}
//
// # Thread Safety
//
// The Config type is not designed to be thread-safe. Configuration is loaded
// at startup and then used read-only.
package config
