// Package linklock is an exclusive lock between processes built on hard links
//
// A process takes the lock on a path R by creating its own empty marker file
// R.<owner-id> and hard-linking it to R. The link either succeeds or fails
// with "already exists", atomically, on any POSIX filesystem including NFS,
// so exactly one of any number of racing processes wins. Releasing unlinks R
// and then the marker, after checking that R is still the same inode as the
// caller's marker. No daemon, no open file descriptors and no advisory-lock
// support are needed, and a crashed holder leaves its marker behind, which
// names the process that held the lock.
//
// # Quick Start
//
//	# Terminal 1: write 1..10 to /tmp/content.json under the lock
//	linklock writer
//
//	# Terminal 2: read the file under the same lock until it reaches 10
//	linklock reader
//
//	# Who holds the lock right now?
//	linklock status
//
//	# Clear a lock left behind by a process that died
//	linklock break --stale-only
//
// # Module Structure
//
// The module is organized into these packages:
//
//   - cmd/linklock: Command-line interface
//   - internal/lock: The hard-link lock, blocking acquire and holder inspection
//   - internal/owner: Owner ids (host_pid_nonce) and liveness checks
//   - internal/demo: The reader/writer exercise
//   - internal/config: Configuration, environment and flag binding
//   - internal/logger: Logging facilities
//   - internal/errors: Error handling utilities
//   - internal/constants: ASCII art and fixed values
//
// # Library Use
//
//	lk, err := lock.New("/var/run/myjob.lock", owner.New().String())
//	if err != nil {
//	    return err
//	}
//	ctx, cancel := context.WithTimeout(ctx, time.Minute)
//	defer cancel()
//	return lk.With(ctx, func() error {
//	    // exclusive section
//	    return nil
//	})
//
// # Common Configuration Options
//
//	# Use a different lock and content file
//	linklock writer -l ./demo.lock -c ./demo.json
//
//	# Wait at most 5 seconds for each lock round
//	linklock reader --timeout 5s
//
//	# Write debug logs shared by every process on the lock
//	linklock writer -d
//
// # Platform Support
//
// linklock needs hard links and lstat device/inode numbers, and is available
// on Linux, macOS and other Unix-like systems. Elsewhere creating a lock
// reports an unsupported platform.
//
// # Implementation Notes
//
// The lock itself never blocks and keeps no state in memory beyond whether
// the handle holds it. Waiting is a loop of single attempts with a jittered
// pause, woken early by a filesystem watch on the lock's directory.
//
// The commands handle SIGINT, SIGTERM and SIGHUP by cancelling the running
// operation, which releases a held lock before exiting.
package linklock
