//go:build unix

package owner

import "golang.org/x/sys/unix"

// isProcessRunning checks if a process exists using signal 0.
// EPERM means the process exists but belongs to another user.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
