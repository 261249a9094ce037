package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrLockHeld indicates the lock path is already linked by another owner.
	// This is the expected contention outcome, not a failure of the lock itself.
	ErrLockHeld = errors.New("lock is held by another owner")

	// ErrOwnershipMismatch indicates the lock link no longer references the caller's owner marker
	ErrOwnershipMismatch = errors.New("lock is not held by this owner")

	// ErrFilesystemFault indicates an unexpected I/O, permission or resource error from the filesystem
	ErrFilesystemFault = errors.New("filesystem fault")

	// ErrProtocolMisuse indicates a programming error: a duplicate owner id in flight,
	// a reentrant acquire, or a release without a prior successful acquire
	ErrProtocolMisuse = errors.New("lock protocol misuse")

	// ErrNotHeld indicates the lock path is not currently linked by anyone
	ErrNotHeld = errors.New("lock is not held")

	// ErrTimeout indicates a blocking acquire gave up before the lock became free
	ErrTimeout = errors.New("timed out waiting for lock")

	// ErrUnsupportedPlatform indicates the platform has no atomic hard-link primitive
	ErrUnsupportedPlatform = errors.New("hard-link locking is not supported on this platform")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// New creates a new error with the given message.
// This is a convenience function that wraps errors.New.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new formatted error.
// This is a convenience function that wraps fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Fault marks err as a filesystem fault while keeping the underlying OS error
// reachable, so both errors.Is(err, ErrFilesystemFault) and
// errors.Is(err, fs.ErrPermission) hold.
func Fault(err error, message string) error {
	return fmt.Errorf("%s: %w: %w", message, ErrFilesystemFault, err)
}

// Is reports whether target is in err's chain.
// This is a convenience function that wraps errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience function that wraps errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
// This is a convenience function that wraps errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// LockError represents an error that occurred when interacting with a lock path.
// It includes the lock path, the owner id if known, and the underlying error.
type LockError struct {
	LockFile string
	Owner    string
	Err      error
}

// Error implements the error interface with details about the lock path and owner.
func (e *LockError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("lock error with file %s (owner: %s): %v", e.LockFile, e.Owner, e.Err)
	}
	return fmt.Sprintf("lock error with file %s: %v", e.LockFile, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError with the given parameters.
func NewLockError(lockFile string, owner string, err error) *LockError {
	return &LockError{
		LockFile: lockFile,
		Owner:    owner,
		Err:      err,
	}
}

// ConfigError represents an error in the application configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}
