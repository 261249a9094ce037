package lock

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bashhack/linklock/internal/common"
	"github.com/bashhack/linklock/internal/errors"
)

// MarkerPath returns the owner marker path for owner on the lock path.
func MarkerPath(path, owner string) string {
	return path + "." + owner
}

// Acquire makes one attempt to take the lock on path for owner.
//
// It exclusively creates the owner marker path.owner and hard-links it to
// path. It returns ErrLockHeld when path already exists, ErrProtocolMisuse
// when the owner marker already exists, and ErrFilesystemFault for anything
// else. It never blocks or retries.
func Acquire(path, owner string) error {
	return acquire(path, owner, common.Discard{})
}

// Release removes the lock on path held by owner: the link at path first,
// then the owner marker. It refuses with ErrOwnershipMismatch when path is
// not the same file as the owner's marker, and with ErrProtocolMisuse when
// neither exists.
func Release(path, owner string) error {
	return release(path, owner, common.Discard{})
}

// IsHeldByOther reports whether path is linked to some marker other than owner's.
func IsHeldByOther(path, owner string) (bool, error) {
	lockID, err := statID(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.NewLockError(path, owner, errors.Fault(err, "failed to stat lock"))
	}

	markID, err := statID(MarkerPath(path, owner))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, errors.NewLockError(path, owner, errors.Fault(err, "failed to stat owner marker"))
	}

	return lockID != markID, nil
}

// IsHeldBy reports whether path is currently linked to owner's marker.
func IsHeldBy(path, owner string) (bool, error) {
	lockID, err := statID(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.NewLockError(path, owner, errors.Fault(err, "failed to stat lock"))
	}

	markID, err := statID(MarkerPath(path, owner))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.NewLockError(path, owner, errors.Fault(err, "failed to stat owner marker"))
	}

	return lockID == markID, nil
}

func acquire(path, owner string, log common.Recorder) error {
	marker := MarkerPath(path, owner)

	// O_EXCL with O_CREATE: a second attempt by the same owner must not proceed
	f, err := os.OpenFile(marker, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.NewLockError(path, owner,
				errors.Wrapf(errors.ErrProtocolMisuse, "owner marker %s already exists", marker))
		}
		return errors.NewLockError(path, owner, errors.Fault(err, "failed to create owner marker"))
	}
	if err := f.Close(); err != nil {
		return errors.NewLockError(path, owner,
			errors.Join(errors.Fault(err, "failed to close owner marker"), discardMarker(marker)))
	}

	linkErr := link(marker, path)
	if linkErr == nil {
		log.Info("Obtained lock (%s -> %s)", marker, path)
		return nil
	}

	// On NFS a retransmitted link can report failure after it succeeded, so
	// the inodes decide, not the return value.
	if mine, _ := sameFile(path, marker); mine {
		log.Info("Obtained lock (%s -> %s) despite link error: %v", marker, path, linkErr)
		return nil
	}

	if errors.Is(linkErr, fs.ErrExist) {
		log.Info("Lock %s is held by another owner", path)
		return errors.NewLockError(path, owner, errors.Join(errors.ErrLockHeld, discardMarker(marker)))
	}

	log.Error("Unexpected error while linking %s -> %s: %v", marker, path, linkErr)
	return errors.NewLockError(path, owner,
		errors.Join(errors.Fault(linkErr, "failed to link lock"), discardMarker(marker)))
}

// discardMarker removes an owner marker that never became the lock.
func discardMarker(marker string) error {
	if err := unlink(marker); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Fault(err, "failed to remove owner marker")
	}
	return nil
}

func release(path, owner string, log common.Recorder) error {
	marker := MarkerPath(path, owner)

	lockID, lockErr := statID(path)
	if lockErr != nil && !errors.Is(lockErr, fs.ErrNotExist) {
		return errors.NewLockError(path, owner, errors.Fault(lockErr, "failed to stat lock"))
	}
	markID, markErr := statID(marker)
	if markErr != nil && !errors.Is(markErr, fs.ErrNotExist) {
		return errors.NewLockError(path, owner, errors.Fault(markErr, "failed to stat owner marker"))
	}

	lockMissing := lockErr != nil
	markMissing := markErr != nil

	switch {
	case lockMissing && markMissing:
		return errors.NewLockError(path, owner,
			errors.Wrap(errors.ErrProtocolMisuse, "release without a successful acquire"))
	case lockMissing:
		log.Warning("Lock %s vanished while %s was still present", path, marker)
		return errors.NewLockError(path, owner,
			errors.Wrapf(errors.ErrOwnershipMismatch, "lock link is gone, owner marker %s left in place", marker))
	case markMissing || lockID != markID:
		log.Warning("Refusing to release %s: it is linked to another owner", path)
		return errors.NewLockError(path, owner,
			errors.Wrap(errors.ErrOwnershipMismatch, "lock link references another owner marker"))
	}

	// Removing the link is what frees the resource; the marker is our own garbage
	if err := unlink(path); err != nil {
		return errors.NewLockError(path, owner, errors.Fault(err, "failed to remove lock link"))
	}
	if err := unlink(marker); err != nil {
		return errors.NewLockError(path, owner, errors.Fault(err, "failed to remove owner marker"))
	}

	log.Info("Released lock (%s -> %s)", marker, path)
	return nil
}

// sameFile reports whether both paths exist and name the same inode.
func sameFile(a, b string) (bool, error) {
	aID, err := statID(a)
	if err != nil {
		return false, err
	}
	bID, err := statID(b)
	if err != nil {
		return false, err
	}
	return aID == bID, nil
}

// Locker is a handle on one lock path for one owner.
// It is not safe for concurrent use by multiple goroutines.
type Locker struct {
	path   string
	owner  string
	held   bool
	logger common.Recorder
	retry  RetryPolicy
	watch  bool
}

// Option configures a Locker.
type Option func(*Locker)

// WithLogger sets the logger used for debug records. The default discards everything.
func WithLogger(l common.Recorder) Option {
	return func(lk *Locker) {
		if l != nil {
			lk.logger = l
		}
	}
}

// WithRetry sets the backoff used by Acquire between attempts.
func WithRetry(p RetryPolicy) Option {
	return func(lk *Locker) {
		lk.retry = p
	}
}

// WithWatch toggles the filesystem watch that wakes Acquire as soon as the
// lock path is removed. It is on by default.
func WithWatch(enabled bool) Option {
	return func(lk *Locker) {
		lk.watch = enabled
	}
}

// New creates a Locker for path and owner.
func New(path, owner string, opts ...Option) (*Locker, error) {
	if !supported {
		return nil, errors.NewLockError(path, owner, errors.ErrUnsupportedPlatform)
	}
	if path == "" {
		return nil, errors.NewLockError(path, owner, errors.Wrap(errors.ErrProtocolMisuse, "lock path is empty"))
	}
	if owner == "" {
		return nil, errors.NewLockError(path, owner, errors.Wrap(errors.ErrProtocolMisuse, "owner id is empty"))
	}
	if strings.ContainsRune(owner, '/') || strings.ContainsRune(owner, filepath.Separator) {
		return nil, errors.NewLockError(path, owner,
			errors.Wrap(errors.ErrProtocolMisuse, "owner id must not contain a path separator"))
	}

	l := &Locker{
		path:   filepath.Clean(path),
		owner:  owner,
		logger: common.Discard{},
		retry:  DefaultRetryPolicy,
		watch:  true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the lock path.
func (l *Locker) Path() string { return l.path }

// Owner returns the owner id.
func (l *Locker) Owner() string { return l.owner }

// MarkerPath returns this owner's marker path.
func (l *Locker) MarkerPath() string { return MarkerPath(l.path, l.owner) }

// Held reports whether this handle believes it holds the lock.
func (l *Locker) Held() bool { return l.held }

// TryAcquire makes a single non-blocking attempt to take the lock.
func (l *Locker) TryAcquire() error {
	if l.held {
		return errors.NewLockError(l.path, l.owner,
			errors.Wrap(errors.ErrProtocolMisuse, "lock is not reentrant"))
	}

	l.logger.Info("Trying to acquire lock %s", l.path)
	if err := acquire(l.path, l.owner, l.logger); err != nil {
		return err
	}
	l.held = true
	return nil
}

// Release gives the lock back.
func (l *Locker) Release() error {
	if !l.held {
		return errors.NewLockError(l.path, l.owner,
			errors.Wrap(errors.ErrProtocolMisuse, "release without a successful acquire"))
	}

	err := release(l.path, l.owner, l.logger)
	// A filesystem fault leaves the lock in place, so the caller may retry;
	// every other outcome means this handle no longer holds it.
	if err == nil || !errors.Is(err, errors.ErrFilesystemFault) {
		l.held = false
	}
	return err
}

// IsHeldByOther reports whether another owner currently holds the lock.
func (l *Locker) IsHeldByOther() (bool, error) {
	return IsHeldByOther(l.path, l.owner)
}
