package lock

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bashhack/linklock/internal/errors"
)

// Holder describes who is linked at a lock path.
type Holder struct {
	// Path is the lock path.
	Path string
	// Owner is the owner id recovered from the marker name, or empty when no
	// sibling marker shares the lock's inode (an orphaned link).
	Owner string
	// Marker is the owner marker path, empty when Owner is empty.
	Marker string

	// id is the lock inode seen by Inspect, zero for a Holder built by hand.
	id fileID
}

// Orphaned reports whether the lock link has no matching owner marker.
func (h Holder) Orphaned() bool {
	return h.Marker == ""
}

// Inspect finds the current holder of path by scanning its directory for a
// sibling marker with the same inode. It returns ErrNotHeld when path does not exist.
func Inspect(path string) (Holder, error) {
	h := Holder{Path: path}

	lockID, err := statID(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return h, errors.NewLockError(path, "", errors.ErrNotHeld)
		}
		return h, errors.NewLockError(path, "", errors.Fault(err, "failed to stat lock"))
	}
	h.id = lockID

	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return h, errors.NewLockError(path, "", errors.Fault(err, "failed to list lock directory"))
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
			continue
		}
		candidate := filepath.Join(dir, name)
		id, err := statID(candidate)
		if err != nil {
			// Markers come and go while we scan
			continue
		}
		if id == lockID {
			h.Owner = name[len(prefix):]
			h.Marker = candidate
			return h, nil
		}
	}

	return h, nil
}

// Break force-clears the lock on path, removing the link and the holder's
// marker if one is found. It is meant for an operator or supervisor that has
// decided the holder is gone; calling it while the holder is alive breaks
// mutual exclusion. Missing files are not an error.
func Break(path string) (Holder, error) {
	h, err := Inspect(path)
	if err != nil {
		return h, err
	}

	if err := unlink(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return h, errors.NewLockError(path, h.Owner, errors.Fault(err, "failed to remove lock link"))
	}
	if h.Marker != "" {
		if err := unlink(h.Marker); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return h, errors.NewLockError(path, h.Owner, errors.Fault(err, "failed to remove owner marker"))
		}
	}
	return h, nil
}

// BreakHolder clears the lock only if it is still held by expected, as
// returned by an earlier Inspect. The lock is re-checked immediately before
// unlinking and ErrLockHeld is returned when another owner has taken it in
// the meantime. Only expected's marker is removed.
func BreakHolder(expected Holder) (Holder, error) {
	path := expected.Path

	current, err := statID(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expected, errors.NewLockError(path, expected.Owner, errors.ErrNotHeld)
		}
		return expected, errors.NewLockError(path, expected.Owner, errors.Fault(err, "failed to stat lock"))
	}

	changed := expected.id != (fileID{}) && expected.id != current
	if !changed && expected.Orphaned() {
		h, err := Inspect(path)
		if err != nil {
			return expected, err
		}
		changed = !h.Orphaned()
	}
	if !changed && !expected.Orphaned() {
		id, err := statID(expected.Marker)
		changed = err != nil || id != current
	}
	if changed {
		return expected, errors.NewLockError(path, expected.Owner,
			errors.Wrap(errors.ErrLockHeld, "holder changed since inspection"))
	}

	if err := unlink(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return expected, errors.NewLockError(path, expected.Owner, errors.Fault(err, "failed to remove lock link"))
	}
	if !expected.Orphaned() {
		if err := unlink(expected.Marker); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return expected, errors.NewLockError(path, expected.Owner, errors.Fault(err, "failed to remove owner marker"))
		}
	}
	return expected, nil
}
