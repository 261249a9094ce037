//go:build unix

package lock

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

const supported = true

// fileID identifies the inode behind a directory entry.
type fileID struct {
	dev uint64
	ino uint64
}

// link creates newname as a hard link to oldname. The kernel fails with
// EEXIST when newname is already present, which is the only synchronization
// this package relies on. Tests replace it to inject link failures.
var link = func(oldname, newname string) error {
	if err := unix.Link(oldname, newname); err != nil {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: err}
	}
	return nil
}

// statID returns the identity of the entry at path without following symlinks.
func statID(path string) (fileID, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return fileID{}, &fs.PathError{Op: "lstat", Path: path, Err: err}
	}
	// Dev is int32 on darwin and uint64 on linux
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}

// unlink removes a single directory entry.
func unlink(path string) error {
	if err := unix.Unlink(path); err != nil {
		return &fs.PathError{Op: "unlink", Path: path, Err: err}
	}
	return nil
}
