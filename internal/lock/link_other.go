//go:build !unix

package lock

import (
	"io/fs"

	"github.com/bashhack/linklock/internal/errors"
)

const supported = false

type fileID struct {
	dev uint64
	ino uint64
}

var link = func(oldname, newname string) error {
	return &fs.PathError{Op: "link", Path: newname, Err: errors.ErrUnsupportedPlatform}
}

func statID(path string) (fileID, error) {
	return fileID{}, &fs.PathError{Op: "lstat", Path: path, Err: errors.ErrUnsupportedPlatform}
}

func unlink(path string) error {
	return &fs.PathError{Op: "unlink", Path: path, Err: errors.ErrUnsupportedPlatform}
}
