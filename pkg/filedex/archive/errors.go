package archive

import (
	"errors"
	"fmt"
)

// Read failure kinds. Every error returned by Read wraps exactly one of
// these; match with errors.Is.
var (
	ErrNotFound      = errors.New("archive does not exist")
	ErrIsDirectory   = errors.New("archive path is a directory")
	ErrDecompress    = errors.New("archive stream is damaged")
	ErrUnknownFormat = errors.New("not a filedex archive")
	ErrCorrupt       = errors.New("archive contents are corrupt")
	ErrVersion       = errors.New("archive format is newer than this build")
)

// ReadError reports a failure to load an archive from disk.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
