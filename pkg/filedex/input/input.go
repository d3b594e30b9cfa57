// Package input validates user supplied file paths and opens manifest
// files as UTF-8 text.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Validation failure reasons. Match with errors.Is.
var (
	ErrNotExist       = errors.New("file does not exist")
	ErrIsDir          = errors.New("is a directory")
	ErrWrongContainer = errors.New("backup volume must be extracted first")
	ErrEmptyPath      = errors.New("no file given")
)

// backupVolumeSuffix marks a compressed backup volume that still contains the
// manifest rather than the manifest itself.
const backupVolumeSuffix = ".dlist.zip"

// ValidationError reports an input path that cannot be used.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrWrongContainer) {
		return fmt.Sprintf("%s: %v (unzip it and pass filelist.json)", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks that path names an existing regular file that is not a
// packed backup volume.
func Validate(path string) error {
	if path == "" {
		return &ValidationError{Path: path, Err: ErrEmptyPath}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ValidationError{Path: path, Err: ErrNotExist}
		}
		return &ValidationError{Path: path, Err: err}
	}
	if info.IsDir() {
		return &ValidationError{Path: path, Err: ErrIsDir}
	}
	if strings.HasSuffix(strings.ToLower(path), backupVolumeSuffix) {
		return &ValidationError{Path: path, Err: ErrWrongContainer}
	}
	return nil
}

// ValidateDir checks that path names an existing directory.
func ValidateDir(path string) error {
	if path == "" {
		return &ValidationError{Path: path, Err: ErrEmptyPath}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ValidationError{Path: path, Err: ErrNotExist}
		}
		return &ValidationError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return &ValidationError{Path: path, Err: errors.New("not a directory")}
	}
	return nil
}

// Decode wraps r so that a leading byte order mark is consumed. A UTF-16
// BOM switches decoding to UTF-16; without a BOM the input is taken as
// UTF-8.
func Decode(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// File is a validated, BOM-stripped text file.
type File struct {
	io.Reader
	f *os.File
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Size returns the on-disk size of the file in bytes.
func (f *File) Size() int64 {
	info, err := f.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// Open validates path and returns a reader yielding its UTF-8 text.
func Open(path string) (*File, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Err: err}
	}
	return &File{Reader: Decode(f), f: f}, nil
}
