// Package manifest streams file paths out of backup manifests.
//
// A manifest is a JSON array of records, each carrying at least a "path"
// string and usually a "type" discriminator:
//
//	[
//	  {"path": "C:\\data\\", "type": "Folder"},
//	  {"path": "C:\\data\\mydoc.txt", "type": "File", "size": 1024}
//	]
//
// Paths are pulled one at a time through the Source interface so that
// arbitrarily large manifests never need to be held in memory.
package manifest

import (
	"errors"
	"fmt"
	"io"
)

// EntryType tags a manifest record.
type EntryType string

// Known entry types. Unknown types are preserved as-is.
const (
	TypeFile    EntryType = "File"
	TypeFolder  EntryType = "Folder"
	TypeSymlink EntryType = "Symlink"
)

// Record is one element of the manifest array.
type Record struct {
	Path string    `json:"path"`
	Type EntryType `json:"type,omitempty"`
}

// IsFolder reports whether the record describes a directory.
func (r Record) IsFolder() bool {
	return r.Type == TypeFolder
}

// Source yields paths one at a time. Next returns io.EOF once the source
// is exhausted; any other error is terminal and is returned by every later
// call.
type Source interface {
	Next() (string, error)
}

// Stats counts what a source has seen so far.
type Stats struct {
	// Elements is the number of top-level entries consumed.
	Elements int64 `json:"elements" yaml:"elements"`

	// Yielded is the number of paths returned from Next.
	Yielded int64 `json:"yielded" yaml:"yielded"`

	// Skipped counts entries without a usable path.
	Skipped int64 `json:"skipped" yaml:"skipped"`

	// Filtered counts entries dropped by type or exclude filters.
	Filtered int64 `json:"filtered" yaml:"filtered"`
}

// ParseError reports malformed manifest input.
type ParseError struct {
	// Offset is the byte offset in the decoded input where parsing failed.
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed manifest at byte %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse failure causes. Match with errors.Is.
var (
	ErrNotArray      = errors.New("top-level value is not an array")
	ErrPathNotString = errors.New(`"path" is not a string`)
	ErrTrailingData  = errors.New("unexpected data after the closing bracket")
)

// Collect drains src into a slice. It is meant for tests and small inputs.
func Collect(src Source) ([]string, error) {
	var out []string
	for {
		p, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
}
