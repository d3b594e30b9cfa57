package manifest

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jamesainslie/filedex/pkg/filedex/logging"
)

// Option configures a source.
type Option func(*options)

type options struct {
	types   map[EntryType]bool
	exclude []glob.Glob
	logger  *logging.Logger
}

func newOptions(opts []Option) options {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTypes keeps only records whose type is one of types. Records without
// a type always pass. No types means no filtering.
func WithTypes(types ...EntryType) Option {
	return func(o *options) {
		if len(types) == 0 {
			o.types = nil
			return
		}
		o.types = make(map[EntryType]bool, len(types))
		for _, t := range types {
			o.types[t] = true
		}
	}
}

// WithExclude drops paths matching any of the compiled glob patterns.
func WithExclude(patterns ...glob.Glob) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// CompileExcludes compiles shell-style patterns. "*" does not cross either
// path separator; "**" does. A backslash in a pattern is a Windows path
// separator, never an escape.
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.ReplaceAll(p, `\`, `\\`), '/', '\\')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// ParseEntryTypes maps user input such as "file" or "Folder" to entry types.
func ParseEntryTypes(names []string) ([]EntryType, error) {
	out := make([]EntryType, 0, len(names))
	for _, n := range names {
		switch n {
		case "file", "File", "files":
			out = append(out, TypeFile)
		case "folder", "Folder", "folders", "dir":
			out = append(out, TypeFolder)
		case "symlink", "Symlink":
			out = append(out, TypeSymlink)
		default:
			return nil, fmt.Errorf("unknown entry type %q", n)
		}
	}
	return out, nil
}

// keep applies the type and exclude filters.
func (o *options) keep(rec Record) bool {
	if o.types != nil && rec.Type != "" && !o.types[rec.Type] {
		return false
	}
	for _, g := range o.exclude {
		if g.Match(rec.Path) {
			return false
		}
	}
	return true
}
