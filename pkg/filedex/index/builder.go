package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/blevesearch/vellum"

	"github.com/jamesainslie/filedex/pkg/filedex/logging"
	"github.com/jamesainslie/filedex/pkg/filedex/manifest"
)

// ErrBuilderClosed is returned when a Builder is used after Build.
var ErrBuilderClosed = errors.New("index builder already built")

// BuildError reports a failure while assembling an index. The cause is
// usually a *manifest.ParseError and stays reachable through errors.As.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building index: %v", e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// BuildStats describes a finished build.
type BuildStats struct {
	// Added is the number of paths passed to the builder.
	Added int
	// Distinct is the number of paths stored after de-duplication.
	Distinct int
	// Size is the serialized size of the structure in bytes.
	Size int
}

// Duplicates returns the number of repeated paths that were collapsed.
func (s BuildStats) Duplicates() int {
	return s.Added - s.Distinct
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build progress.
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder accumulates paths in any order. Build freezes them into an Index;
// a Builder cannot be reused after that.
type Builder struct {
	keys   []string
	built  bool
	stats  BuildStats
	logger *logging.Logger
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: logging.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add records one path.
func (b *Builder) Add(path string) error {
	if b.built {
		return ErrBuilderClosed
	}
	b.keys = append(b.keys, path)
	return nil
}

// AddFrom drains src into the builder and returns the number of paths
// read. A source failure is returned as a *BuildError.
func (b *Builder) AddFrom(src manifest.Source) (int, error) {
	if b.built {
		return 0, ErrBuilderClosed
	}
	n := 0
	for {
		p, err := src.Next()
		if errors.Is(err, io.EOF) {
			b.logger.Debug("source drained", "paths", n)
			return n, nil
		}
		if err != nil {
			return n, &BuildError{Err: err}
		}
		b.keys = append(b.keys, p)
		n++
	}
}

// Len returns the number of paths added so far, duplicates included.
func (b *Builder) Len() int {
	return len(b.keys)
}

// Build sorts and de-duplicates the accumulated paths and compiles them
// into an Index.
func (b *Builder) Build() (*Index, error) {
	if b.built {
		return nil, ErrBuilderClosed
	}
	b.built = true

	keys := b.keys
	b.keys = nil
	b.stats.Added = len(keys)

	slices.Sort(keys)
	keys = slices.Compact(keys)
	b.stats.Distinct = len(keys)

	var buf bytes.Buffer
	fb, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	for _, k := range keys {
		if err := fb.Insert([]byte(k), 0); err != nil {
			return nil, &BuildError{Err: fmt.Errorf("inserting %q: %w", k, err)}
		}
	}
	if err := fb.Close(); err != nil {
		return nil, &BuildError{Err: err}
	}

	ix, err := Load(buf.Bytes())
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	b.stats.Size = ix.Size()

	b.logger.Debug("index built",
		"added", b.stats.Added,
		"distinct", b.stats.Distinct,
		"duplicates", b.stats.Duplicates(),
		"bytes", b.stats.Size)
	return ix, nil
}

// Stats returns build statistics. It is meaningful after Build.
func (b *Builder) Stats() BuildStats {
	return b.stats
}

// FromSource builds an index from every path src yields.
func FromSource(src manifest.Source, opts ...Option) (*Index, BuildStats, error) {
	b := NewBuilder(opts...)
	if _, err := b.AddFrom(src); err != nil {
		return nil, BuildStats{}, err
	}
	ix, err := b.Build()
	if err != nil {
		return nil, BuildStats{}, err
	}
	return ix, b.Stats(), nil
}

// FromPaths builds an index from an in-memory list.
func FromPaths(paths []string, opts ...Option) (*Index, error) {
	b := NewBuilder(opts...)
	b.keys = append(b.keys, paths...)
	return b.Build()
}
