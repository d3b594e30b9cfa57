package manifest

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// DirSource lists a live directory tree in manifest form: absolute paths,
// folders carrying a trailing separator. The walk runs in parallel on the
// first call to Next; paths are then yielded in sorted order.
type DirSource struct {
	root    string
	opts    options
	ctx     context.Context
	records []Record
	pos     int
	walked  bool
	stats   Stats
	errs    atomic.Int64
	err     error
}

// NewDirSource returns a source over the tree rooted at root.
func NewDirSource(ctx context.Context, root string, opts ...Option) *DirSource {
	return &DirSource{root: root, opts: newOptions(opts), ctx: ctx}
}

// Next returns the next path of the walk.
func (d *DirSource) Next() (string, error) {
	if d.err != nil {
		return "", d.err
	}
	if !d.walked {
		d.walked = true
		if err := d.walk(); err != nil {
			d.err = err
			return "", err
		}
	}
	if d.pos >= len(d.records) {
		d.err = io.EOF
		return "", io.EOF
	}
	rec := d.records[d.pos]
	d.pos++
	d.stats.Yielded++
	return rec.Path, nil
}

// Stats returns counters for the walk.
func (d *DirSource) Stats() Stats {
	return d.stats
}

// Unreadable returns the number of entries skipped because they could not
// be read.
func (d *DirSource) Unreadable() int64 {
	return d.errs.Load()
}

func (d *DirSource) walk() error {
	absRoot, err := filepath.Abs(d.root)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", d.root, err)
	}

	var (
		mu       sync.Mutex
		records  []Record
		elements atomic.Int64
		filtered atomic.Int64
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, absRoot, func(path string, de fs.DirEntry, walkErr error) error {
		select {
		case <-d.ctx.Done():
			return d.ctx.Err()
		default:
		}

		if walkErr != nil {
			d.errs.Add(1)
			return nil //nolint:nilerr // unreadable entries are skipped, the walk continues
		}
		elements.Add(1)

		rec := Record{Path: path, Type: TypeFile}
		switch {
		case de.IsDir():
			rec.Type = TypeFolder
			if path[len(path)-1] != os.PathSeparator {
				rec.Path += string(os.PathSeparator)
			}
		case de.Type()&fs.ModeSymlink != 0:
			rec.Type = TypeSymlink
		}

		if !d.opts.keep(rec) {
			filtered.Add(1)
			return nil
		}

		mu.Lock()
		records = append(records, rec)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", absRoot, err)
	}

	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Compare(a.Path, b.Path)
	})

	d.records = records
	d.stats.Elements = elements.Load()
	d.stats.Filtered = filtered.Load()
	d.opts.logger.Debug("directory walked",
		"root", absRoot,
		"entries", d.stats.Elements,
		"kept", len(records),
		"unreadable", d.errs.Load())
	return nil
}

var _ Source = (*DirSource)(nil)
