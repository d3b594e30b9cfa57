// Package index holds the ordered path set at the heart of filedex.
//
// Paths are accumulated by a Builder and frozen into an Index, a minimal
// finite state transducer that shares both prefixes and suffixes between
// keys. An Index is read-only: it enumerates its paths in byte-wise
// lexicographic order, answers membership and range queries, and can be
// scanned with any vellum.Automaton.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/blevesearch/vellum"
)

// ErrStop may be returned from a visit function to end a scan early
// without error.
var ErrStop = errors.New("stop scan")

// Index is an immutable set of paths.
type Index struct {
	fst  *vellum.FST
	data []byte
}

// Load decodes an index from its serialized form. The index takes
// ownership of data; the caller must not modify it afterwards.
func Load(data []byte) (*Index, error) {
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading index structure: %w", err)
	}
	return &Index{fst: fst, data: data}, nil
}

// Len returns the number of distinct paths.
func (ix *Index) Len() int {
	return ix.fst.Len()
}

// Size returns the serialized size in bytes.
func (ix *Index) Size() int {
	return len(ix.data)
}

// WriteTo writes the serialized structure to w.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(ix.data)
	return int64(n), err
}

// Contains reports whether path is in the set.
func (ix *Index) Contains(path string) bool {
	ok, err := ix.fst.Contains([]byte(path))
	return err == nil && ok
}

// Walk calls fn for every path in lexicographic order.
func (ix *Index) Walk(fn func(path string) error) error {
	return ix.Range("", "", fn)
}

// Paths returns every path in lexicographic order.
func (ix *Index) Paths() ([]string, error) {
	out := make([]string, 0, ix.Len())
	err := ix.Walk(func(p string) error {
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Range calls fn for every path p with start <= p < end, in order. An empty
// end means no upper bound.
func (ix *Index) Range(start, end string, fn func(path string) error) error {
	it, err := ix.fst.Iterator(bound(start), bound(end))
	return drain(it, err, fn)
}

// Prefix calls fn for every path beginning with prefix, in order.
func (ix *Index) Prefix(prefix string, fn func(path string) error) error {
	it, err := ix.fst.Iterator(bound(prefix), prefixEnd([]byte(prefix)))
	return drain(it, err, fn)
}

// Search calls fn, in order, for every path within [start, end) that aut
// accepts. Subtrees the automaton rules out are never visited.
func (ix *Index) Search(aut vellum.Automaton, start, end string, fn func(path string) error) error {
	it, err := ix.fst.Search(aut, bound(start), bound(end))
	return drain(it, err, fn)
}

// SearchPrefix is Search restricted to paths beginning with prefix.
func (ix *Index) SearchPrefix(aut vellum.Automaton, prefix string, fn func(path string) error) error {
	it, err := ix.fst.Search(aut, bound(prefix), prefixEnd([]byte(prefix)))
	return drain(it, err, fn)
}

// Bounds returns the smallest and largest path. Both are empty for an
// empty index.
func (ix *Index) Bounds() (lo, hi string) {
	if ix.Len() == 0 {
		return "", ""
	}
	minKey, _ := ix.fst.GetMinKey()
	maxKey, _ := ix.fst.GetMaxKey()
	return string(minKey), string(maxKey)
}

// Equal reports whether both indexes hold the same serialized structure.
func (ix *Index) Equal(other *Index) bool {
	return other != nil && bytes.Equal(ix.data, other.data)
}

// Close releases the structure.
func (ix *Index) Close() error {
	return ix.fst.Close()
}

func drain(it *vellum.FSTIterator, err error, fn func(string) error) error {
	for err == nil {
		key, _ := it.Current()
		// Current reuses its buffer; string() copies.
		if ferr := fn(string(key)); ferr != nil {
			if errors.Is(ferr, ErrStop) {
				return nil
			}
			return ferr
		}
		err = it.Next()
	}
	if errors.Is(err, vellum.ErrIteratorDone) {
		return nil
	}
	return fmt.Errorf("iterating index: %w", err)
}

func bound(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}

// prefixEnd returns the smallest key greater than every key starting with
// prefix, or nil when no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
