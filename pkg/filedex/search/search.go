// Package search finds indexed paths containing a query string and locates
// each occurrence for highlighting.
//
// Matching is byte-wise and case-sensitive unless WithIgnoreCase is given.
// Results come back in the index's lexicographic byte order. An empty query
// matches every path.
package search

import (
	"errors"
	"strings"
	"time"

	"github.com/jamesainslie/filedex/pkg/filedex/index"
	"github.com/jamesainslie/filedex/pkg/filedex/logging"
)

// Span is a half-open byte range [Start, End) within a path.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }

// Match is a path that contains the query, with the occurrences to highlight.
type Match struct {
	Path  string `json:"path" yaml:"path"`
	Spans []Span `json:"spans" yaml:"spans"`
}

// Stats describes a completed search.
type Stats struct {
	Matches   int
	Truncated bool
	Duration  time.Duration
}

// Option configures a search.
type Option func(*options)

type options struct {
	ignoreCase bool
	limit      int
	prefix     string
	logger     *logging.Logger
}

// WithIgnoreCase folds ASCII letters when comparing.
func WithIgnoreCase(ignore bool) Option {
	return func(o *options) {
		o.ignoreCase = ignore
	}
}

// WithLimit stops after n matches. n <= 0 means no limit.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithPrefix restricts the search to paths beginning with prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Find calls fn, in order, for every path in ix containing query. Returning
// index.ErrStop from fn ends the search without error.
func Find(ix *index.Index, query string, fn func(Match) error, opts ...Option) (Stats, error) {
	o := newOptions(opts)
	start := time.Now()
	aut := newSubstring(query, o.ignoreCase)

	var stats Stats
	err := ix.SearchPrefix(aut, o.prefix, func(path string) error {
		if o.limit > 0 && stats.Matches == o.limit {
			stats.Truncated = true
			return index.ErrStop
		}
		stats.Matches++
		return fn(Match{Path: path, Spans: Spans(path, query, o.ignoreCase)})
	})
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, err
	}

	o.logger.Debug("search finished",
		"query", query,
		"matches", stats.Matches,
		"truncated", stats.Truncated,
		"elapsed", stats.Duration)
	return stats, nil
}

// Search returns every path in ix containing query, in order.
func Search(ix *index.Index, query string, opts ...Option) ([]Match, Stats, error) {
	var matches []Match
	stats, err := Find(ix, query, func(m Match) error {
		matches = append(matches, m)
		return nil
	}, opts...)
	if err != nil {
		return nil, stats, err
	}
	return matches, stats, nil
}

// Spans returns the non-overlapping occurrences of query in path, scanning
// left to right. An empty query covers the whole path.
func Spans(path, query string, ignoreCase bool) []Span {
	if query == "" {
		if path == "" {
			return nil
		}
		return []Span{{Start: 0, End: len(path)}}
	}

	hay, needle := path, query
	if ignoreCase {
		hay, needle = string(foldBytes([]byte(path))), string(foldBytes([]byte(query)))
	}

	var spans []Span
	for i := 0; ; {
		j := strings.Index(hay[i:], needle)
		if j < 0 {
			break
		}
		start := i + j
		spans = append(spans, Span{Start: start, End: start + len(needle)})
		i = start + len(needle)
	}
	return spans
}

// ErrInvalidSpan reports a span outside its path.
var ErrInvalidSpan = errors.New("span out of range")
