package manifest

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// maxLineSize bounds a single path in line-oriented input.
const maxLineSize = 1 << 20

// LineSource reads one path per line, the format produced by the export
// command. Empty lines are skipped and a trailing "\r" is dropped.
type LineSource struct {
	sc     *bufio.Scanner
	opts   options
	stats  Stats
	line   int64
	offset int64
	err    error
}

// NewLineSource returns a source reading newline-separated paths from r.
func NewLineSource(r io.Reader, opts ...Option) *LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineSource{sc: sc, opts: newOptions(opts)}
}

// Next returns the next non-empty line.
func (s *LineSource) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	for s.sc.Scan() {
		s.line++
		s.offset += int64(len(s.sc.Bytes())) + 1
		s.stats.Elements++
		p := strings.TrimSuffix(s.sc.Text(), "\r")
		if p == "" {
			s.stats.Skipped++
			continue
		}
		if !s.opts.keep(Record{Path: p}) {
			s.stats.Filtered++
			continue
		}
		s.stats.Yielded++
		return p, nil
	}
	if err := s.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			s.err = &ParseError{Offset: s.offset, Err: err}
		} else {
			s.err = err
		}
		return "", s.err
	}
	s.err = io.EOF
	s.opts.logger.Debug("line input exhausted", "lines", s.line, "paths", s.stats.Yielded)
	return "", s.err
}

// Stats returns counters for the input consumed so far.
func (s *LineSource) Stats() Stats {
	return s.stats
}

var _ Source = (*LineSource)(nil)
