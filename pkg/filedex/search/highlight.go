package search

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// DefaultMatchColor is the ANSI color used for matched occurrences.
const DefaultMatchColor = "1"

// Highlighter renders matches with their occurrences styled. A disabled
// Highlighter returns paths unchanged.
type Highlighter struct {
	style   termenv.Style
	enabled bool
}

// NewHighlighter returns a Highlighter writing basic ANSI sequences to w.
// The color profile is fixed rather than detected from w, so output piped
// to a file is still styled when enabled. Styled text is wrapped in SGR
// sequences and otherwise left byte for byte as stored.
func NewHighlighter(w io.Writer, enabled bool) *Highlighter {
	o := termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI))
	return &Highlighter{
		style:   o.String().Foreground(o.Color(DefaultMatchColor)),
		enabled: enabled,
	}
}

// Enabled reports whether output is styled.
func (h *Highlighter) Enabled() bool {
	return h != nil && h.enabled
}

// Render styles each span of path. Spans must be ordered, non-overlapping
// and within path.
func (h *Highlighter) Render(path string, spans []Span) (string, error) {
	if !h.Enabled() || len(spans) == 0 {
		return path, nil
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		if s.Start < last || s.End < s.Start || s.End > len(path) {
			return "", fmt.Errorf("%w: [%d,%d) in %d-byte path", ErrInvalidSpan, s.Start, s.End, len(path))
		}
		b.WriteString(path[last:s.Start])
		if s.Len() > 0 {
			b.WriteString(h.style.Styled(path[s.Start:s.End]))
		}
		last = s.End
	}
	b.WriteString(path[last:])
	return b.String(), nil
}

// Match renders m.
func (h *Highlighter) Match(m Match) string {
	out, err := h.Render(m.Path, m.Spans)
	if err != nil {
		return m.Path
	}
	return out
}

// Highlight marks every occurrence of query in path with ANSI color.
func Highlight(path, query string) string {
	return NewHighlighter(io.Discard, true).Match(Match{Path: path, Spans: Spans(path, query, false)})
}
