package output

import (
	"bytes"
)

// PlainFormatter writes one path per line, with occurrences highlighted
// when the result carries an enabled Highlighter.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, m := range r.Matches {
		line, err := r.Highlighter.Render(m.Path, m.Spans)
		if err != nil {
			return err
		}
		w.WriteString(line)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)

// NullFormatter writes paths separated by null bytes for xargs -0. Paths
// are never styled.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, m := range r.Matches {
		w.WriteString(m.Path)
		w.WriteByte(0)
	}
	return nil
}

func init() {
	Register("null", func() Formatter {
		return &NullFormatter{}
	})
}

var _ Formatter = (*NullFormatter)(nil)
