package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with boxes and colour for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	st := NewStyles(w, r.Color)

	w.WriteString(f.formatHeader(st, r))
	w.WriteString("\n")
	w.WriteString(f.formatMatches(st, r))
	w.WriteString(f.formatFooter(st, r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeader(st *Styles, r *Result) string {
	lines := []string{
		st.Label.Render("Archive:") + " " + st.Value.Render(r.Source),
		st.Label.Render("Query:") + "   " + st.Value.Render(fmt.Sprintf("%q", r.Query)),
	}
	return st.HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatMatches(st *Styles, r *Result) string {
	if len(r.Matches) == 0 {
		return st.Muted.Render("  No paths match") + "\n"
	}

	var sb strings.Builder
	for _, m := range r.Matches {
		sb.WriteString("  ")
		last := 0
		for _, s := range m.Spans {
			sb.WriteString(m.Path[last:s.Start])
			sb.WriteString(st.Match.Render(m.Path[s.Start:s.End]))
			last = s.End
		}
		sb.WriteString(m.Path[last:])
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(st *Styles, r *Result) string {
	parts := []string{
		st.Label.Render("Matches:") + " " + st.Count.Render(humanize.Comma(int64(r.TotalMatches()))),
		st.Label.Render("of") + " " + st.Value.Render(humanize.Comma(int64(r.Paths))),
	}
	if r.Duration > 0 {
		parts = append(parts, st.Label.Render("in")+" "+st.Value.Render(formatDuration(r.Duration)))
	}
	if r.Truncated {
		parts = append(parts, st.Warning.Render("limit reached"))
	}
	parts = append(parts, st.Muted.Render("Use -o plain for unformatted output"))
	return st.FooterBox.Render(strings.Join(parts, "  "))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	switch {
	case sec < 0.001:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case sec < 1:
		return fmt.Sprintf("%.0fms", sec*1000)
	case sec < 60:
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
