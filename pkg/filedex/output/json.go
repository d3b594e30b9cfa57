package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jamesainslie/filedex/pkg/filedex/search"
)

type jsonOutput struct {
	Matches []jsonMatch `json:"matches"`
	Meta    jsonMeta    `json:"meta"`
}

type jsonMatch struct {
	Path  string        `json:"path"`
	Spans []search.Span `json:"spans"`
}

type jsonMeta struct {
	Query       string `json:"query"`
	Source      string `json:"source"`
	Paths       uint64 `json:"paths"`
	Matches     int    `json:"matches"`
	Occurrences int    `json:"occurrences"`
	Truncated   bool   `json:"truncated"`
	Duration    string `json:"duration,omitempty"`
}

func newJSONMatch(m search.Match) jsonMatch {
	spans := m.Spans
	if spans == nil {
		spans = []search.Span{}
	}
	return jsonMatch{Path: m.Path, Spans: spans}
}

// JSONFormatter formats output as a single indented JSON document with
// matches and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	out := jsonOutput{
		Matches: make([]jsonMatch, len(r.Matches)),
		Meta: jsonMeta{
			Query:       r.Query,
			Source:      r.Source,
			Paths:       r.Paths,
			Matches:     r.TotalMatches(),
			Occurrences: r.Occurrences(),
			Truncated:   r.Truncated,
			Duration:    formatDurationString(r.Duration),
		},
	}
	for i, m := range r.Matches {
		out.Matches[i] = newJSONMatch(m)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(out)
}

// formatDurationString formats a duration for machine-readable output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter writes one compact JSON object per match, for streaming
// into tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for _, m := range r.Matches {
		if err := encoder.Encode(newJSONMatch(m)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

var _ Formatter = (*JSONLFormatter)(nil)
