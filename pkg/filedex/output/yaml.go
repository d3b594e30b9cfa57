package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

type yamlOutput struct {
	Matches []yamlMatch `yaml:"matches"`
	Meta    yamlMeta    `yaml:"meta"`
}

type yamlMatch struct {
	Path  string   `yaml:"path"`
	Spans [][2]int `yaml:"spans,flow"`
}

type yamlMeta struct {
	Query       string `yaml:"query"`
	Source      string `yaml:"source"`
	Paths       uint64 `yaml:"paths"`
	Matches     int    `yaml:"matches"`
	Occurrences int    `yaml:"occurrences"`
	Truncated   bool   `yaml:"truncated"`
	Duration    string `yaml:"duration,omitempty"`
}

// YAMLFormatter formats output as YAML. Spans are written as flow
// sequences of [start, end] pairs.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	out := yamlOutput{
		Matches: make([]yamlMatch, len(r.Matches)),
		Meta: yamlMeta{
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
		spans := make([][2]int, len(m.Spans))
		for j, s := range m.Spans {
			spans[j] = [2]int{s.Start, s.End}
		}
		out.Matches[i] = yamlMatch{Path: m.Path, Spans: spans}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
