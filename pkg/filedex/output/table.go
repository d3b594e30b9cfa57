package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSVFormatter formats output as RFC 4180 comma-separated values with a
// PATH,OCCURRENCES header.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"PATH", "OCCURRENCES"}); err != nil {
		return err
	}
	for _, m := range r.Matches {
		if err := writer.Write([]string{m.Path, strconv.Itoa(len(m.Spans))}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func init() {
	Register("csv", func() Formatter {
		return &CSVFormatter{}
	})
}

var _ Formatter = (*CSVFormatter)(nil)

// MarkdownFormatter formats output as a GitHub-flavored Markdown table with
// matched occurrences in bold.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString("| PATH | OCCURRENCES |\n")
	w.WriteString("|------|-------------|\n")

	for _, m := range r.Matches {
		var sb strings.Builder
		last := 0
		for _, s := range m.Spans {
			sb.WriteString(escapeMarkdown(m.Path[last:s.Start]))
			sb.WriteString("**" + escapeMarkdown(m.Path[s.Start:s.End]) + "**")
			last = s.End
		}
		sb.WriteString(escapeMarkdown(m.Path[last:]))
		fmt.Fprintf(w, "| %s | %d |\n", sb.String(), len(m.Spans))
	}

	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
)

// escapeMarkdown escapes characters that would break a table cell or start
// emphasis.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func init() {
	Register("markdown", func() Formatter {
		return &MarkdownFormatter{}
	})
}

var _ Formatter = (*MarkdownFormatter)(nil)
