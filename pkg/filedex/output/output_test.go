package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/filedex/pkg/filedex/search"
)

var ansiSGR = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func sampleResult() *Result {
	return &Result{
		Query:  "my",
		Source: "index.fdx.gz",
		Matches: []search.Match{
			{Path: `C:\data\mydoc.txt`, Spans: []search.Span{{Start: 8, End: 10}}},
			{Path: `C:\data\myvideo.mp4`, Spans: []search.Span{{Start: 8, End: 10}}},
		},
		Paths:    3,
		Duration: 1500 * time.Microsecond,
	}
}

func format(t *testing.T, name string, r *Result) string {
	t.Helper()
	f, err := Get(name)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	return buf.String()
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"plain", "null", "json", "jsonl", "yaml", "csv", "markdown", "pretty", "template"} {
		assert.Contains(t, Available(), name)
	}

	_, err := Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "nope"`)
	assert.Contains(t, err.Error(), "jsonl")

	r := NewRegistry()
	assert.Empty(t, r.Available())
	r.Register("x", func() Formatter { return &NullFormatter{} })
	assert.Equal(t, []string{"x"}, r.Available())
}

func TestPlainFormatter(t *testing.T) {
	r := sampleResult()
	out := format(t, "plain", r)
	assert.Equal(t, "C:\\data\\mydoc.txt\nC:\\data\\myvideo.mp4\n", out)
	assert.NotRegexp(t, ansiSGR, out)
}

func TestPlainFormatter_Highlighted(t *testing.T) {
	r := sampleResult()
	r.Highlighter = search.NewHighlighter(io.Discard, true)

	out := format(t, "plain", r)
	assert.Regexp(t, `\x1b\[\d{2}m`, out)
	assert.Equal(t, "C:\\data\\mydoc.txt\nC:\\data\\myvideo.mp4\n", ansiSGR.ReplaceAllString(out, ""))
}

func TestPlainFormatter_Empty(t *testing.T) {
	assert.Empty(t, format(t, "plain", &Result{Query: "zzz"}))
}

func TestNullFormatter(t *testing.T) {
	r := sampleResult()
	r.Highlighter = search.NewHighlighter(io.Discard, true)
	assert.Equal(t, "C:\\data\\mydoc.txt\x00C:\\data\\myvideo.mp4\x00", format(t, "null", r))
}

func TestJSONFormatter(t *testing.T) {
	out := format(t, "json", sampleResult())

	var doc struct {
		Matches []struct {
			Path  string        `json:"path"`
			Spans []search.Span `json:"spans"`
		} `json:"matches"`
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Matches, 2)
	assert.Equal(t, `C:\data\mydoc.txt`, doc.Matches[0].Path)
	assert.Equal(t, []search.Span{{Start: 8, End: 10}}, doc.Matches[0].Spans)
	assert.Equal(t, "my", doc.Meta["query"])
	assert.EqualValues(t, 2, doc.Meta["matches"])
	assert.EqualValues(t, 3, doc.Meta["paths"])
	assert.Equal(t, "1.5ms", doc.Meta["duration"])
}

func TestJSONFormatter_EmptySpansAreArrays(t *testing.T) {
	out := format(t, "json", &Result{Matches: []search.Match{{Path: ""}}})
	assert.Contains(t, out, `"spans": []`)
}

func TestJSONLFormatter(t *testing.T) {
	out := format(t, "jsonl", sampleResult())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"path":"C:\\data\\mydoc.txt","spans":[{"start":8,"end":10}]}`, lines[0])
}

func TestYAMLFormatter(t *testing.T) {
	out := format(t, "yaml", sampleResult())

	var doc yamlOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Matches, 2)
	assert.Equal(t, `C:\data\myvideo.mp4`, doc.Matches[1].Path)
	assert.Equal(t, [][2]int{{8, 10}}, doc.Matches[1].Spans)
	assert.Equal(t, 2, doc.Meta.Occurrences)
}

func TestCSVFormatter(t *testing.T) {
	r := sampleResult()
	r.Matches = append(r.Matches, search.Match{Path: `C:\my, "quoted"\my`, Spans: []search.Span{{Start: 3, End: 5}, {Start: 16, End: 18}}})

	records, err := csv.NewReader(strings.NewReader(format(t, "csv", r))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"PATH", "OCCURRENCES"}, records[0])
	assert.Equal(t, []string{`C:\my, "quoted"\my`, "2"}, records[3])
}

func TestMarkdownFormatter(t *testing.T) {
	r := &Result{Matches: []search.Match{
		{Path: "/a|b/my_doc", Spans: []search.Span{{Start: 5, End: 7}}},
	}}
	out := format(t, "markdown", r)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "| PATH | OCCURRENCES |", lines[0])
	assert.Equal(t, `| /a\|b/**my**\_doc | 1 |`, lines[2])
}

func TestPrettyFormatter(t *testing.T) {
	r := sampleResult()
	r.Truncated = true

	out := format(t, "pretty", r)
	assert.NotRegexp(t, ansiSGR, out)
	assert.Contains(t, out, "index.fdx.gz")
	assert.Contains(t, out, `"my"`)
	assert.Contains(t, out, `C:\data\mydoc.txt`)
	assert.Contains(t, out, "Matches: 2")
	assert.Contains(t, out, "limit reached")

	r.Color = true
	assert.Regexp(t, ansiSGR, format(t, "pretty", r))
}

func TestPrettyFormatter_NoMatches(t *testing.T) {
	out := format(t, "pretty", &Result{Query: "zzz", Source: "x.gz"})
	assert.Contains(t, out, "No paths match")
}

func TestTemplateFormatter(t *testing.T) {
	r := sampleResult()
	r.Paths = 12345

	f := NewTemplateFormatter(`{{len .Matches}}/{{comma .Paths}} {{.Occurrences}}{{range .Matches}} {{.Path}}{{end}}`)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	assert.Equal(t, `2/12,345 2 C:\data\mydoc.txt C:\data\myvideo.mp4`, buf.String())

	r.Duration = 3 * time.Second
	f.SetTemplate(`{{bytes 2048}} {{duration .Duration}} {{.Total}}`)
	buf.Reset()
	require.NoError(t, f.Format(&buf, r))
	assert.Equal(t, "2.0 KiB 3.0s 2", buf.String())
}

func TestTemplateFormatter_DefaultHighlights(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, "C:\\data\\mydoc.txt\nC:\\data\\myvideo.mp4\n", format(t, "template", r))

	r.Highlighter = search.NewHighlighter(io.Discard, true)
	assert.Regexp(t, ansiSGR, format(t, "template", r))
}

func TestTemplateFormatter_ParseError(t *testing.T) {
	f := NewTemplateFormatter("{{range}")
	var buf bytes.Buffer
	assert.Error(t, f.Format(&buf, sampleResult()))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}
