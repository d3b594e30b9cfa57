package manifest

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/filedex/pkg/filedex/logging"
)

const sampleManifest = `[
  {"path": "C:\\data\\", "type": "Folder"},
  {"path": "C:\\data\\mydoc.txt", "type": "File", "size": 1024, "hash": "abc"},
  {"path": "C:\\data\\myvideo.mp4", "type": "File", "metablockhash": null}
]`

func TestExtractor_Sample(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(strings.NewReader(sampleManifest))
	paths, err := Collect(ex)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`C:\data\`,
		`C:\data\mydoc.txt`,
		`C:\data\myvideo.mp4`,
	}, paths)

	stats := ex.Stats()
	assert.Equal(t, int64(3), stats.Elements)
	assert.Equal(t, int64(3), stats.Yielded)
}

func TestExtractor_Records(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(strings.NewReader(sampleManifest))
	rec, err := ex.NextRecord()
	require.NoError(t, err)
	assert.Equal(t, Record{Path: `C:\data\`, Type: TypeFolder}, rec)
	assert.True(t, rec.IsFolder())

	rec, err = ex.NextRecord()
	require.NoError(t, err)
	assert.Equal(t, TypeFile, rec.Type)
	assert.False(t, rec.IsFolder())
}

func TestExtractor_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty array", input: `[]`, want: nil},
		{name: "whitespace around", input: " \n [ ] \n ", want: nil},
		{name: "non-object elements skipped", input: `[1, "x", null, [], {"path":"a"}]`, want: []string{"a"}},
		{name: "missing path skipped", input: `[{"name":"a"}, {"path":"b"}]`, want: []string{"b"}},
		{name: "path key is case sensitive", input: `[{"PATH":"a"}, {"path":"b"}]`, want: []string{"b"}},
		{name: "duplicates preserved", input: `[{"path":"a"},{"path":"a"}]`, want: []string{"a", "a"}},
		{name: "empty path string", input: `[{"path":""}]`, want: []string{""}},
		{name: "unicode and escapes", input: `[{"path":"/tmp/caf\u00e9/\"q\""}]`, want: []string{`/tmp/café/"q"`}},
		{name: "nested objects ignored", input: `[{"meta":{"path":"inner"},"path":"outer"}]`, want: []string{"outer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Collect(NewExtractor(strings.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_ParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty input", input: ``, wantErr: io.ErrUnexpectedEOF},
		{name: "object at top level", input: `{"path":"a"}`, wantErr: ErrNotArray},
		{name: "string at top level", input: `"a"`, wantErr: ErrNotArray},
		{name: "truncated", input: `[{"path":"a"}, {"path":`},
		{name: "unterminated array", input: `[{"path":"a"}`, wantErr: io.ErrUnexpectedEOF},
		{name: "missing comma", input: `[{"path":"a"} {"path":"b"}]`},
		{name: "garbage", input: `[{"path":"a"}, nope]`},
		{name: "path not a string", input: `[{"path":42}]`, wantErr: ErrPathNotString},
		{name: "path null", input: `[{"path":null}]`, wantErr: ErrPathNotString},
		{name: "trailing array", input: `[] []`, wantErr: ErrTrailingData},
		{name: "trailing garbage", input: `[] x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Collect(NewExtractor(strings.NewReader(tt.input)))
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.GreaterOrEqual(t, perr.Offset, int64(0))
			assert.Contains(t, perr.Error(), "malformed manifest")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestExtractor_ErrorOffset(t *testing.T) {
	t.Parallel()

	input := `[{"path":"a"}, {"path":"b"}, oops]`
	_, err := Collect(NewExtractor(strings.NewReader(input)))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Greater(t, perr.Offset, int64(20), "offset points past the valid records")
}

func TestExtractor_YieldsBeforeError(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(strings.NewReader(`[{"path":"a"}, {"path":`))
	p, err := ex.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", p)

	_, err = ex.Next()
	require.Error(t, err)
	_, again := ex.Next()
	assert.Same(t, err, again, "errors are sticky")
}

func TestExtractor_EOFIsSticky(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(strings.NewReader(`[{"path":"a"}]`))
	_, err := ex.Next()
	require.NoError(t, err)
	for range 3 {
		_, err = ex.Next()
		require.ErrorIs(t, err, io.EOF)
	}
}

func TestExtractor_TypeFilter(t *testing.T) {
	t.Parallel()

	input := `[{"path":"d/","type":"Folder"},{"path":"d/f","type":"File"},{"path":"u"}]`
	ex := NewExtractor(strings.NewReader(input), WithTypes(TypeFile))
	got, err := Collect(ex)
	require.NoError(t, err)
	assert.Equal(t, []string{"d/f", "u"}, got, "untyped records pass")
	assert.Equal(t, int64(1), ex.Stats().Filtered)
}

func TestExtractor_Exclude(t *testing.T) {
	t.Parallel()

	globs, err := CompileExcludes([]string{"**.tmp", `C:\cache\**`})
	require.NoError(t, err)

	input := `[{"path":"a/b.tmp"},{"path":"a/b.txt"},{"path":"C:\\cache\\x\\y"},{"path":"C:\\keep"}]`
	got, err := Collect(NewExtractor(strings.NewReader(input), WithExclude(globs...)))
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.txt", `C:\keep`}, got)
}

func TestCompileExcludes_Separators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{`C:\data\*.txt`, `C:\data\a.txt`, true},
		{`C:\data\*.txt`, `C:\data\sub\a.txt`, false},
		{`C:\data\**.txt`, `C:\data\sub\a.txt`, true},
		{`C:\data\**`, `C:\data\`, true},
		{`C:\data\**`, `C:\other\a.txt`, false},
		{`*.log`, `logs\a.log`, false},
		{`*.log`, `logs/a.log`, false},
		{`**.log`, `logs\a.log`, true},
		{`/var/*/x`, `/var/a/x`, true},
		{`/var/*/x`, `/var/a\b/x`, false},
	}
	for _, tt := range tests {
		globs, err := CompileExcludes([]string{tt.pattern})
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.want, globs[0].Match(tt.path), "%s against %s", tt.pattern, tt.path)
	}
}

func TestExtractor_LogsSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "debug", Output: &buf})
	require.NoError(t, err)

	_, err = Collect(NewExtractor(strings.NewReader(sampleManifest), WithLogger(logger)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "manifest exhausted")
	assert.Contains(t, buf.String(), "paths=3")
}

func TestExtractor_ReaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader(`[{"path":"a"},`), &failingReader{err: boom})
	_, err := Collect(NewExtractor(r))
	require.ErrorIs(t, err, boom)
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestCompileExcludes_Invalid(t *testing.T) {
	t.Parallel()

	_, err := CompileExcludes([]string{"[unclosed"})
	require.Error(t, err)
}

func TestParseEntryTypes(t *testing.T) {
	t.Parallel()

	got, err := ParseEntryTypes([]string{"file", "Folder", "symlink"})
	require.NoError(t, err)
	assert.Equal(t, []EntryType{TypeFile, TypeFolder, TypeSymlink}, got)

	_, err = ParseEntryTypes([]string{"socket"})
	require.Error(t, err)
}
