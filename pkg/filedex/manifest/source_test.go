package manifest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "unix newlines", input: "a\nb\nc\n", want: []string{"a", "b", "c"}},
		{name: "no trailing newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "crlf", input: "C:\\data\\\r\nC:\\data\\mydoc.txt\r\n", want: []string{`C:\data\`, `C:\data\mydoc.txt`}},
		{name: "blank lines skipped", input: "\n\na\n\n", want: []string{"a"}},
		{name: "spaces kept", input: " a b \n", want: []string{" a b "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Collect(NewLineSource(strings.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineSource_StatsAndExclude(t *testing.T) {
	t.Parallel()

	globs, err := CompileExcludes([]string{"*.log"})
	require.NoError(t, err)

	src := NewLineSource(strings.NewReader("a.txt\n\nb.log\nc\n"), WithExclude(globs...))
	got, err := Collect(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "c"}, got)

	stats := src.Stats()
	assert.Equal(t, int64(4), stats.Elements)
	assert.Equal(t, int64(2), stats.Yielded)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(1), stats.Filtered)
}

func TestLineSource_TooLong(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", maxLineSize+10)
	src := NewLineSource(strings.NewReader("ok\n" + long + "\n"))

	p, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", p)

	_, err = src.Next()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, int64(3), perr.Offset)
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data", "nested"), 0o755))
	for _, f := range []string{
		filepath.Join("data", "mydoc.txt"),
		filepath.Join("data", "myvideo.mp4"),
		filepath.Join("data", "nested", "deep.bin"),
		"top.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), []byte("x"), 0o644))
	}
	return root
}

func TestDirSource(t *testing.T) {
	t.Parallel()

	root := makeTree(t)
	sep := string(os.PathSeparator)

	src := NewDirSource(context.Background(), root)
	got, err := Collect(src)
	require.NoError(t, err)

	want := []string{
		root + sep,
		filepath.Join(root, "data") + sep,
		filepath.Join(root, "data", "mydoc.txt"),
		filepath.Join(root, "data", "myvideo.mp4"),
		filepath.Join(root, "data", "nested") + sep,
		filepath.Join(root, "data", "nested", "deep.bin"),
		filepath.Join(root, "top.txt"),
	}
	assert.Equal(t, want, got)
	assert.Equal(t, int64(7), src.Stats().Elements)
	assert.Zero(t, src.Unreadable())

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDirSource_FilesOnly(t *testing.T) {
	t.Parallel()

	root := makeTree(t)
	got, err := Collect(NewDirSource(context.Background(), root, WithTypes(TypeFile)))
	require.NoError(t, err)
	assert.Len(t, got, 4)
	for _, p := range got {
		assert.False(t, strings.HasSuffix(p, string(os.PathSeparator)), p)
	}
}

func TestDirSource_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(NewDirSource(ctx, makeTree(t)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDirSource_Missing(t *testing.T) {
	t.Parallel()

	_, err := Collect(NewDirSource(context.Background(), filepath.Join(t.TempDir(), "gone")))
	require.Error(t, err)
}
