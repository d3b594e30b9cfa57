package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/jamesainslie/filedex/pkg/filedex/index"
	"github.com/jamesainslie/filedex/pkg/filedex/logging"
)

// WriteOptions configures how an archive is encoded.
type WriteOptions struct {
	// Compression is the outer codec. Empty means DefaultCompression.
	Compression Compression

	// Level is the codec-specific compression level. 0 means the codec
	// default.
	Level int

	// Logger receives debug output. Nil discards it.
	Logger *logging.Logger

	// Now overrides the creation timestamp source.
	Now func() time.Time
}

func (o WriteOptions) withDefaults() WriteOptions {
	if o.Compression == "" {
		o.Compression = DefaultCompression
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Encode writes ix to w as a complete archive stream.
func Encode(w io.Writer, ix *index.Index, opts WriteOptions) (Info, error) {
	opts = opts.withDefaults()

	h := xxhash.New()
	if _, err := ix.WriteTo(h); err != nil {
		return Info{}, fmt.Errorf("hashing index: %w", err)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return Info{}, fmt.Errorf("generating build id: %w", err)
	}

	info := Info{
		Version:       FormatVersion,
		BuildID:       id,
		Created:       opts.Now().UTC(),
		Paths:         uint64(ix.Len()),
		StructureSize: uint64(ix.Size()),
		Checksum:      h.Sum64(),
		Compression:   opts.Compression,
	}

	cw := &countingWriter{w: w}
	zw, err := newCompressor(cw, opts.Compression, opts.Level)
	if err != nil {
		return Info{}, err
	}
	if _, err := zw.Write(info.marshalHeader()); err != nil {
		_ = zw.Close()
		return Info{}, fmt.Errorf("writing header: %w", err)
	}
	if _, err := ix.WriteTo(zw); err != nil {
		_ = zw.Close()
		return Info{}, fmt.Errorf("writing index: %w", err)
	}
	if err := zw.Close(); err != nil {
		return Info{}, fmt.Errorf("finishing %s stream: %w", opts.Compression, err)
	}
	info.FileSize = cw.n
	return info, nil
}

// Write stores ix at path. The archive is written to a temporary file in
// the same directory, synced, and renamed over path, so readers see
// either the previous archive or the complete new one.
func Write(path string, ix *index.Index, opts WriteOptions) (Info, error) {
	opts = opts.withDefaults()
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return Info{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(err error) (Info, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return Info{}, err
	}

	bw := bufio.NewWriter(tmp)
	info, err := Encode(bw, ix, opts)
	if err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(fmt.Errorf("flushing %s: %w", tmpPath, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing %s: %w", tmpPath, err))
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(fmt.Errorf("setting permissions on %s: %w", tmpPath, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return Info{}, fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := osReplace(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return Info{}, fmt.Errorf("replacing %s: %w", path, err)
	}
	if err := syncDir(dir); err != nil {
		opts.Logger.Debug("directory sync failed", "dir", dir, "error", err)
	}

	opts.Logger.Debug("archive written",
		"path", path,
		"compression", info.Compression,
		"paths", info.Paths,
		"bytes", info.FileSize)
	return info, nil
}

// Decode reads a complete archive stream. Failures wrap one of the Err*
// kinds of this package.
func Decode(r io.Reader) (*index.Index, Info, error) {
	br := bufio.NewReader(r)
	codec, err := detect(br)
	if err != nil {
		return nil, Info{}, err
	}

	zr, err := newDecompressor(br, codec)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %s: %v", ErrDecompress, codec, err)
	}
	payload, err := io.ReadAll(zr)
	if err != nil {
		_ = zr.Close()
		return nil, Info{}, fmt.Errorf("%w: %s: %v", ErrDecompress, codec, err)
	}
	if err := zr.Close(); err != nil {
		return nil, Info{}, fmt.Errorf("%w: %s: %v", ErrDecompress, codec, err)
	}

	info, err := unmarshalHeader(payload)
	if err != nil {
		return nil, Info{}, err
	}
	info.Compression = codec

	body := payload[HeaderSize:]
	if uint64(len(body)) != info.StructureSize {
		return nil, Info{}, fmt.Errorf("%w: structure is %d bytes, header says %d", ErrCorrupt, len(body), info.StructureSize)
	}
	if sum := xxhash.Sum64(body); sum != info.Checksum {
		return nil, Info{}, fmt.Errorf("%w: checksum %016x, header says %016x", ErrCorrupt, sum, info.Checksum)
	}

	ix, err := index.Load(body)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if uint64(ix.Len()) != info.Paths {
		_ = ix.Close()
		return nil, Info{}, fmt.Errorf("%w: %d paths, header says %d", ErrCorrupt, ix.Len(), info.Paths)
	}
	return ix, info, nil
}

// Read loads the archive at path. Every failure is a *ReadError.
func Read(path string) (*index.Index, Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Info{}, &ReadError{Path: path, Err: ErrNotFound}
		}
		return nil, Info{}, &ReadError{Path: path, Err: err}
	}
	if st.IsDir() {
		return nil, Info{}, &ReadError{Path: path, Err: ErrIsDirectory}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	ix, info, err := Decode(f)
	if err != nil {
		return nil, Info{}, &ReadError{Path: path, Err: err}
	}
	info.FileSize = st.Size()
	return ix, info, nil
}

// Stat loads and verifies the archive at path and returns its description.
func Stat(path string) (Info, error) {
	ix, info, err := Read(path)
	if err != nil {
		return Info{}, err
	}
	_ = ix.Close()
	return info, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
