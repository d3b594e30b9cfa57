// Package archive persists path indexes as compact, self-describing files.
//
// An archive is a compressed stream whose decompressed payload is a fixed
// little-endian header followed by the serialized index structure:
//
//	offset size field
//	     0    4 magic "FDX\x01"
//	     4    2 format version
//	     6    2 flags (reserved)
//	     8   16 build id (random UUID)
//	    24    8 creation time, unix nanoseconds
//	    32    8 path count
//	    40    8 structure length in bytes
//	    48    8 xxhash64 of the structure
//	    56    - structure
//
// The compression codec is detected from the stream's own magic bytes, so
// any supported codec can be read without configuration.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FormatVersion is the payload version written by this package.
const FormatVersion uint16 = 1

// HeaderSize is the length of the payload header in bytes.
const HeaderSize = 56

var payloadMagic = [4]byte{'F', 'D', 'X', 0x01}

// Info describes an archive.
type Info struct {
	// Version is the payload format version.
	Version uint16 `json:"version" yaml:"version"`

	// BuildID identifies the write that produced the archive.
	BuildID uuid.UUID `json:"build_id" yaml:"build_id"`

	// Created is when the archive was written.
	Created time.Time `json:"created" yaml:"created"`

	// Paths is the number of distinct paths stored.
	Paths uint64 `json:"paths" yaml:"paths"`

	// StructureSize is the uncompressed size of the index structure.
	StructureSize uint64 `json:"structure_size" yaml:"structure_size"`

	// Checksum is the xxhash64 of the index structure.
	Checksum uint64 `json:"checksum" yaml:"checksum"`

	// Compression is the codec of the outer stream.
	Compression Compression `json:"compression" yaml:"compression"`

	// FileSize is the compressed size on disk, when known.
	FileSize int64 `json:"file_size" yaml:"file_size"`
}

// Ratio returns uncompressed payload size divided by file size.
func (i Info) Ratio() float64 {
	if i.FileSize <= 0 {
		return 0
	}
	return float64(HeaderSize+i.StructureSize) / float64(i.FileSize)
}

func (i Info) marshalHeader() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], payloadMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], i.Version)
	binary.LittleEndian.PutUint16(buf[6:8], 0)
	copy(buf[8:24], i.BuildID[:])
	binary.LittleEndian.PutUint64(buf[24:32], uint64(i.Created.UnixNano()))
	binary.LittleEndian.PutUint64(buf[32:40], i.Paths)
	binary.LittleEndian.PutUint64(buf[40:48], i.StructureSize)
	binary.LittleEndian.PutUint64(buf[48:56], i.Checksum)
	return buf
}

// unmarshalHeader parses the fixed header at the start of payload.
func unmarshalHeader(payload []byte) (Info, error) {
	if len(payload) < len(payloadMagic) || !bytes.Equal(payload[:4], payloadMagic[:]) {
		return Info{}, ErrUnknownFormat
	}
	if len(payload) < HeaderSize {
		return Info{}, fmt.Errorf("%w: header truncated at %d bytes", ErrCorrupt, len(payload))
	}

	var info Info
	info.Version = binary.LittleEndian.Uint16(payload[4:6])
	switch {
	case info.Version == 0:
		return Info{}, fmt.Errorf("%w: version 0", ErrCorrupt)
	case info.Version > FormatVersion:
		return Info{}, fmt.Errorf("%w: version %d, this build reads up to %d", ErrVersion, info.Version, FormatVersion)
	}
	copy(info.BuildID[:], payload[8:24])
	info.Created = time.Unix(0, int64(binary.LittleEndian.Uint64(payload[24:32]))).UTC()
	info.Paths = binary.LittleEndian.Uint64(payload[32:40])
	info.StructureSize = binary.LittleEndian.Uint64(payload[40:48])
	info.Checksum = binary.LittleEndian.Uint64(payload[48:56])
	return info, nil
}
