package gguf

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixtureBuilder assembles an in-memory GGUF byte buffer, mirroring the
// teacher's literal byte-string fixture style but built incrementally
// with encoding/binary rather than hand-written escape sequences.
type fixtureBuilder struct {
	buf bytes.Buffer
}

func newFixture() *fixtureBuilder { return &fixtureBuilder{} }

func (f *fixtureBuilder) u32(v uint32) *fixtureBuilder {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	f.buf.Write(b[:])
	return f
}

func (f *fixtureBuilder) u64(v uint64) *fixtureBuilder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	f.buf.Write(b[:])
	return f
}

func (f *fixtureBuilder) f32(v float32) *fixtureBuilder {
	return f.u32(math.Float32bits(v))
}

func (f *fixtureBuilder) str(s string) *fixtureBuilder {
	f.u64(uint64(len(s)))
	f.buf.WriteString(s)
	return f
}

func (f *fixtureBuilder) raw(b []byte) *fixtureBuilder {
	f.buf.Write(b)
	return f
}

func (f *fixtureBuilder) header(version uint32, tensorCount, metadataCount uint64) *fixtureBuilder {
	return f.u32(magic).u32(version).u64(tensorCount).u64(metadataCount)
}

func (f *fixtureBuilder) metadataU32(key string, value uint32) *fixtureBuilder {
	return f.str(key).u32(uint32(tagU32)).u32(value)
}

func (f *fixtureBuilder) metadataString(key, value string) *fixtureBuilder {
	return f.str(key).u32(uint32(tagString)).str(value)
}

func (f *fixtureBuilder) metadataU32Array(key string, values []uint32) *fixtureBuilder {
	f.str(key).u32(uint32(tagArray)).u32(uint32(tagU32)).u64(uint64(len(values)))
	for _, v := range values {
		f.u32(v)
	}
	return f
}

func (f *fixtureBuilder) tensorDescriptor(name string, shape []uint64, kind uint32, payloadOffset uint64) *fixtureBuilder {
	f.str(name).u32(uint32(len(shape)))
	for _, d := range shape {
		f.u64(d)
	}
	return f.u32(kind).u64(payloadOffset)
}

func (f *fixtureBuilder) bytes() []byte { return f.buf.Bytes() }

func (f *fixtureBuilder) len() int { return f.buf.Len() }

// patchU64 overwrites the 8 bytes at pos with v, little-endian. Used to
// fix up a tensor descriptor's payload_offset once the payload's actual
// position (written after the whole descriptor table) is known.
func (f *fixtureBuilder) patchU64(pos int, v uint64) *fixtureBuilder {
	binary.LittleEndian.PutUint64(f.buf.Bytes()[pos:pos+8], v)
	return f
}

// writeFixture writes the fixture to a temp file and returns its path.
func writeFixture(t *testing.T, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.gguf")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

// writeTruncatedFixture writes only the first n bytes of b, to drive the
// Truncated error path (spec property 9). Unexported: this is a test
// helper, not a general-purpose container writer.
func writeTruncatedFixture(t *testing.T, b []byte, n int) string {
	t.Helper()
	if n > len(b) {
		n = len(b)
	}
	return writeFixture(t, b[:n])
}
