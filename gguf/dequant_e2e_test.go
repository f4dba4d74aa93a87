package gguf

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvnllm/gguf/tensorformat"
)

// These tests drive Q2_K/Q4_K_S/Q6_K through the full Load -> View
// pipeline with shapes spanning multiple real sub-blocks (32/64/32
// elements), so that computePayloadSize's block-element count and each
// decoder's own block-element count are exercised together rather than
// independently. A mismatch between the two (the parser carving out too
// few or too many bytes for a multi-block tensor) only shows up once a
// tensor exceeds one sub-block, which a single-block unit test can't
// catch.

func q2kBlock(scale, zeroPoint float32, dataByte byte) []byte {
	buf := make([]byte, 16) // 8-byte header + 8 bytes of 2-bit-packed data
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(scale))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(zeroPoint))
	for i := 8; i < 16; i++ {
		buf[i] = dataByte
	}
	return buf
}

func q4ksBlock(scale0, scale1 float32, zeroPoint, nibbleByte byte) []byte {
	buf := make([]byte, 48) // 16-byte header + 32 bytes of nibble-packed data
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(scale0))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(scale1))
	buf[8] = zeroPoint
	for i := 16; i < 48; i++ {
		buf[i] = nibbleByte
	}
	return buf
}

func q6kBlock(scale, bias float32, dataByte byte) []byte {
	buf := make([]byte, 32) // 8-byte header + 24 bytes of 6-bit-packed data
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(scale))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(bias))
	for i := 8; i < 32; i++ {
		buf[i] = dataByte
	}
	return buf
}

func TestLoad_Q2K_MultiBlockEndToEnd(t *testing.T) {
	const blocks = 4 // shape [128] = 4 real 32-element sub-blocks
	f := newFixture().header(3, 1, 0)
	f.tensorDescriptor("w", []uint64{128}, uint32(Q2_K), 0)
	payloadOffsetPos := f.len() - 8
	payloadOffset := uint64(f.len())
	for i := 0; i < blocks; i++ {
		f.raw(q2kBlock(2.0, 1.0, 0x55)) // every 2-bit field = 1 -> (1-1)*2 = 0
	}
	f.patchU64(payloadOffsetPos, payloadOffset)
	path := writeFixture(t, f.bytes())

	c, err := Load(path)
	require.NoError(t, err)
	defer c.Close()

	td, ok := c.Tensor("w")
	require.True(t, ok)
	assert.Equal(t, uint64(blocks*16), td.PayloadSize)

	view, err := c.View("w")
	require.NoError(t, err)
	vals, ok := view.Float32()
	require.True(t, ok)
	require.Len(t, vals, 128)
	for _, v := range vals {
		assert.Equal(t, float32(0), v)
	}
}

func TestLoad_Q4KS_MultiBlockEndToEnd(t *testing.T) {
	const blocks = 2 // shape [128] = 2 real 64-element sub-blocks
	f := newFixture().header(3, 1, 0)
	f.tensorDescriptor("w", []uint64{128}, uint32(Q4_K), 0)
	payloadOffsetPos := f.len() - 8
	payloadOffset := uint64(f.len())
	for i := 0; i < blocks; i++ {
		f.raw(q4ksBlock(10.0, 1.0, 0, 0x11)) // nibble=1 everywhere
	}
	f.patchU64(payloadOffsetPos, payloadOffset)
	path := writeFixture(t, f.bytes())

	c, err := Load(path)
	require.NoError(t, err)
	defer c.Close()

	td, ok := c.Tensor("w")
	require.True(t, ok)
	assert.Equal(t, uint64(blocks*48), td.PayloadSize)

	view, err := c.View("w")
	require.NoError(t, err)
	vals, ok := view.Float32()
	require.True(t, ok)
	require.Len(t, vals, 128)
	for b := 0; b < blocks; b++ {
		base := b * 64
		for i := 0; i < 32; i++ {
			assert.Equal(t, float32(10.0), vals[base+i], "block %d position %d should use scale0", b, i)
		}
		for i := 32; i < 64; i++ {
			assert.Equal(t, float32(1.0), vals[base+i], "block %d position %d should use scale1", b, i)
		}
	}
}

func TestLoad_Q6K_MultiBlockEndToEnd(t *testing.T) {
	const blocks = 4 // shape [128] = 4 real 32-element sub-blocks
	f := newFixture().header(3, 1, 0)
	f.tensorDescriptor("w", []uint64{128}, uint32(Q6_K), 0)
	payloadOffsetPos := f.len() - 8
	payloadOffset := uint64(f.len())
	for i := 0; i < blocks; i++ {
		f.raw(q6kBlock(1.0, 0.0, 0xFF)) // every 6-bit field = 0x3F = 63
	}
	f.patchU64(payloadOffsetPos, payloadOffset)
	path := writeFixture(t, f.bytes())

	c, err := Load(path)
	require.NoError(t, err)
	defer c.Close()

	td, ok := c.Tensor("w")
	require.True(t, ok)
	assert.Equal(t, uint64(blocks*32), td.PayloadSize)

	// Q6_K's registry entry is a borrowed passthrough (dtype preserved,
	// per the format registry's listing), so View itself returns raw
	// packed bytes; dequantizing to float is the caller's explicit call.
	view, err := c.View("w")
	require.NoError(t, err)
	assert.False(t, view.Owned())
	assert.Equal(t, Q6_K, view.DType)

	vals, err := tensorformat.DequantizeQ6K(view.Raw(), 128)
	require.NoError(t, err)
	require.Len(t, vals, 128)
	for _, v := range vals {
		assert.Equal(t, float32(63), v)
	}
}
