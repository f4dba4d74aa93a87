package tensorformat

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDequantizeQ6K_CrossByteExtraction(t *testing.T) {
	raw := make([]byte, 0, 32)
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], math.Float32bits(1.0)) // scale
	binary.LittleEndian.PutUint32(hdr[4:], math.Float32bits(0.0)) // bias
	raw = append(raw, hdr[:]...)
	// 24 bytes of packed 6-bit fields, all bits set -> every field is 0x3F.
	for i := 0; i < 24; i++ {
		raw = append(raw, 0xFF)
	}

	out, err := DequantizeQ6K(raw, 32)
	require.NoError(t, err)
	require.Len(t, out, 32)
	for _, v := range out {
		assert.Equal(t, float32(63), v)
	}
}

func TestQ6K_RegistryBorrowedPassthrough(t *testing.T) {
	d, ok := Lookup(Q6_K)
	require.True(t, ok)

	bytesPerBlock, ok := BytesPerBlock(Q6_K, 32)
	require.True(t, ok)
	raw := make([]byte, bytesPerBlock)

	view, err := d.Decode(raw, []int{32})
	require.NoError(t, err)
	assert.False(t, view.Owned())
	assert.Equal(t, Q6_K, view.DType)
}
