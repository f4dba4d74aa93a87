package tensorformat

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario C: one block, scale=2.0, zero_point=1.0, every 2-bit field =
// 0b01 (=1). Expected: all 32 outputs equal (1-1)*2 = 0.
func TestQ2K_ScenarioC(t *testing.T) {
	raw := make([]byte, 0, 16)
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], math.Float32bits(2.0))
	binary.LittleEndian.PutUint32(hdr[4:], math.Float32bits(1.0))
	raw = append(raw, hdr[:]...)
	// every 2-bit field = 01 -> each byte = 0b01010101 = 0x55
	for i := 0; i < 8; i++ {
		raw = append(raw, 0x55)
	}

	d, ok := Lookup(Q2_K)
	require.True(t, ok)

	view, err := d.Decode(raw, []int{32})
	require.NoError(t, err)
	assert.True(t, view.Owned())
	assert.Equal(t, F32, view.DType)

	floats := make([]float32, 32)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(view.Data[i*4:]))
	}
	for _, v := range floats {
		assert.Equal(t, float32(0), v)
	}
}

func TestQ2K_NonZeroValues(t *testing.T) {
	raw := make([]byte, 0, 16)
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], math.Float32bits(1.0))
	binary.LittleEndian.PutUint32(hdr[4:], math.Float32bits(0.0))
	raw = append(raw, hdr[:]...)
	// field values cycle 0,1,2,3 packed LSB-first, 4 per byte.
	raw = append(raw, 0b11_10_01_00)
	for i := 0; i < 7; i++ {
		raw = append(raw, 0b11_10_01_00)
	}

	d, _ := Lookup(Q2_K)
	view, err := d.Decode(raw, []int{32})
	require.NoError(t, err)

	first4 := make([]float32, 4)
	for i := range first4 {
		first4[i] = math.Float32frombits(binary.LittleEndian.Uint32(view.Data[i*4:]))
	}
	assert.Equal(t, []float32{0, 1, 2, 3}, first4)
}
