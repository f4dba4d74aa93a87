package tensorformat

import (
	"encoding/binary"
	"math"
)

// float32SliceToBytes packs a float32 slice into a freshly allocated,
// little-endian byte buffer. Used by owned (dequantizing) decoders to
// produce the byte-shaped Data field of a View.
func float32SliceToBytes(vs []float32) []byte {
	out := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
