package tensorformat

import (
	"encoding/binary"
	"fmt"
	"math"
)

const q2KBlockElements = 32

// q2KDecoder dequantizes Q2_K to F32. Per block of 32 elements: an 8-byte
// header (scale f32, zero_point f32) followed by the 2-bit-per-element
// packed data (4 elements per byte, LSB first). Owned: the decoded float
// buffer is independently allocated and does not alias raw.
type q2KDecoder struct{}

func (q2KDecoder) ID() EncodingCode { return Q2_K }
func (q2KDecoder) Name() string     { return "Q2_K" }

func (q2KDecoder) Decode(raw []byte, shape []int) (View, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	out := make([]float32, 0, n)

	const headerBytes = 8
	const dataBytesPerBlock = q2KBlockElements / 4

	pos := 0
	for len(out) < n {
		if pos+headerBytes > len(raw) {
			return View{}, fmt.Errorf("Q2_K: truncated block header at byte %d", pos)
		}
		scale := math.Float32frombits(binary.LittleEndian.Uint32(raw[pos:]))
		zeroPoint := math.Float32frombits(binary.LittleEndian.Uint32(raw[pos+4:]))
		pos += headerBytes

		remaining := n - len(out)
		elems := q2KBlockElements
		if remaining < elems {
			elems = remaining
		}
		dataBytes := (elems + 3) / 4
		if pos+dataBytes > len(raw) {
			return View{}, fmt.Errorf("Q2_K: truncated block data at byte %d", pos)
		}
		data := raw[pos : pos+dataBytes]
		pos += dataBytesPerBlock // every block reserves a full 8 bytes of data on disk

		for i := 0; i < elems; i++ {
			b := data[i/4]
			shift := uint((i % 4) * 2)
			v2 := (b >> shift) & 0x03
			out = append(out, (float32(v2)-zeroPoint)*scale)
		}
	}

	bytes := float32SliceToBytes(out)
	return View{Data: bytes, Shape: shape, DType: F32, owned: true}, nil
}
