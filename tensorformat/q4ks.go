package tensorformat

import (
	"encoding/binary"
	"fmt"
	"math"
)

const q4KSBlockElements = 64

// q4KSDecoder dequantizes Q4_K_S to F32. Per block of 64 elements: a
// 16-byte header holding scale0 (f32), scale1 (f32), and zero_point (u8,
// remaining header bytes reserved), followed by 32 bytes of packed 4-bit
// nibbles (low nibble first). The first 32 decoded element positions use
// scale0, the last 32 use scale1 — the scale-selection fix pinned against
// the element index, not the nibble/byte index.
type q4KSDecoder struct{}

func (q4KSDecoder) ID() EncodingCode { return Q4_K }
func (q4KSDecoder) Name() string     { return "Q4_K_S" }

func (q4KSDecoder) Decode(raw []byte, shape []int) (View, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	out := make([]float32, 0, n)

	const headerBytes = 16
	const dataBytes = q4KSBlockElements / 2

	pos := 0
	for len(out) < n {
		if pos+headerBytes > len(raw) {
			return View{}, fmt.Errorf("Q4_K_S: truncated block header at byte %d", pos)
		}
		scale0 := math.Float32frombits(binary.LittleEndian.Uint32(raw[pos:]))
		scale1 := math.Float32frombits(binary.LittleEndian.Uint32(raw[pos+4:]))
		zeroPoint := raw[pos+8]
		pos += headerBytes

		remaining := n - len(out)
		elems := q4KSBlockElements
		if remaining < elems {
			elems = remaining
		}
		need := (elems + 1) / 2
		if pos+need > len(raw) {
			return View{}, fmt.Errorf("Q4_K_S: truncated block data at byte %d", pos)
		}
		data := raw[pos : pos+need]
		pos += dataBytes

		for i := 0; i < elems; i++ {
			b := data[i/2]
			var nibble byte
			if i%2 == 0 {
				nibble = b & 0x0F
			} else {
				nibble = b >> 4
			}
			scale := scale0
			if i >= 32 {
				scale = scale1
			}
			out = append(out, (float32(nibble)-float32(zeroPoint))*scale)
		}
	}

	bytes := float32SliceToBytes(out)
	return View{Data: bytes, Shape: shape, DType: F32, owned: true}, nil
}
