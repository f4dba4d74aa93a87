package tensorformat

import (
	"encoding/binary"
	"fmt"
	"math"
)

const q6KBlockElements = 32

// q6KDecoder is the registry entry for Q6_K: borrowed passthrough, dtype
// preserved, per the format registry's listing. Callers that want dense
// floats without a registry entry change should call DequantizeQ6K
// directly.
type q6KDecoder struct{}

func (q6KDecoder) ID() EncodingCode { return Q6_K }
func (q6KDecoder) Name() string     { return "Q6_K" }

func (q6KDecoder) Decode(raw []byte, shape []int) (View, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	numBlocks := (n + q6KBlockElements - 1) / q6KBlockElements
	bytesPerBlock, _ := BytesPerBlock(Q6_K, q6KBlockElements)
	want := numBlocks * int(bytesPerBlock)
	if len(raw) != want {
		return View{}, fmt.Errorf("Q6_K: expected %d packed bytes for %d elements, got %d", want, n, len(raw))
	}
	return View{Data: raw, Shape: shape, DType: Q6_K}, nil
}

// DequantizeQ6K decodes n elements of Q6_K-packed raw bytes to float32.
// Per block of 32 elements: an 8-byte header (scale f32, bias f32)
// followed by 24 bytes of packed 6-bit values. For element i at bit
// position p = 6*i within the data region: the low bits come from
// data[p/8] shifted right by p%8; when the 6-bit field crosses a byte
// boundary (p%8 > 2), the remaining high bits come from data[p/8+1]
// shifted left by 8-(p%8). Result is masked to 6 bits and emitted as
// v*scale + bias.
func DequantizeQ6K(raw []byte, n int) ([]float32, error) {
	const headerBytes = 8
	const dataBytes = 24

	out := make([]float32, 0, n)
	pos := 0
	for len(out) < n {
		if pos+headerBytes > len(raw) {
			return nil, fmt.Errorf("Q6_K: truncated block header at byte %d", pos)
		}
		scale := math.Float32frombits(binary.LittleEndian.Uint32(raw[pos:]))
		bias := math.Float32frombits(binary.LittleEndian.Uint32(raw[pos+4:]))
		data := raw[pos+headerBytes:]
		pos += headerBytes

		remaining := n - len(out)
		elems := q6KBlockElements
		if remaining < elems {
			elems = remaining
		}
		needBytes := (elems*6 + 7) / 8
		if needBytes > len(data) {
			return nil, fmt.Errorf("Q6_K: truncated block data at byte %d", pos)
		}

		for i := 0; i < elems; i++ {
			p := 6 * i
			byteOff := p / 8
			bitOff := uint(p % 8)
			lo := data[byteOff] >> bitOff
			var v byte
			if bitOff > 2 {
				hi := data[byteOff+1]
				v = (lo | (hi << (8 - bitOff))) & 0x3F
			} else {
				v = lo & 0x3F
			}
			out = append(out, float32(v)*scale+bias)
		}
		pos += dataBytes
	}
	return out, nil
}
