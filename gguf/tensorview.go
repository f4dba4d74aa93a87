package gguf

import (
	"encoding/binary"
	"math"

	"github.com/rvnllm/gguf/float16"
)

// TensorView is a typed view over a tensor's payload: a borrowed view
// aliases a subrange of the container's mapped region, an owned view
// holds an independently allocated buffer produced by dequantization.
// Both expose the same read interface.
type TensorView struct {
	Data  []byte
	Shape []int
	DType EncodingCode
	owned bool
}

// Owned reports whether Data was freshly allocated by a dequantizer
// rather than aliasing the container's mapped region.
func (v TensorView) Owned() bool { return v.owned }

// Raw returns the view's underlying bytes, regardless of dtype.
func (v TensorView) Raw() []byte { return v.Data }

// Float32 returns the view's data reinterpreted as a float32 slice, if
// DType is F32 (dense float32, or the F32 output of a dequantizer).
func (v TensorView) Float32() ([]float32, bool) {
	if v.DType != F32 || len(v.Data)%4 != 0 {
		return nil, false
	}
	out := make([]float32, len(v.Data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(v.Data[i*4:]))
	}
	return out, true
}

// Float16 returns the view's data reinterpreted as a slice of raw
// half-precision bit patterns, if DType is F16. Converting to float32 is
// left to the caller (a forward-pass kernel collaborator), per this
// package's scope of exposing typed views, not numeric kernels.
func (v TensorView) Float16() ([]float16.F16, bool) {
	if v.DType != F16 || len(v.Data)%2 != 0 {
		return nil, false
	}
	out := make([]float16.F16, len(v.Data)/2)
	for i := range out {
		out[i] = float16.F16(binary.LittleEndian.Uint16(v.Data[i*2:]))
	}
	return out, true
}

// Int8 returns the view's data reinterpreted as an int8 slice, if DType
// is I8.
func (v TensorView) Int8() ([]int8, bool) {
	if v.DType != I8 {
		return nil, false
	}
	out := make([]int8, len(v.Data))
	for i, b := range v.Data {
		out[i] = int8(b)
	}
	return out, true
}
