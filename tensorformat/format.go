// Package tensorformat holds the closed set of on-disk tensor encoding
// codes and the process-wide registry of decoders that turn a raw byte
// slice plus shape into a typed View.
package tensorformat

import (
	"fmt"
	"sync"
)

// EncodingCode is the on-disk numeric code identifying a tensor's byte
// layout, dense or block-quantized.
type EncodingCode uint32

const (
	F32  EncodingCode = 0
	F16  EncodingCode = 1
	Q4_0 EncodingCode = 2
	Q4_1 EncodingCode = 3
	// 4 and 5 are reserved-unused on disk.
	Q5_0 EncodingCode = 6
	Q5_1 EncodingCode = 7
	Q8_0 EncodingCode = 8
	Q8_1 EncodingCode = 9
	Q2_K EncodingCode = 10
	Q3_K EncodingCode = 11
	Q4_K EncodingCode = 12
	Q5_K EncodingCode = 13
	Q6_K EncodingCode = 14
	Q8_K EncodingCode = 15
	I8   EncodingCode = 16
	I16  EncodingCode = 17
	I32  EncodingCode = 18
)

var codeNames = map[EncodingCode]string{
	F32: "F32", F16: "F16", Q4_0: "Q4_0", Q4_1: "Q4_1",
	Q5_0: "Q5_0", Q5_1: "Q5_1", Q8_0: "Q8_0", Q8_1: "Q8_1",
	Q2_K: "Q2_K", Q3_K: "Q3_K", Q4_K: "Q4_K", Q5_K: "Q5_K",
	Q6_K: "Q6_K", Q8_K: "Q8_K", I8: "I8", I16: "I16", I32: "I32",
}

func (c EncodingCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("EncodingCode(%d)", uint32(c))
}

// View is a typed slice over a tensor's decoded payload. Borrowed views
// alias a decoder's input byte slice (itself a subrange of the mapped
// region); owned views hold an independently allocated float buffer
// produced by dequantization. Both expose Data/Shape/DType uniformly.
type View struct {
	Data  []byte
	Shape []int
	DType EncodingCode
	owned bool
}

// Owned reports whether Data was freshly allocated by a dequantizer
// rather than aliasing the decoder's input.
func (v View) Owned() bool { return v.owned }

// Decoder knows one encoding's byte layout and can produce a View over a
// raw subrange plus shape.
type Decoder interface {
	ID() EncodingCode
	Name() string
	Decode(raw []byte, shape []int) (View, error)
}

var (
	registryOnce sync.Once
	registryInit func()
	registry     map[EncodingCode]Decoder
	registryMu   sync.RWMutex
)

func ensureRegistry() {
	registryOnce.Do(func() {
		registry = make(map[EncodingCode]Decoder)
		registerBuiltins()
	})
}

// Register adds a decoder to the process-wide registry. It is idempotent
// by ID: a later registration for the same code replaces the earlier one.
// Safe to call after the registry has been read from.
func Register(d Decoder) {
	ensureRegistry()
	register(d)
}

// register adds d without going through ensureRegistry; registerBuiltins
// uses it from inside the one-shot init, where calling Register would
// re-enter registryOnce.Do and deadlock.
func register(d Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.ID()] = d
}

// Lookup returns the decoder registered for id, if any.
func Lookup(id EncodingCode) (Decoder, bool) {
	ensureRegistry()
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[id]
	return d, ok
}

// BlockElements returns the block element count used to size payloads, for
// both computePayloadSize (gguf/parser.go) and every registered decoder:
// the two must agree on a kind's sub-block size, or a parser-computed
// payload_size slices the mapped region to the wrong length before a
// decoder ever sees it. Dense encodings have a trivial one-element block;
// legacy quantized formats use ggml's fixed 32-element block; the k-quant
// families use a 256-element super-block on disk, except Q2_K/Q4_K/Q6_K,
// whose decoders here (q2k.go, q4ks.go, q6k.go) dequantize real 32/64/32-
// element sub-blocks directly per spec.md §4.4, each with its own
// scale/bias header — so those three report their actual sub-block size,
// not the generic super-block one.
func BlockElements(kind EncodingCode) uint64 {
	switch kind {
	case F32, F16, I8, I16, I32:
		return 1
	case Q4_0, Q4_1, Q5_0, Q5_1, Q8_0, Q8_1:
		return 32
	case Q2_K:
		return q2KBlockElements
	case Q4_K:
		return q4KSBlockElements
	case Q6_K:
		return q6KBlockElements
	default:
		// Q3_K, Q5_K, Q8_K, and any future k-quant code with no decoder
		// wired yet: the generic 256-element ggml super-block layout.
		return 256
	}
}

// BytesPerBlock returns the on-disk byte size of one block for kind, where
// block is the block's element count (see BlockElements). Returns false
// for encodings this registry has no known layout for.
func BytesPerBlock(kind EncodingCode, block uint64) (uint64, bool) {
	switch kind {
	case F32:
		return 4 * block, true
	case F16:
		return 2 * block, true
	case I8:
		return block, true
	case I16:
		return 2 * block, true
	case I32:
		return 4 * block, true
	case Q4_0:
		return 2 + block/2, true
	case Q4_1:
		return 4 + block/2, true
	case Q5_0:
		return 6 + block/2, true
	case Q5_1:
		return 8 + block/2, true
	case Q8_0:
		return 2 + block, true
	case Q8_1:
		return 8 + block, true
	case Q2_K:
		// 2 x f32 header (scale, zero_point) + 2-bit-packed data, per the
		// decode layout in Decode (q2k.go); does not match the generic
		// block/16+block/4+4 table entry, which double-counts a
		// sub-block scale table this encoding's decoder does not use.
		return 8 + block/4, true
	case Q3_K:
		return block/8 + block/4 + 14, true
	case Q4_K:
		return 16 + block/2, true
	case Q5_K:
		return 16 + block/8 + block/2, true
	case Q6_K:
		// 2 x f32 header (scale, bias) + 6-bit-packed data, per the
		// decode layout in Decode (q6k.go).
		return 8 + (block*6+7)/8, true
	case Q8_K:
		// Not enumerated in the block-layout table; derived from the
		// well-known ggml on-disk layout: one f32 scale, `block` int8
		// quants, and one int16 sub-block sum per 16 elements.
		return 4 + block + (block/16)*2, true
	default:
		return 0, false
	}
}
