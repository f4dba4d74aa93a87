package tensorformat

import "fmt"

// blockPassthroughDecoder is a borrowed decoder for a block-quantized
// encoding whose layout is known (for sizing) but whose CPU dequantizer is
// not wired into the registry: it hands back the raw packed bytes with the
// original dtype preserved, leaving decode-to-float to a caller that wants
// it (as Q6_K does via the exported DequantizeQ6K helper).
type blockPassthroughDecoder struct {
	id   EncodingCode
	name string
}

func (d blockPassthroughDecoder) ID() EncodingCode { return d.id }
func (d blockPassthroughDecoder) Name() string     { return d.name }

func (d blockPassthroughDecoder) Decode(raw []byte, shape []int) (View, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	block := int(BlockElements(d.id))
	bytesPerBlock, ok := BytesPerBlock(d.id, uint64(block))
	if !ok {
		return View{}, fmt.Errorf("%s: no known block layout", d.name)
	}
	numBlocks := (n + block - 1) / block
	want := numBlocks * int(bytesPerBlock)
	if len(raw) != want {
		return View{}, fmt.Errorf("%s: expected %d packed bytes for %d elements, got %d", d.name, want, n, len(raw))
	}
	return View{Data: raw, Shape: shape, DType: d.id}, nil
}

// registerBlockPassthroughs wires every block-quantized encoding the
// registry names explicitly (spec's format-registry listing): the six
// dense-block encodings with no CPU dequantizer wired, plus Q3_K_M, which
// keeps its original dtype rather than decoding to float. Q5_K and Q8_K
// are valid on-disk codes with a known byte layout (see BytesPerBlock)
// but no registered decoder yet — a tensor using them surfaces
// UnknownEncoding until a future decoder is added, consistent with the
// registry being an open set future formats plug into.
func registerBlockPassthroughs() {
	for _, d := range []blockPassthroughDecoder{
		{Q4_0, "Q4_0"}, {Q4_1, "Q4_1"}, {Q5_0, "Q5_0"}, {Q5_1, "Q5_1"},
		{Q8_0, "Q8_0"}, {Q8_1, "Q8_1"}, {Q3_K, "Q3_K_M"},
	} {
		register(d)
	}
}
