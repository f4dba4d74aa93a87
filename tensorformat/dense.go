package tensorformat

import "fmt"

// denseDecoder is a borrowed-passthrough decoder for a dense (non-block)
// encoding: the raw bytes already are the payload, so Decode only checks
// the length matches product(shape) x elementSize and aliases raw.
type denseDecoder struct {
	id          EncodingCode
	name        string
	elementSize int
}

func (d denseDecoder) ID() EncodingCode { return d.id }
func (d denseDecoder) Name() string     { return d.name }

func (d denseDecoder) Decode(raw []byte, shape []int) (View, error) {
	want := d.elementSize
	for _, s := range shape {
		want *= s
	}
	if len(raw) != want {
		return View{}, fmt.Errorf("%s: expected %d bytes for shape %v, got %d", d.name, want, shape, len(raw))
	}
	return View{Data: raw, Shape: shape, DType: d.id}, nil
}

func registerBuiltins() {
	register(denseDecoder{F32, "F32", 4})
	register(denseDecoder{F16, "F16", 2})
	register(denseDecoder{I8, "I8", 1})
	register(denseDecoder{I16, "I16", 2})
	register(denseDecoder{I32, "I32", 4})
	registerBlockPassthroughs()
	register(q2KDecoder{})
	register(q4KSDecoder{})
	register(q6KDecoder{})
}
