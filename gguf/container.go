package gguf

import (
	"github.com/rvnllm/gguf/mmapregion"
	"github.com/rvnllm/gguf/tensorformat"
	"github.com/sirupsen/logrus"
)

// Container is the full parsed artifact: header, metadata, tensor
// descriptors, and the retained mapping every borrowed view aliases.
type Container struct {
	Header   Header
	Metadata Metadata
	Tensors  map[string]TensorDescriptor

	region *mmapregion.Region
}

// Load opens path, maps it, and parses it into a Container. On success the
// mapping is retained by the returned Container and released only by
// Close. On failure all resources opened during this call are released
// and a nil Container is returned alongside a non-nil error — there is no
// partial success.
func Load(path string, opts ...Option) (c *Container, err error) {
	o := newOptions(opts...)

	region, err := mmapregion.Open(path)
	if err != nil {
		return nil, newErr(IoError, path, err)
	}
	defer func() {
		if err != nil {
			region.Close()
		}
	}()

	logrus.WithField("path", path).WithField("bytes", region.Len()).Debug("gguf: mapped file")

	buf := region.Bytes()
	cur := newCursor(buf)

	observedMagic, err := cur.u32()
	if err != nil {
		return nil, err
	}
	if observedMagic != magic {
		return nil, newErr(BadMagic, observedMagic, nil)
	}

	versionCode, err := cur.u32()
	if err != nil {
		return nil, err
	}
	version := Version(versionCode)
	parse, ok := parserRegistry[version]
	if !ok {
		return nil, newErr(UnsupportedVersion, versionCode, nil)
	}

	logrus.WithField("version", version).Debug("gguf: dispatching body parser")

	header, metadata, tensors, err := parse(cur, o)
	if err != nil {
		return nil, err
	}

	for name, td := range tensors {
		if td.PayloadOffset+td.PayloadSize > uint64(region.Len()) {
			return nil, newErr(OutOfBounds, name, nil)
		}
	}

	logrus.WithField("tensors", len(tensors)).WithField("metadata", len(metadata)).Debug("gguf: parse complete")

	return &Container{Header: header, Metadata: metadata, Tensors: tensors, region: region}, nil
}

// Close unmaps the container's underlying region. Any TensorView borrowed
// from this container must not be used after Close returns.
func (c *Container) Close() error {
	return c.region.Close()
}

// Tensor looks up a tensor descriptor by name.
func (c *Container) Tensor(name string) (TensorDescriptor, bool) {
	td, ok := c.Tensors[name]
	return td, ok
}

// Names returns the tensor names present in this container, in no
// particular order.
func (c *Container) Names() []string {
	names := make([]string, 0, len(c.Tensors))
	for name := range c.Tensors {
		names = append(names, name)
	}
	return names
}

// View produces a TensorView for the named tensor by locating its
// descriptor, slicing the container's mapped region, and dispatching to
// the registered decoder for its encoding.
func (c *Container) View(name string) (TensorView, error) {
	td, ok := c.Tensor(name)
	if !ok {
		return TensorView{}, newErr(OutOfBounds, name, nil)
	}
	return td.View(c.region.Bytes())
}

// View validates the descriptor against region's length, looks up a
// decoder for its encoding, and decodes the payload subrange.
func (td TensorDescriptor) View(region []byte) (TensorView, error) {
	if td.PayloadOffset+td.PayloadSize > uint64(len(region)) {
		return TensorView{}, newErr(OutOfBounds, td.Name, nil)
	}
	decoder, ok := tensorformat.Lookup(td.Kind)
	if !ok {
		return TensorView{}, newErr(UnknownEncoding, uint32(td.Kind), nil)
	}

	shape := make([]int, len(td.Shape))
	for i, d := range td.Shape {
		shape[i] = int(d)
	}
	raw := region[td.PayloadOffset : td.PayloadOffset+td.PayloadSize]

	view, err := decoder.Decode(raw, shape)
	if err != nil {
		return TensorView{}, newErr(OutOfBounds, td.Name, err)
	}
	return TensorView{Data: view.Data, Shape: shape, DType: view.DType, owned: view.Owned()}, nil
}

// Dump is a plain, JSON-marshalable snapshot of a container suitable for a
// CLI front-end to print. Metadata and Tensors are omitted (nil) when
// empty so a renderer can skip whole sections.
type Dump struct {
	Header   Header
	Metadata Metadata        `json:",omitempty"`
	Tensors  []TensorSummary `json:",omitempty"`
}

// TensorSummary is one row of a Dump's tensor table.
type TensorSummary struct {
	Name  string
	Kind  EncodingCode
	Shape []uint64
}

// Dump renders this container as a plain, serialization-friendly struct.
func (c *Container) Dump() Dump {
	d := Dump{Header: c.Header}
	if len(c.Metadata) > 0 {
		d.Metadata = c.Metadata
	}
	if len(c.Tensors) > 0 {
		d.Tensors = make([]TensorSummary, 0, len(c.Tensors))
		for _, td := range c.Tensors {
			d.Tensors = append(d.Tensors, TensorSummary{Name: td.Name, Kind: td.Kind, Shape: td.Shape})
		}
	}
	return d
}
