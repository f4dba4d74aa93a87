package gguf

import (
	"math"

	"github.com/rvnllm/gguf/tensorformat"
)

// options configure a single Load call. The zero value imposes no limits.
type options struct {
	maxTensorCount   uint64
	maxMetadataCount uint64
}

// Option customizes Load/LoadAll.
type Option func(*options)

// WithMaxTensorCount rejects a header whose declared tensor_count exceeds
// n, before any tensor descriptor bytes are read. Guards against a
// corrupted count field driving an enormous allocation.
func WithMaxTensorCount(n uint64) Option {
	return func(o *options) { o.maxTensorCount = n }
}

// WithMaxMetadataCount rejects a header whose declared metadata_kv_count
// exceeds n, before any metadata bytes are read.
func WithMaxMetadataCount(n uint64) Option {
	return func(o *options) { o.maxMetadataCount = n }
}

func newOptions(opts ...Option) options {
	o := options{maxTensorCount: math.MaxUint64, maxMetadataCount: math.MaxUint64}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// bodyParser reads everything after the header's version field: the two
// counts, the metadata stream, and the tensor descriptor table.
type bodyParser func(c *cursor, o options) (Header, Metadata, map[string]TensorDescriptor, error)

// parserRegistry dispatches on version. V2 and V3 currently share an
// identical body format (parseBodyCommon) but are kept as distinct map
// entries rather than a shared default case, so that a future format
// divergence between the two versions only touches one entry.
var parserRegistry = map[Version]bodyParser{
	V2: parseBodyV2,
	V3: parseBodyV3,
}

func parseBodyV2(c *cursor, o options) (Header, Metadata, map[string]TensorDescriptor, error) {
	return parseBodyCommon(V2, c, o)
}

func parseBodyV3(c *cursor, o options) (Header, Metadata, map[string]TensorDescriptor, error) {
	return parseBodyCommon(V3, c, o)
}

func parseBodyCommon(version Version, c *cursor, o options) (Header, Metadata, map[string]TensorDescriptor, error) {
	tensorCount, err := c.u64()
	if err != nil {
		return Header{}, nil, nil, err
	}
	metadataCount, err := c.u64()
	if err != nil {
		return Header{}, nil, nil, err
	}
	if tensorCount > o.maxTensorCount {
		return Header{}, nil, nil, newErr(ShapeInvalid, tensorCount, nil)
	}
	if metadataCount > o.maxMetadataCount {
		return Header{}, nil, nil, newErr(ShapeInvalid, metadataCount, nil)
	}

	header := Header{Version: version, TensorCount: tensorCount, MetadataKVCount: metadataCount}

	metadata, err := parseMetadata(c, metadataCount)
	if err != nil {
		return Header{}, nil, nil, err
	}

	tensors, err := parseTensors(c, tensorCount)
	if err != nil {
		return Header{}, nil, nil, err
	}

	return header, metadata, tensors, nil
}

func parseMetadata(c *cursor, count uint64) (Metadata, error) {
	metadata := make(Metadata, count)
	for i := uint64(0); i < count; i++ {
		key, err := c.string()
		if err != nil {
			return nil, err
		}
		value, err := readValue(c)
		if err != nil {
			return nil, err
		}
		metadata[key] = value // last write wins on duplicate keys
	}
	return metadata, nil
}

// readValue reads one top-level metadata value: a u32 type tag followed
// by the tag-specific payload. Array elements are read by the separate
// readArrayElement path below (which rejects nesting directly, since an
// array's element type tag is read once for the whole array, not
// re-dispatched through this function), so an array's tagArray case here
// only ever needs to read the array itself.
func readValue(c *cursor) (MetadataValue, error) {
	tagCode, err := c.u32()
	if err != nil {
		return MetadataValue{}, err
	}
	tag := metadataTypeTag(tagCode)

	switch tag {
	case tagU8:
		b, err := c.bytes(1)
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagU8, uint64(b[0])), nil
	case tagI8:
		b, err := c.bytes(1)
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagI8, uint64(int8(b[0]))), nil
	case tagU16:
		b, err := c.bytes(2)
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagU16, uint64(le16(b))), nil
	case tagI16:
		b, err := c.bytes(2)
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagI16, uint64(int16(le16(b)))), nil
	case tagU32:
		v, err := c.u32()
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagU32, uint64(v)), nil
	case tagI32:
		v, err := c.u32()
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagI32, uint64(int32(v))), nil
	case tagU64:
		v, err := c.u64()
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagU64, v), nil
	case tagI64:
		v, err := c.u64()
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagI64, uint64(int64(v))), nil
	case tagF32:
		v, err := c.f32()
		if err != nil {
			return MetadataValue{}, err
		}
		return newF32(v), nil
	case tagF64:
		v, err := c.f64()
		if err != nil {
			return MetadataValue{}, err
		}
		return newF64(v), nil
	case tagBool:
		b, err := c.bytes(1)
		if err != nil {
			return MetadataValue{}, err
		}
		return newBool(b[0] != 0), nil
	case tagString:
		s, err := c.string()
		if err != nil {
			return MetadataValue{}, err
		}
		return newString(s), nil
	case tagArray:
		return readArray(c)
	default:
		return MetadataValue{}, newErr(UnknownMetadataType, tagCode, nil)
	}
}

func readArray(c *cursor) (MetadataValue, error) {
	elemTagCode, err := c.u32()
	if err != nil {
		return MetadataValue{}, err
	}
	if metadataTypeTag(elemTagCode) == tagArray {
		return MetadataValue{}, newErr(NestedArrayUnsupported, nil, nil)
	}
	length, err := c.u64()
	if err != nil {
		return MetadataValue{}, err
	}

	elems := make([]MetadataValue, 0, length)
	for i := uint64(0); i < length; i++ {
		// The element type tag was already consumed once for the whole
		// array, so each element is read directly for that tag rather
		// than re-reading a per-element type tag from the stream.
		elem, err := readArrayElement(c, metadataTypeTag(elemTagCode))
		if err != nil {
			return MetadataValue{}, err
		}
		elems = append(elems, elem)
	}
	return newArray(elems), nil
}

// readArrayElement reads one primitive value of the given tag directly,
// without re-reading a type tag from the stream (the array's element type
// tag was already consumed once for the whole array).
func readArrayElement(c *cursor, tag metadataTypeTag) (MetadataValue, error) {
	switch tag {
	case tagU8:
		b, err := c.bytes(1)
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagU8, uint64(b[0])), nil
	case tagI8:
		b, err := c.bytes(1)
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagI8, uint64(int8(b[0]))), nil
	case tagU16:
		b, err := c.bytes(2)
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagU16, uint64(le16(b))), nil
	case tagI16:
		b, err := c.bytes(2)
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagI16, uint64(int16(le16(b)))), nil
	case tagU32:
		v, err := c.u32()
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagU32, uint64(v)), nil
	case tagI32:
		v, err := c.u32()
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagI32, uint64(int32(v))), nil
	case tagU64:
		v, err := c.u64()
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagU64, v), nil
	case tagI64:
		v, err := c.u64()
		if err != nil {
			return MetadataValue{}, err
		}
		return newUint(tagI64, uint64(int64(v))), nil
	case tagF32:
		v, err := c.f32()
		if err != nil {
			return MetadataValue{}, err
		}
		return newF32(v), nil
	case tagF64:
		v, err := c.f64()
		if err != nil {
			return MetadataValue{}, err
		}
		return newF64(v), nil
	case tagBool:
		b, err := c.bytes(1)
		if err != nil {
			return MetadataValue{}, err
		}
		return newBool(b[0] != 0), nil
	case tagString:
		s, err := c.string()
		if err != nil {
			return MetadataValue{}, err
		}
		return newString(s), nil
	case tagArray:
		return MetadataValue{}, newErr(NestedArrayUnsupported, nil, nil)
	default:
		return MetadataValue{}, newErr(UnknownMetadataType, uint32(tag), nil)
	}
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func parseTensors(c *cursor, count uint64) (map[string]TensorDescriptor, error) {
	tensors := make(map[string]TensorDescriptor, count)
	for i := uint64(0); i < count; i++ {
		name, err := c.string()
		if err != nil {
			return nil, err
		}
		dims, err := c.u32()
		if err != nil {
			return nil, err
		}
		shape := make([]uint64, dims)
		for d := uint32(0); d < dims; d++ {
			v, err := c.u64()
			if err != nil {
				return nil, err
			}
			shape[d] = v
		}
		kindCode, err := c.u32()
		if err != nil {
			return nil, err
		}
		kind := EncodingCode(kindCode)
		payloadOffset, err := c.u64()
		if err != nil {
			return nil, err
		}

		parameters, err := productShape(shape)
		if err != nil {
			return nil, newErr(ShapeInvalid, name, err)
		}

		payloadSize, err := computePayloadSize(kind, parameters)
		if err != nil {
			return nil, err
		}

		tensors[name] = TensorDescriptor{
			Name:          name,
			Kind:          kind,
			Shape:         shape,
			PayloadOffset: payloadOffset,
			PayloadSize:   payloadSize,
		}
	}
	return tensors, nil
}

// computePayloadSize implements spec.md 4.3's block-layout table:
// payload_size = parameters * bytes_per_block / block_elements, rounded
// up to whole blocks.
func computePayloadSize(kind EncodingCode, parameters uint64) (uint64, error) {
	blockElements := tensorformat.BlockElements(kind)
	bytesPerBlock, ok := tensorformat.BytesPerBlock(kind, blockElements)
	if !ok {
		return 0, newErr(UnknownEncoding, uint32(kind), nil)
	}
	numBlocks := (parameters + blockElements - 1) / blockElements
	return numBlocks * bytesPerBlock, nil
}
