package gguf

import "github.com/rvnllm/gguf/tensorformat"

// magic is the fixed sentinel at offset 0 of every container: the ASCII
// bytes "GGUF" read as a little-endian u32.
const magic uint32 = 0x46554747

// Version is the container format version. Only V2 and V3 are defined;
// they currently share one body parser but are kept as distinct registry
// entries to allow future divergence without branching.
type Version uint32

const (
	V2 Version = 2
	V3 Version = 3
)

// EncodingCode identifies a tensor's on-disk byte layout. The closed set
// of codes and their decoders live in tensorformat; this package re-exports
// the type here so callers never need to import tensorformat directly just to
// read a TensorDescriptor's Kind.
type EncodingCode = tensorformat.EncodingCode

const (
	F32  = tensorformat.F32
	F16  = tensorformat.F16
	Q4_0 = tensorformat.Q4_0
	Q4_1 = tensorformat.Q4_1
	Q5_0 = tensorformat.Q5_0
	Q5_1 = tensorformat.Q5_1
	Q8_0 = tensorformat.Q8_0
	Q8_1 = tensorformat.Q8_1
	Q2_K = tensorformat.Q2_K
	Q3_K = tensorformat.Q3_K
	Q4_K = tensorformat.Q4_K
	Q5_K = tensorformat.Q5_K
	Q6_K = tensorformat.Q6_K
	Q8_K = tensorformat.Q8_K
	I8   = tensorformat.I8
	I16  = tensorformat.I16
	I32  = tensorformat.I32
)

// metadataTypeTag is the on-disk u32 discriminant for a MetadataValue.
type metadataTypeTag uint32

const (
	tagU8 metadataTypeTag = iota
	tagI8
	tagU16
	tagI16
	tagU32
	tagI32
	tagF32
	tagBool
	tagString
	tagArray
	tagU64
	tagI64
	tagF64
)

// Header is the fixed-size prefix of a container: version and the two
// record counts that drive the metadata and tensor-descriptor loops.
// Populated once during parse and immutable thereafter.
type Header struct {
	Version         Version
	TensorCount     uint64
	MetadataKVCount uint64
}

// TensorDescriptor is a tensor's name/shape/kind/offset/size record,
// without its payload bytes.
type TensorDescriptor struct {
	Name          string
	Kind          EncodingCode
	Shape         []uint64
	PayloadOffset uint64
	PayloadSize   uint64
}
