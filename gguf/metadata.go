package gguf

import (
	"encoding/json"
	"fmt"
)

// MetadataValue is a tagged sum over the primitive metadata types plus a
// homogeneous array of primitives. Array nesting is disallowed by
// construction: an Array's Elements are never themselves arrays.
type MetadataValue struct {
	tag   metadataTypeTag
	u     uint64 // holds u8/i8/u16/i16/u32/i32/u64/i64/bool, sign/width-extended
	f32   float32
	f64   float64
	str   string
	elems []MetadataValue
}

func newUint(tag metadataTypeTag, v uint64) MetadataValue { return MetadataValue{tag: tag, u: v} }
func newBool(v bool) MetadataValue {
	var u uint64
	if v {
		u = 1
	}
	return MetadataValue{tag: tagBool, u: u}
}
func newString(s string) MetadataValue { return MetadataValue{tag: tagString, str: s} }
func newF32(v float32) MetadataValue   { return MetadataValue{tag: tagF32, f32: v} }
func newF64(v float64) MetadataValue   { return MetadataValue{tag: tagF64, f64: v} }
func newArray(elems []MetadataValue) MetadataValue {
	return MetadataValue{tag: tagArray, elems: elems}
}

// NewStringValue builds a string-tagged MetadataValue, for callers
// assembling metadata outside of Load (tests, synthetic fixtures).
func NewStringValue(s string) MetadataValue { return newString(s) }

// NewUint64Value builds a u64-tagged MetadataValue.
func NewUint64Value(v uint64) MetadataValue { return newUint(tagU64, v) }

// NewBoolValue builds a bool-tagged MetadataValue.
func NewBoolValue(v bool) MetadataValue { return newBool(v) }

// NewArrayValue builds an array-tagged MetadataValue. elems must be
// primitive (non-array) values; this is the caller's responsibility, same
// as the parser's own nested-array rejection.
func NewArrayValue(elems []MetadataValue) MetadataValue { return newArray(elems) }

// Uint8 returns the value as an unsigned byte, if the tag matches.
func (v MetadataValue) Uint8() (uint8, bool) { return uint8(v.u), v.tag == tagU8 }

// Int8 returns the value as a signed byte, if the tag matches.
func (v MetadataValue) Int8() (int8, bool) { return int8(v.u), v.tag == tagI8 }

// Uint16 returns the value as an unsigned 16-bit int, if the tag matches.
func (v MetadataValue) Uint16() (uint16, bool) { return uint16(v.u), v.tag == tagU16 }

// Int16 returns the value as a signed 16-bit int, if the tag matches.
func (v MetadataValue) Int16() (int16, bool) { return int16(v.u), v.tag == tagI16 }

// Uint32 returns the value as an unsigned 32-bit int, if the tag matches.
func (v MetadataValue) Uint32() (uint32, bool) { return uint32(v.u), v.tag == tagU32 }

// Int32 returns the value as a signed 32-bit int, if the tag matches.
func (v MetadataValue) Int32() (int32, bool) { return int32(v.u), v.tag == tagI32 }

// Uint64 returns the value as an unsigned 64-bit int, if the tag matches.
func (v MetadataValue) Uint64() (uint64, bool) { return v.u, v.tag == tagU64 }

// Int64 returns the value as a signed 64-bit int, if the tag matches.
func (v MetadataValue) Int64() (int64, bool) { return int64(v.u), v.tag == tagI64 }

// Float32 returns the value as an IEEE float32, if the tag matches.
func (v MetadataValue) Float32() (float32, bool) { return v.f32, v.tag == tagF32 }

// Float64 returns the value as an IEEE float64, if the tag matches.
func (v MetadataValue) Float64() (float64, bool) { return v.f64, v.tag == tagF64 }

// Bool returns the value as a boolean, if the tag matches. Any non-zero
// byte on disk is true, scalar or array element alike.
func (v MetadataValue) Bool() (bool, bool) { return v.u != 0, v.tag == tagBool }

// String returns the value as a UTF-8 string, if the tag matches.
func (v MetadataValue) String() (string, bool) { return v.str, v.tag == tagString }

// Array returns the element slice, if the tag matches. Elements are
// always primitive: nested arrays are rejected at parse time.
func (v MetadataValue) Array() ([]MetadataValue, bool) { return v.elems, v.tag == tagArray }

// Equal reports structural equality: same tag and same value (array
// equality is element-wise and order-sensitive).
func (v MetadataValue) Equal(other MetadataValue) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case tagF32:
		return v.f32 == other.f32
	case tagF64:
		return v.f64 == other.f64
	case tagString:
		return v.str == other.str
	case tagArray:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	default:
		return v.u == other.u
	}
}

// MarshalJSON renders the value as its DebugString, so a Dump marshaled
// to JSON shows metadata values rather than empty objects.
func (v MetadataValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.DebugString())
}

// DebugString renders the value for diagnostics (used by MarshalJSON when
// a Dump is rendered); not meant as a stable serialization format.
func (v MetadataValue) DebugString() string {
	switch v.tag {
	case tagU8:
		return fmt.Sprintf("U8(%d)", uint8(v.u))
	case tagI8:
		return fmt.Sprintf("I8(%d)", int8(v.u))
	case tagU16:
		return fmt.Sprintf("U16(%d)", uint16(v.u))
	case tagI16:
		return fmt.Sprintf("I16(%d)", int16(v.u))
	case tagU32:
		return fmt.Sprintf("U32(%d)", uint32(v.u))
	case tagI32:
		return fmt.Sprintf("I32(%d)", int32(v.u))
	case tagU64:
		return fmt.Sprintf("U64(%d)", v.u)
	case tagI64:
		return fmt.Sprintf("I64(%d)", int64(v.u))
	case tagF32:
		return fmt.Sprintf("F32(%v)", v.f32)
	case tagF64:
		return fmt.Sprintf("F64(%v)", v.f64)
	case tagBool:
		b, _ := v.Bool()
		return fmt.Sprintf("Bool(%v)", b)
	case tagString:
		return fmt.Sprintf("String(%q)", v.str)
	case tagArray:
		elems := make([]string, len(v.elems))
		for i, e := range v.elems {
			elems[i] = e.DebugString()
		}
		return fmt.Sprintf("Array(%v)", elems)
	default:
		return "Unknown"
	}
}

// Metadata is the parsed key-value map. Duplicate keys in the source file
// resolve last-write-wins; the map itself enforces that on insertion.
type Metadata map[string]MetadataValue
