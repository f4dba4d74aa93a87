// Package ggufdiff compares two parsed containers and reports header,
// metadata, and tensor-shape/kind changes. The three comparators share no
// state; each returns nil when its section has no differences, so an
// aggregate renderer can skip whole sections.
package ggufdiff

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rvnllm/gguf/gguf"
)

// FieldChange is one header field that differs between two containers.
type FieldChange struct {
	Field string
	Old   uint64
	New   uint64
}

// HeaderDiff lists the header fields that differ.
type HeaderDiff struct {
	Changes []FieldChange
}

// Header compares two headers' tensor_count and metadata_kv_count fields.
// Version is intentionally not compared: it is a format-dispatch detail,
// not model content.
func Header(a, b gguf.Header) *HeaderDiff {
	var changes []FieldChange
	if a.TensorCount != b.TensorCount {
		changes = append(changes, FieldChange{"tensor_count", a.TensorCount, b.TensorCount})
	}
	if a.MetadataKVCount != b.MetadataKVCount {
		changes = append(changes, FieldChange{"metadata_kv_count", a.MetadataKVCount, b.MetadataKVCount})
	}
	if len(changes) == 0 {
		return nil
	}
	return &HeaderDiff{Changes: changes}
}

// MetadataDiff partitions two metadata maps' keys into added (in B, not
// A), removed (in A, not B), and changed (in both, structurally unequal).
type MetadataDiff struct {
	Added   []string
	Removed []string
	Changed []string
}

// tokenizerPrefixed reports whether key should be excluded from metadata
// diffing: GGUF vocabularies are large and near-always differ across
// checkpoints of the same model family, swamping the diff with noise a
// caller almost never wants.
func tokenizerPrefixed(key string) bool {
	return strings.HasPrefix(key, "tokenizer")
}

// Metadata compares two metadata maps, filtering out tokenizer-prefixed
// keys from both sides before comparison.
func Metadata(a, b gguf.Metadata) *MetadataDiff {
	var added, removed, changed []string

	for key := range b {
		if tokenizerPrefixed(key) {
			continue
		}
		if _, ok := a[key]; !ok {
			added = append(added, key)
		}
	}
	for key, av := range a {
		if tokenizerPrefixed(key) {
			continue
		}
		bv, ok := b[key]
		if !ok {
			removed = append(removed, key)
			continue
		}
		if !av.Equal(bv) {
			changed = append(changed, key)
		}
	}

	if len(added) == 0 && len(removed) == 0 && len(changed) == 0 {
		return nil
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)
	return &MetadataDiff{Added: added, Removed: removed, Changed: changed}
}

// TensorDiff partitions two tensor-descriptor maps' keys the same way as
// MetadataDiff. Changed fires on a shape or encoding mismatch; payload
// bytes are never compared (value-level numerical diffing is out of
// scope).
type TensorDiff struct {
	Added   []string
	Removed []string
	Changed []string
}

// descriptorFingerprint hashes a tensor descriptor's shape and encoding
// into a single uint64, so that "changed" detection for a table of
// many-dimensional tensors is a fixed-cost integer comparison instead of a
// per-pair shape-slice walk. Collisions only cost a false "unchanged" on an
// astronomically unlikely hash match, which is an acceptable trade for a
// structural diff that never inspects payload bytes anyway.
func descriptorFingerprint(td gguf.TensorDescriptor) uint64 {
	h := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(td.Kind))
	h.Write(buf[:4])
	for _, dim := range td.Shape {
		binary.LittleEndian.PutUint64(buf[:], dim)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Tensors compares two tensor-descriptor maps.
func Tensors(a, b map[string]gguf.TensorDescriptor) *TensorDiff {
	var added, removed, changed []string

	for name, tb := range b {
		ta, ok := a[name]
		if !ok {
			added = append(added, name)
			continue
		}
		if descriptorFingerprint(ta) != descriptorFingerprint(tb) {
			changed = append(changed, name)
		}
	}
	for name := range a {
		if _, ok := b[name]; !ok {
			removed = append(removed, name)
		}
	}

	if len(added) == 0 && len(removed) == 0 && len(changed) == 0 {
		return nil
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)
	return &TensorDiff{Added: added, Removed: removed, Changed: changed}
}

// Dump is the aggregate diff report; each field is nil when its
// comparator found no differences, letting a renderer skip the section.
type Dump struct {
	Header   *HeaderDiff
	Metadata *MetadataDiff
	Tensors  *TensorDiff
}

// ComputeDump runs all three comparators over a and b.
func ComputeDump(a, b *gguf.Container) *Dump {
	return &Dump{
		Header:   Header(a.Header, b.Header),
		Metadata: Metadata(a.Metadata, b.Metadata),
		Tensors:  Tensors(a.Tensors, b.Tensors),
	}
}

// Summary renders a one-line, human-readable overview of the diff, with
// the same empty-section skipping as the struct fields it summarizes.
func (d *Dump) Summary() string {
	if d == nil {
		return "no differences"
	}
	var parts []string
	if d.Header != nil {
		parts = append(parts, fmt.Sprintf("header: %d field(s) changed", len(d.Header.Changes)))
	}
	if d.Metadata != nil {
		parts = append(parts, fmt.Sprintf("metadata: +%d -%d ~%d", len(d.Metadata.Added), len(d.Metadata.Removed), len(d.Metadata.Changed)))
	}
	if d.Tensors != nil {
		parts = append(parts, fmt.Sprintf("tensors: +%d -%d ~%d", len(d.Tensors.Added), len(d.Tensors.Removed), len(d.Tensors.Changed)))
	}
	if len(parts) == 0 {
		return "no differences"
	}
	return strings.Join(parts, ", ")
}
