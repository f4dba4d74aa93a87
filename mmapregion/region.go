// Package mmapregion opens a file and exposes its contents as an
// immutable, contiguous byte region whose lifetime bounds every view
// derived from it.
package mmapregion

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Region wraps a read-only memory mapping of a file. The underlying file
// handle is closed immediately after the mapping succeeds; only the
// mapping itself needs to stay alive for Bytes to remain valid.
type Region struct {
	mapping mmap.MMap
}

// Open maps path read-only and returns a Region. The OS file handle used
// to establish the mapping does not need to outlive this call: on most
// platforms the mapping remains valid after the descriptor is closed.
func Open(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapregion: open %q: %w", path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmapregion: map %q: %w", path, err)
	}
	return &Region{mapping: m}, nil
}

// Bytes returns the mapped file contents. The returned slice is valid
// until Close is called; calling Bytes after Close is a programmer error.
func (r *Region) Bytes() []byte {
	return r.mapping
}

// Len returns the mapped region's length in bytes.
func (r *Region) Len() int {
	return len(r.mapping)
}

// Close unmaps the region. Any byte slice previously returned by Bytes,
// and any view derived from it, must not be used after Close returns.
func (r *Region) Close() error {
	if r.mapping == nil {
		return nil
	}
	err := r.mapping.Unmap()
	r.mapping = nil
	return err
}
