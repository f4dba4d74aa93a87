package gguf

import "fmt"

// checkedMul multiplies a and b, failing instead of wrapping on overflow.
// Used to compute product(shape) and payload_size without silently
// accepting a corrupted (oversized) tensor shape.
func checkedMul(a, b uint64) (uint64, error) {
	c := a * b
	if a > 1 && b > 1 && c/a != b {
		return c, fmt.Errorf("multiplication overflow: %d * %d", a, b)
	}
	return c, nil
}

// productShape computes the element count of shape, rejecting overflow and
// zero-length/zero-dimensional shapes per the ShapeInvalid invariant.
func productShape(shape []uint64) (uint64, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("empty shape")
	}
	total := uint64(1)
	for _, dim := range shape {
		var err error
		total, err = checkedMul(total, dim)
		if err != nil {
			return 0, err
		}
	}
	if total == 0 {
		return 0, fmt.Errorf("zero-length shape")
	}
	return total, nil
}
