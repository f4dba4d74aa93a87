// Package float16 holds raw half-precision bit-pattern types. F16 is what
// the dense F16 tensor view returns; no encoding code or view in this
// module produces BF16. Conversion to float32 is left to forward-pass
// kernel collaborators, out of this module's scope.
package float16

// F16 is a placeholder for a 16-bit half-precision floating-point value,
// represented as raw bits (uint16).
type F16 uint16

// BF16 is a placeholder for a 16-bit brain floating-point value,
// represented as raw bits (uint16).
type BF16 uint16
