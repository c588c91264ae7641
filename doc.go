// Package mullo computes the low half of a product of two natural numbers
// held as little-endian limb slices: given n-limb x and y it writes
// x·y mod B^n, where B is 2^32 or 2^64 depending on the limb type.
//
// Both uint32 and uint64 limbs (and types derived from them) are accepted:
//
//	out := make([]uint64, len(x))
//	mullo.ComputeLowProduct(out, x, y)
//
// The algorithm is picked by operand size from a Thresholds value. The
// package-level functions use static defaults; New takes explicit
// thresholds and Configure resolves them from the MULLO_* environment
// variables and a per-host profile written by Calibrate. Every valid
// Thresholds value yields the same result.
//
// Preconditions such as equal operand lengths or non-overlapping output
// are programming errors and panic.
package mullo
