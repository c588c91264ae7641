// Package natmul multiplies natural numbers stored as little-endian limb
// slices, with an emphasis on the low-half product x·y mod B^n.
//
// The low-half dispatcher picks one of four strategies by operand size:
//
//	n < Basecase        general schoolbook into a fixed array, keep low n
//	n < DC              dedicated low-half schoolbook, about n²/2 products
//	n < Large           divide and conquer: one exact n2×n2 product plus
//	                    two recursive n1-limb low products
//	otherwise           full product (Toom-22 or FFT), keep low n
//
// All kernels are generic over the Limb constraint and produce identical
// results for every valid Thresholds value. Preconditions (lengths,
// overlap) are checked at the entry points and reported by panicking with
// an apperrors.PreconditionError; the kernels never return errors.
//
// Building with the nofft tag removes the FFT multiplier from every path.
package natmul
