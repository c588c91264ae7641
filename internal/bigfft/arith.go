package bigfft

// Exported vector kernels for callers that work on raw limb slices. Each one
// accepts an empty destination and returns a zero carry for it, because the
// assembly kernels behind them assume len(z) >= 1 on some targets.
//
// The operands x and y must be at least as long as z. z may alias x or y only
// when both start at the same element.

// AddVV computes z = x + y element-wise and returns the carry.
func AddVV(z, x, y []Word) Word {
	if len(z) == 0 {
		return 0
	}
	return addVV(z, x, y)
}

// SubVV computes z = x - y element-wise and returns the borrow.
func SubVV(z, x, y []Word) Word {
	if len(z) == 0 {
		return 0
	}
	return subVV(z, x, y)
}

// AddVW computes z = x + y for a single word y and returns the carry.
func AddVW(z, x []Word, y Word) Word {
	if len(z) == 0 {
		return y
	}
	return addVW(z, x, y)
}

// SubVW computes z = x - y for a single word y and returns the borrow.
func SubVW(z, x []Word, y Word) Word {
	if len(z) == 0 {
		return y
	}
	return subVW(z, x, y)
}

// MulAddVWW computes z = x*y + r and returns the high word.
func MulAddVWW(z, x []Word, y, r Word) Word {
	if len(z) == 0 {
		return r
	}
	return mulAddVWW(z, x, y, r)
}

// AddMulVVW computes z += x*y and returns the high word.
func AddMulVVW(z, x []Word, y Word) Word {
	if len(z) == 0 {
		return 0
	}
	return addMulVVW(z, x, y)
}
