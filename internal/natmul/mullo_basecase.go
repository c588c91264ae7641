package natmul

// mulLowBasecase writes x·y mod B^n into z[:n] where n = len(x) = len(y).
//
// The top output limb is accumulated in a single register h: every partial
// row contributes its carry out plus the wrapped product that lands exactly
// on limb n-1. Each row is one limb shorter than the one before it, so the
// work is about n²/2 limb products.
func mulLowBasecase[L Limb](z, x, y []L) {
	n := len(x)
	h := x[0] * y[n-1]
	if n > 1 {
		v := y[0]
		h += x[n-1]*v + mulVW(z[:n-1], x[:n-1], v)
		for i := n - 2; i > 0; i-- {
			v = y[n-1-i]
			h += x[i]*v + addMulVW(z[n-1-i:n-1], x[:i], v)
		}
	}
	z[n-1] = h
}

// mulLowBasecaseRows is the plain row-by-row form of mulLowBasecase: row i
// adds x[:n-i]·y[i] into z[i:n] and drops its carry.
func mulLowBasecaseRows[L Limb](z, x, y []L) {
	n := len(x)
	mulVW(z[:n], x, y[0])
	for i := 1; i < n; i++ {
		addMulVW(z[i:n], x[:n-i], y[i])
	}
}
