package natmul

// mulBasecase writes the schoolbook product of x and y into
// z[:len(x)+len(y)] (mpn_mul_basecase). Both operands are non-empty and z
// does not overlap them.
func mulBasecase[L Limb](z, x, y []L) {
	m := len(x)
	z[m] = mulVW(z[:m], x, y[0])
	for i := 1; i < len(y); i++ {
		z[m+i] = addMulVW(z[i:i+m], x, y[i])
	}
}
