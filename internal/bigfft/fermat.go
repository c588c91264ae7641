package bigfft

// Arithmetic modulo 2^(n*_W)+1.

// A fermat of length n+1 represents a residue modulo 2^(n*_W)+1. The last
// word is zero or one, so most residues have two representatives.
type fermat nat

func (z fermat) String() string { return nat(z).String() }

// norm brings the top word back to 0 or 1.
func (z fermat) norm() {
	n := len(z) - 1
	c := z[n]
	if c == 0 {
		return
	}
	if z[0] >= c {
		z[n] = 0
		z[0] -= c
		return
	}
	// z[0] < z[n]
	subVW(z, z, c)
	if c > 1 {
		z[n] -= c - 1
		c = 1
	}
	if z[n] == 1 {
		z[n] = 0
		return
	}
	addVW(z, z, 1)
}

// Shift computes (x << k) mod (2^(n*_W)+1). Negative k shifts right.
func (z fermat) Shift(x fermat, k int) {
	if len(z) != len(x) {
		panic("bigfft: fermat.Shift length mismatch")
	}
	n := len(x) - 1
	// A shift by n*_W bits is a negation.
	k %= 2 * n * _W
	if k < 0 {
		k += 2 * n * _W
	}
	neg := false
	if k >= n*_W {
		k -= n * _W
		neg = true
	}

	kw, kb := k/_W, k%_W

	z[n] = 1 // add -1, restored below
	if !neg {
		for i := 0; i < kw; i++ {
			z[i] = 0
		}
		// x = a·2^(n-k) + b, so x<<k = (b<<k) - a.
		copy(z[kw:], x[:n-kw])
		b := subVV(z[:kw+1], z[:kw+1], x[n-kw:])
		if z[kw+1] > 0 {
			z[kw+1] -= b
		} else {
			subVW(z[kw+1:], z[kw+1:], b)
		}
	} else {
		for i := kw + 1; i < n; i++ {
			z[i] = 0
		}
		copy(z[:kw+1], x[n-kw:n+1])
		b := subVV(z[kw:n], z[kw:n], x[:n-kw])
		z[n] -= b
	}
	if z[n] > 0 {
		z[n]--
	} else if z[0] < ^Word(0) {
		z[0]++
	} else {
		addVW(z, z, 1)
	}
	shlVU(z, z, uint(kb))
	z.norm()
}

// ShiftHalf multiplies x by 2^(k/2). The half bit is sqrt(2), which is
// 2^(3n/4) - 2^(n/4) in this ring. tmp must have the length of z.
func (z fermat) ShiftHalf(x fermat, k int, tmp fermat) {
	n := len(z) - 1
	if k%2 == 0 {
		z.Shift(x, k/2)
		return
	}
	u := (k - 1) / 2
	a := u + (3*_W/4)*n
	b := u + (_W/4)*n
	z.Shift(x, a)
	tmp.Shift(x, b)
	z.Sub(z, tmp)
}

// Add computes z = x + y.
func (z fermat) Add(x, y fermat) fermat {
	if len(z) != len(x) {
		panic("bigfft: fermat.Add length mismatch")
	}
	addVV(z, x, y) // no carry: both top words are at most 1
	z.norm()
	return z
}

// Sub computes z = x - y.
func (z fermat) Sub(x, y fermat) fermat {
	if len(z) != len(x) {
		panic("bigfft: fermat.Sub length mismatch")
	}
	n := len(y) - 1
	b := subVV(z[:n], x[:n], y[:n])
	b += y[n]
	// Subtracting b<<n is adding b.
	z[n] = x[n]
	if z[0] <= ^Word(0)-b {
		z[0] += b
	} else {
		addVW(z, z, b)
	}
	z.norm()
	return z
}

// Mul computes x*y reduced modulo 2^(n*_W)+1. z is a work buffer of at
// least 2n+2 words; the returned slice aliases it.
func (z fermat) Mul(x, y fermat) fermat {
	if len(x) != len(y) {
		panic("bigfft: fermat.Mul length mismatch")
	}
	n := len(x) - 1
	if n < 30 {
		z = z[:2*n+2]
		basicMul(z, x, y)
		z = z[:2*n+1]
	} else {
		zb := mulNat(nat(z), nat(x), nat(y))
		if len(zb) <= n {
			// Already reduced.
			z = z[:n+1]
			copy(z, zb)
			clear(z[len(zb):])
			return z
		}
		z = fermat(zb)
	}
	if len(z) > 2*n+1 {
		panic("bigfft: fermat product longer than 2n+1 words")
	}
	// z = z[:n] + 2^(n*_W)·z[n:2n+1] reduces to z[:n] - z[n:2n] + z[2n].
	c1 := Word(0)
	if len(z) > 2*n {
		c1 = addVW(z[:n], z[:n], z[2*n])
	}
	var c2 Word
	if len(z) >= 2*n {
		c2 = subVV(z[:n], z[:n], z[n:2*n])
	} else {
		m := len(z) - n
		c2 = subVV(z[:m], z[:m], z[n:])
		c2 = subVW(z[m:n], z[m:n], c2)
	}
	// Subtracting c2 from the top word is adding it to the bottom.
	z = z[:n+1]
	z[n] = c1
	if addVW(z, z, c2) != 0 {
		panic("bigfft: carry out of fermat reduction")
	}
	z.norm()
	return z
}

// basicMul writes the schoolbook product of x and y into z[:len(x)+len(y)].
func basicMul(z, x, y fermat) {
	clear(z)
	for i, d := range y {
		if d != 0 {
			z[len(x)+i] = addMulVVW(z[i:i+len(x)], x, d)
		}
	}
}
