package bigfft

// poly represents an integer as a polynomial in Z[x]/(x^K+1), where K = 1<<k
// and the evaluation point is b^m = 2^(m*_W).
type poly struct {
	k uint  // K = 1<<k
	m int   // P(b^m) is the represented number
	a []nat // at most K coefficients of m words
}

// polyFromNat slices x into m-word coefficients.
func polyFromNat(x nat, k uint, m int) poly {
	p := poly{k: k, m: m}
	p.a = make([]nat, len(x)/m+1)
	for i := range p.a {
		if len(x) < m {
			p.a[i] = make(nat, m)
			copy(p.a[i], x)
			break
		}
		p.a[i] = x[:m]
		x = x[m:]
	}
	return p
}

// Int evaluates p at b^m.
func (p *poly) Int() nat {
	length := len(p.a)*p.m + 1
	if na := len(p.a); na > 0 {
		length += len(p.a[na-1])
	}
	n := make(nat, length)
	m := p.m
	np := n
	for i := range p.a {
		l := len(p.a[i])
		c := addVV(np[:l], np[:l], p.a[i])
		if np[l] < ^Word(0) {
			np[l] += c
		} else {
			addVW(np[l:], np[l:], c)
		}
		np = np[m:]
	}
	return trim(n)
}

func trim(n nat) nat {
	for i := range n {
		if n[len(n)-1-i] != 0 {
			return n[:len(n)-i]
		}
	}
	return nil
}

// Mul multiplies p and q modulo x^K-1 through the Fourier transform. The
// caller sizes K so that no wrap-around occurs.
func (p *poly) Mul(q *poly) poly {
	// extra=2: a power of 2 is a K-th root of unity once n is a multiple
	// of K/2, and 2 itself is a square (see fermat.ShiftHalf).
	n := valueSize(p.k, p.m, 2)

	pbits := acquireWordSliceUnsafe((n + 1) << p.k)
	defer releaseWordSlice(pbits)
	qbits := acquireWordSliceUnsafe((n + 1) << p.k)
	defer releaseWordSlice(qbits)

	pv := p.transform(n, pbits)
	qv := q.transform(n, qbits)
	pv.mulInPlace(&qv)
	r := pv.invTransform()
	r.m = p.m
	return r
}

// polValues holds a poly evaluated at the powers of a K-th root of unity
// θ = 2^(l/2) in Z/(b^n+1), where b^n = 2^(K/4*l).
type polValues struct {
	k      uint
	n      int      // coefficient length; n*_W is a multiple of K/4
	values []fermat // K values of n+1 words
}

// transform evaluates p at θ^i for i = 0..K-1. The values are laid out in
// valbits, which must hold (n+1)<<k words.
func (p *poly) transform(n int, valbits []Word) polValues {
	k := p.k
	inputbits := acquireWordSlice((n + 1) << k)
	defer releaseWordSlice(inputbits)

	input := make([]fermat, 1<<k)
	values := make([]fermat, 1<<k)
	for i := range values {
		input[i] = inputbits[i*(n+1) : (i+1)*(n+1)]
		if i < len(p.a) {
			copy(input[i], p.a[i])
		}
		values[i] = fermat(valbits[i*(n+1) : (i+1)*(n+1)])
	}
	fourier(values, input, false, n, k)
	return polValues{k, n, values}
}

// invTransform recovers the coefficients (modulo x^K-1) from the values.
// The m field of the result is left unset.
func (v *polValues) invTransform() poly {
	k, n := v.k, v.n

	pbits := make([]Word, (n+1)<<k)
	p := make([]fermat, 1<<k)
	for i := range p {
		p[i] = fermat(pbits[i*(n+1) : (i+1)*(n+1)])
	}
	fourier(p, v.values, true, n, k)

	// Divide by K.
	u := acquireFermat(n + 1)
	defer releaseFermat(u)
	a := make([]nat, 1<<k)
	for i := range p {
		u.Shift(p[i], -int(k))
		copy(p[i], u)
		a[i] = nat(p[i])
	}
	return poly{k: k, m: 0, a: a}
}

// mulInPlace replaces the values of v with the pointwise products v*q.
func (v *polValues) mulInPlace(q *polValues) {
	n := v.n
	buf := fermat(acquireWordSliceUnsafe(8 * n))
	defer releaseWordSlice(buf)
	for i := range v.values {
		z := buf.Mul(v.values[i], q.values[i])
		copy(v.values[i], z)
	}
}

// fourier performs an unnormalized transform of src, a vector of 1<<k
// residues modulo b^n+1, into dst.
func fourier(dst []fermat, src []fermat, backward bool, n int, k uint) {
	state := acquireFFTState(n, k)
	defer releaseFFTState(state)
	tmp, tmp2 := state.tmp, state.tmp2

	// The root of unity at each level is ω = 1<<(ω2shift/2). The source
	// may be strided: its i-th element is src[i<<idxShift].
	var rec func(dst, src []fermat, size uint)
	rec = func(dst, src []fermat, size uint) {
		idxShift := k - size
		ω2shift := (4 * n * _W) >> size
		if backward {
			ω2shift = -ω2shift
		}

		if len(src[0]) != n+1 || len(dst[0]) != n+1 {
			panic("bigfft: fourier operand length mismatch")
		}
		switch size {
		case 0:
			copy(dst[0], src[0])
			return
		case 1:
			dst[0].Add(src[0], src[1<<idxShift])
			dst[1].Sub(src[0], src[1<<idxShift])
			return
		}

		// P(x) = Q1(x²) + x·Q2(x²): transform both halves, then combine
		//   dst[i]       = dst1[i] + ω^i·dst2[i]
		//   dst[i + K/2] = dst1[i] - ω^i·dst2[i]
		dst1 := dst[:1<<(size-1)]
		dst2 := dst[1<<(size-1):]
		rec(dst1, src, size-1)
		rec(dst2, src[1<<idxShift:], size-1)

		for i := range dst1 {
			tmp.ShiftHalf(dst2[i], i*ω2shift, tmp2)
			dst2[i].Sub(dst1[i], tmp)
			dst1[i].Add(dst1[i], tmp)
		}
	}
	rec(dst, src, k)
}
