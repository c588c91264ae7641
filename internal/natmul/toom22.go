package natmul

// Karatsuba (Toom-22) for balanced operands of any size n >= 2.
//
// With l = ceil(n/2), h = n - l, x = x0 + x1·B^l and y = y0 + y1·B^l:
//
//	x·y = z0 + (z0 + z2 - (x0-x1)(y0-y1))·B^l + z2·B^2l
//
// where z0 = x0·y0 and z2 = x1·y1. The middle term is at most 2·B^n, so it
// fits n+1 limbs.

// toom22ScratchLength returns the scratch needed by mulBalanced for n×n.
func toom22ScratchLength(n int, th *Thresholds) int {
	if n < th.Toom22 || (fftEnabled && n >= th.FFT) {
		return 0
	}
	l := (n + 1) / 2
	h := n - l
	return 6*l + 1 + max(toom22ScratchLength(l, th), toom22ScratchLength(h, th))
}

// mulBalanced writes the 2n-limb product of x and y, both of length n, into
// z[:2n]. scratch holds at least toom22ScratchLength(n) limbs and overlaps
// none of the other arguments.
func mulBalanced[L Limb](z, x, y, scratch []L, th *Thresholds) {
	n := len(x)
	switch {
	case n < th.Toom22:
		mulBasecase(z[:2*n], x, y)
	case fftEnabled && n >= th.FFT:
		mulFFT(z[:2*n], x, y)
	default:
		mulToom22(z[:2*n], x, y, scratch, th)
	}
}

func mulToom22[L Limb](z, x, y, scratch []L, th *Thresholds) {
	n := len(x)
	l := (n + 1) / 2
	h := n - l
	x0, x1 := x[:l], x[l:]
	y0, y1 := y[:l], y[l:]

	xd := scratch[:l]
	yd := scratch[l : 2*l]
	p := scratch[2*l : 4*l]
	t := scratch[4*l : 6*l+1]
	rest := scratch[6*l+1:]

	mulBalanced(z[:2*l], x0, y0, rest, th)
	mulBalanced(z[2*l:2*n], x1, y1, rest, th)

	xneg := absDiff(xd, x0, x1)
	yneg := absDiff(yd, y0, y1)
	mulBalanced(p, xd, yd, rest, th)

	// t = z0 + z2 ± p
	copy(t[:2*l], z[:2*l])
	t[2*l] = 0
	c := addVV(t[:2*h], t[:2*h], z[2*l:2*n])
	addVW(t[2*h:], t[2*h:], c)
	if xneg != yneg {
		c = addVV(t[:2*l], t[:2*l], p)
		t[2*l] += c
	} else {
		b := subVV(t[:2*l], t[:2*l], p)
		t[2*l] -= b
	}

	// z += t·B^l; the product fits 2n limbs so the final carry is zero.
	c = addVV(z[l:l+n+1], z[l:l+n+1], t[:n+1])
	addVW(z[l+n+1:2*n], z[l+n+1:2*n], c)
}

// absDiff sets d = |a - b| where len(d) = len(a) >= len(b), and reports
// whether a < b.
func absDiff[L Limb](d, a, b []L) bool {
	h := len(b)
	top := a[h:]
	for i := len(top) - 1; i >= 0; i-- {
		if top[i] != 0 {
			// a > b
			bw := subVV(d[:h], a[:h], b)
			subVW(d[h:], top, bw)
			return false
		}
	}
	if cmpVV(a[:h], b) < 0 {
		subVV(d[:h], b, a[:h])
		clear(d[h:])
		return true
	}
	subVV(d[:h], a[:h], b)
	clear(d[h:])
	return false
}
