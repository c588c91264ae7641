package natmul

import (
	apperrors "github.com/agbru/mullo/internal/errors"
)

// Regime names the algorithm the full multiplier uses for a balanced
// product of a given size.
type Regime int

const (
	RegimeBasecase Regime = iota
	RegimeToom22
	RegimeFFT
)

func (r Regime) String() string {
	switch r {
	case RegimeBasecase:
		return "basecase"
	case RegimeToom22:
		return "toom22"
	case RegimeFFT:
		return "fft"
	default:
		return "unknown"
	}
}

// FullRegime reports which algorithm computes an n×n product.
func (th Thresholds) FullRegime(n int) Regime {
	switch {
	case n < th.Toom22:
		return RegimeBasecase
	case fftEnabled && n >= th.FFT:
		return RegimeFFT
	default:
		return RegimeToom22
	}
}

// FullProductScratchLength returns the scratch mulFullScratch needs for an
// m×n product, m >= n. It follows the same branches as mulFullScratch.
func (th Thresholds) FullProductScratchLength(m, n int) int {
	return fullScratchLength(m, n, &th)
}

func fullScratchLength(m, n int, th *Thresholds) int {
	switch {
	case n < th.Toom22, fftEnabled && n >= th.FFT:
		return 0
	case m == n:
		return toom22ScratchLength(n, th)
	}
	s := toom22ScratchLength(n, th)
	if k := m % n; k > 0 {
		s = max(s, fullScratchLength(n, k, th))
	}
	return 2*n + s
}

// mulFullScratch writes the exact product of x and y into z[:m+n] where
// m = len(x) >= n = len(y) >= 1. scratch holds fullScratchLength(m, n)
// limbs.
func mulFullScratch[L Limb](z, x, y, scratch []L, th *Thresholds) {
	m, n := len(x), len(y)
	switch {
	case n < th.Toom22:
		mulBasecase(z[:m+n], x, y)
	case fftEnabled && n >= th.FFT:
		mulFFT(z[:m+n], x, y)
	case m == n:
		mulBalanced(z[:2*n], x, y, scratch, th)
	default:
		mulUnbalanced(z[:m+n], x, y, scratch, th)
	}
}

// mulUnbalanced cuts x into n-limb chunks, multiplies each by y and adds
// the partial products in place. The last chunk may be shorter than n.
func mulUnbalanced[L Limb](z, x, y, scratch []L, th *Thresholds) {
	m, n := len(x), len(y)
	tp := scratch[:2*n]
	rest := scratch[2*n:]

	mulBalanced(z[:2*n], x[:n], y, rest, th)
	for o := n; o < m; o += n {
		k := min(n, m-o)
		t := tp[:k+n]
		if k == n {
			mulBalanced(t, x[o:o+n], y, rest, th)
		} else {
			mulFullScratch(t, y, x[o:o+k], rest, th)
		}
		// z[o:o+n] holds the top of the previous partial sum.
		c := addVV(z[o:o+n], z[o:o+n], t[:n])
		copy(z[o+n:o+n+k], t[n:n+k])
		addVW(z[o+n:o+n+k], z[o+n:o+n+k], c)
	}
}

// mulFull computes z = x·y with pooled scratch. The operands may come in
// either order.
func mulFull[L Limb](z, x, y []L, th *Thresholds) {
	if len(x) < len(y) {
		x, y = y, x
	}
	s := acquireScratch[L](fullScratchLength(len(x), len(y), th))
	defer releaseScratch(s)
	mulFullScratch(z, x, y, s, th)
}

// fullProduct checks the collaborator contract and multiplies.
func fullProduct[L Limb](out, xs, ys []L, th *Thresholds) {
	const op = "FullProduct"
	m, n := len(xs), len(ys)
	apperrors.Require(n >= 1, op, "operand lengths must be at least 1")
	apperrors.Require(m >= n, op, "first operand length %d is below second %d", m, n)
	apperrors.Require(len(out) >= m+n, op, "output length %d is below %d", len(out), m+n)
	out = out[:m+n]
	mustNotOverlap(op, "output and first operand", out, xs)
	mustNotOverlap(op, "output and second operand", out, ys)
	mulFull(out, xs, ys, th)
}

// FullProduct writes the exact (m+n)-limb product of xs and ys into out,
// using the static thresholds for L. It requires len(xs) >= len(ys) >= 1,
// len(out) >= len(xs)+len(ys) and out disjoint from both operands, and
// panics with an apperrors.PreconditionError otherwise.
func FullProduct[L Limb](out, xs, ys []L) {
	th := DefaultThresholds[L]()
	fullProduct(out, xs, ys, &th)
}
