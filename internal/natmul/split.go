package natmul

import "math"

// splitRule is one row of the divide-and-conquer split table. Below limit
// limbs, the high part takes num/den of the operand.
//
// Each ratio a minimizes k(a) = (1-a)^e / (1 - 2·a^e), the cost of one
// low-half product relative to a full one, when the x0·y0 product is
// computed by an algorithm of exponent e and the recursion costs the same
// factor at every level.
type splitRule struct {
	regime   Regime
	exponent float64
	num, den int
	limit    func(th *Thresholds) int
}

// noLimit marks the last row.
func noLimit(*Thresholds) int { return math.MaxInt }

var splitRules = []splitRule{
	// e = 2: k is decreasing on (0, 1/2], so the even split wins.
	{RegimeBasecase, 2, 1, 2, func(th *Thresholds) int { return th.Toom22 * 36 / 25 }},
	// e = log2(3): argmin near 0.3.
	{RegimeToom22, math.Log2(3), 11, 36, func(th *Thresholds) int {
		if !fftEnabled {
			return math.MaxInt
		}
		return th.FFT * 36 / 25
	}},
	// e ≈ 1: the cross terms should be as short as the overhead allows.
	{RegimeFFT, 1, 1, 10, noLimit},
}

// lowSplitRule returns the table row used for an n-limb low product.
func lowSplitRule(n int, th *Thresholds) splitRule {
	for _, r := range splitRules {
		if n < r.limit(th) {
			return r
		}
	}
	return splitRules[len(splitRules)-1]
}

// splitLow returns n1, the length of the high parts and of the cross terms
// for an n-limb low product, clamped into [1, n/2].
func splitLow(n int, th *Thresholds) int {
	r := lowSplitRule(n, th)
	n1 := n * r.num / r.den
	return min(max(n1, 1), n/2)
}

// splitCost evaluates k(a) for exponent e.
func splitCost(a, e float64) float64 {
	return math.Pow(1-a, e) / (1 - 2*math.Pow(a, e))
}
