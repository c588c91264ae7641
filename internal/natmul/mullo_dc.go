package natmul

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/mullo/internal/errors"
)

// Divide-and-conquer low product. With n = n1 + n2, n1 <= n2,
// x = x0 + x1·B^n2 and y = y0 + y1·B^n2:
//
//	x·y mod B^n = x0·y0 + ((x1·y0 + x0·y1) mod B^n1)·B^n2   (mod B^n)
//
// x0·y0 is an exact n2×n2 product; the two cross terms are n1-limb low
// products of x1 with the bottom of y0 and of the bottom of x0 with y1.

// mulLowDivideAndConquerShared writes x·y mod B^n into w[:n] and uses
// w[n:2n] as its working region. len(w) >= 2n, n = len(x) = len(y) >= 2.
func mulLowDivideAndConquerShared[L Limb](w, x, y []L, th *Thresholds) {
	const op = "mulLowDivideAndConquerShared"
	n := len(x)
	n1 := splitLow(n, th)
	n2 := n - n1
	w = w[:2*n]
	mustNotOverlap(op, "work and first operand", w, x)
	mustNotOverlap(op, "work and second operand", w, y)

	// w[:2n2] = x0·y0. Only its low n limbs are kept; the rest of the
	// product and w[n:2n] are free for the cross terms since 2n1 <= n.
	mulFull(w[:2*n2], x[:n2], y[:n2], th)
	addLowCross(w[n2:n], w[n:n+2*n1], x, y, n2, th)
}

// mulLowDivideAndConquer writes x·y mod B^n into z[:n] using scratch of at
// least LowProductScratchLength(n) limbs. z and scratch must be disjoint
// from each other and from the operands.
func mulLowDivideAndConquer[L Limb](z, x, y, scratch []L, th *Thresholds) {
	const op = "mulLowDivideAndConquer"
	n := len(x)
	n1 := splitLow(n, th)
	n2 := n - n1
	z = z[:n]
	s := scratch[:2*n]
	mustNotOverlap(op, "output and scratch", z, s)
	mustNotOverlap(op, "output and first operand", z, x)
	mustNotOverlap(op, "output and second operand", z, y)
	mustNotOverlap(op, "scratch and first operand", s, x)
	mustNotOverlap(op, "scratch and second operand", s, y)

	mulFull(s[:2*n2], x[:n2], y[:n2], th)
	copy(z, s[:n])
	addLowCross(z[n2:], s[n:n+2*n1], x, y, n2, th)
}

// addLowCross adds (x1·y0 + x0·y1) mod B^n1 into hi, where n1 = len(hi)
// and x1, y1 start at n2. work holds 2·n1 limbs.
func addLowCross[L Limb](hi, work, x, y []L, n2 int, th *Thresholds) {
	const op = "addLowCross"
	n1 := len(hi)
	work = work[:2*n1]
	mustNotOverlap(op, "accumulator and work", hi, work)

	if th.Parallel > 0 && n1 >= th.Parallel {
		addLowCrossParallel(hi, work, x, y, n2, th)
		return
	}
	mulLowCross(work, x[n2:], y[:n1], th)
	addVV(hi, hi, work[:n1])
	mulLowCross(work, x[:n1], y[n2:], th)
	addVV(hi, hi, work[:n1])
}

// addLowCrossParallel computes the second cross term in a pooled buffer
// while the first runs in work.
func addLowCrossParallel[L Limb](hi, work, x, y []L, n2 int, th *Thresholds) {
	n1 := len(hi)
	other := acquireScratch[L](2 * n1)
	defer releaseScratch(other)

	var g errgroup.Group
	g.Go(func() error {
		return runCross(work, x[n2:], y[:n1], th)
	})
	g.Go(func() error {
		return runCross(other, x[:n1], y[n2:], th)
	})
	if err := g.Wait(); err != nil {
		if pe, ok := apperrors.AsPrecondition(err); ok {
			panic(pe)
		}
		panic(err)
	}
	addVV(hi, hi, work[:n1])
	addVV(hi, hi, other[:n1])
}

// runCross turns a panic in a cross-term goroutine into an error so that
// it resurfaces on the calling goroutine. A PreconditionError is re-raised
// there as itself.
func runCross[L Limb](w, x, y []L, th *Thresholds) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("natmul: cross term: %w", e)
				return
			}
			err = fmt.Errorf("natmul: cross term: %v", r)
		}
	}()
	mulLowCross(w, x, y, th)
	return nil
}

// mulLowCross writes x·y mod B^m into w[:m], m = len(x) = len(y), using
// w[m:2m] as room. It applies the dispatcher's size policy without the
// fixed-array path.
func mulLowCross[L Limb](w, x, y []L, th *Thresholds) {
	m := len(x)
	switch {
	case m < th.Basecase:
		mulBasecase(w[:2*m], x, y)
	case m < th.DC || m < 2:
		mulLowBasecase(w[:m], x, y)
	default:
		mulLowDivideAndConquerShared(w, x, y, th)
	}
}
