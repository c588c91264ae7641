//go:generate mockgen -source=mullo.go -destination=mocks/mock_observer.go -package=mocks

package natmul

import (
	apperrors "github.com/agbru/mullo/internal/errors"
)

// Observer is notified of the strategy chosen for each top-level low
// product. Implementations must be safe for concurrent use when the
// Multiplier is shared between goroutines.
type Observer interface {
	ObserveLowProduct(strategy Strategy, n int)
}

// Option configures a Multiplier.
type Option func(*options)

type options struct {
	observer Observer
	forced   Strategy
	forcing  bool
}

// WithObserver installs an Observer. A nil Observer is ignored.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithForcedStrategy makes every top-level low product use s when s can
// handle the operand size, whatever the thresholds select. Recursive cross
// terms still follow the thresholds. Sizes s cannot handle (above
// MaxBasecaseThreshold for StrategyBasecaseFull, below 2 for
// StrategyDivideAndConquer) and unknown strategies use the thresholds.
func WithForcedStrategy(s Strategy) Option {
	return func(opts *options) {
		opts.forced, opts.forcing = s, true
	}
}

// Multiplier computes low and full products of L-limb magnitudes with a
// fixed set of thresholds. It holds no mutable state and may be shared.
type Multiplier[L Limb] struct {
	th       Thresholds
	observer Observer
	forced   Strategy
	forcing  bool
}

// New returns a Multiplier using th. It fails with an
// apperrors.ConfigError when th does not validate.
func New[L Limb](th Thresholds, opts ...Option) (*Multiplier[L], error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Multiplier[L]{th: th, observer: o.observer, forced: o.forced, forcing: o.forcing}, nil
}

// Thresholds returns the cutovers in use.
func (m *Multiplier[L]) Thresholds() Thresholds {
	return m.th
}

// ComputeLowProduct writes the low n limbs of xs·ys into out[:n], where
// n = len(xs) = len(ys) >= 1 and len(out) >= n. out must not overlap the
// operands. Limbs of out beyond n are left untouched. Any violated
// precondition panics with an apperrors.PreconditionError.
func (m *Multiplier[L]) ComputeLowProduct(out, xs, ys []L) {
	m.computeLow("ComputeLowProduct", out, xs, ys, nil)
}

// ComputeLowProductScratch is ComputeLowProduct with caller-owned scratch
// of at least LowProductScratchLength(n) limbs, used when the size falls in
// the divide-and-conquer range. The scratch contents are undefined
// afterwards.
func (m *Multiplier[L]) ComputeLowProductScratch(out, xs, ys, scratch []L) {
	const op = "ComputeLowProductScratch"
	apperrors.Require(len(scratch) >= LowProductScratchLength(len(xs)), op,
		"scratch length %d is below %d", len(scratch), LowProductScratchLength(len(xs)))
	m.computeLow(op, out, xs, ys, scratch)
}

func (m *Multiplier[L]) computeLow(op string, out, xs, ys, scratch []L) {
	n := len(xs)
	apperrors.Require(n >= 1, op, "operand length must be at least 1")
	apperrors.Require(len(ys) == n, op, "operand lengths differ: %d and %d", n, len(ys))
	apperrors.Require(len(out) >= n, op, "output length %d is below %d", len(out), n)
	out = out[:n]
	mustNotOverlap(op, "output and first operand", out, xs)
	mustNotOverlap(op, "output and second operand", out, ys)

	strategy := m.strategy(n)
	if m.observer != nil {
		m.observer.ObserveLowProduct(strategy, n)
	}
	th := &m.th
	switch strategy {
	case StrategyBasecaseFull:
		var buf [2 * MaxBasecaseThreshold]L
		mulBasecase(buf[:2*n], xs, ys)
		copy(out, buf[:n])
	case StrategyBasecase:
		mulLowBasecase(out, xs, ys)
	case StrategyDivideAndConquer:
		if scratch == nil {
			scratch = acquireScratch[L](LowProductScratchLength(n))
			defer releaseScratch(scratch)
		} else {
			mustNotOverlap(op, "scratch and first operand", scratch[:2*n], xs)
			mustNotOverlap(op, "scratch and second operand", scratch[:2*n], ys)
		}
		mulLowDivideAndConquer(out, xs, ys, scratch, th)
	default:
		mulLowLarge(out, xs, ys, th)
	}
}

// strategy picks the top-level strategy for n-limb operands.
func (m *Multiplier[L]) strategy(n int) Strategy {
	if m.forcing {
		switch s := m.forced; {
		case s == StrategyBasecaseFull && n <= MaxBasecaseThreshold,
			s == StrategyBasecase,
			s == StrategyDivideAndConquer && n >= 2,
			s == StrategyLarge:
			return s
		}
	}
	return m.th.LowStrategy(n)
}

// FullProduct writes the exact product of xs and ys into out with the
// Multiplier's thresholds. See the package-level FullProduct.
func (m *Multiplier[L]) FullProduct(out, xs, ys []L) {
	fullProduct(out, xs, ys, &m.th)
}

// LowProductScratchLength returns the scratch, in limbs, that the
// divide-and-conquer low product needs for n-limb operands.
func LowProductScratchLength(n int) int {
	return 2 * n
}

// ComputeLowProduct writes the low n limbs of xs·ys into out using the
// static thresholds for L and no observer.
func ComputeLowProduct[L Limb](out, xs, ys []L) {
	m := Multiplier[L]{th: DefaultThresholds[L]()}
	m.ComputeLowProduct(out, xs, ys)
}
