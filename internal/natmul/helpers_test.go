package natmul

import (
	"math/big"
	"testing"

	apperrors "github.com/agbru/mullo/internal/errors"
)

// splitMix64 is the deterministic generator shared with cmd/generate-golden.
type splitMix64 struct{ state uint64 }

func (s *splitMix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// randLimbs returns n pseudo-random limbs. Every eighth limb is forced to
// all ones or zero so that carry chains get exercised.
func randLimbs[L Limb](rng *splitMix64, n int) []L {
	x := make([]L, n)
	for i := range x {
		v := rng.next()
		switch v % 8 {
		case 0:
			x[i] = ^L(0)
		case 1:
			x[i] = 0
		default:
			x[i] = L(v >> 3)
		}
	}
	return x
}

// onesLimbs returns n limbs of all ones, the worst case for carries.
func onesLimbs[L Limb](n int) []L {
	x := make([]L, n)
	for i := range x {
		x[i] = ^L(0)
	}
	return x
}

// toBig converts little-endian limbs to a big.Int.
func toBig[L Limb](x []L) *big.Int {
	lb := LimbBits[L]() / 8
	buf := make([]byte, len(x)*lb)
	for i, v := range x {
		off := len(buf) - (i+1)*lb
		for j := 0; j < lb; j++ {
			buf[off+lb-1-j] = byte(uint64(v) >> (8 * j))
		}
	}
	return new(big.Int).SetBytes(buf)
}

// fromBig returns the low n limbs of v, v >= 0.
func fromBig[L Limb](v *big.Int, n int) []L {
	lb := LimbBits[L]() / 8
	mod := new(big.Int).Lsh(big.NewInt(1), uint(n*lb*8))
	buf := new(big.Int).Mod(v, mod).FillBytes(make([]byte, n*lb))
	z := make([]L, n)
	for i := range z {
		off := len(buf) - (i+1)*lb
		var w uint64
		for j := 0; j < lb; j++ {
			w |= uint64(buf[off+lb-1-j]) << (8 * j)
		}
		z[i] = L(w)
	}
	return z
}

// lowRef computes the expected low product with math/big.
func lowRef[L Limb](x, y []L) []L {
	return fromBig[L](new(big.Int).Mul(toBig(x), toBig(y)), len(x))
}

// fullRef computes the expected full product with math/big.
func fullRef[L Limb](x, y []L) []L {
	return fromBig[L](new(big.Int).Mul(toBig(x), toBig(y)), len(x)+len(y))
}

func equalLimbs[L Limb](a, b []L) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// firstDiff returns the index of the first differing limb, or -1.
func firstDiff[L Limb](a, b []L) int {
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	return -1
}

// expectPrecondition runs fn and fails unless it panics with a
// PreconditionError for op.
func expectPrecondition(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("%s: expected a precondition panic", op)
		}
		pe, ok := apperrors.AsPrecondition(r)
		if !ok {
			t.Fatalf("%s: panic value %T (%v) is not a PreconditionError", op, r, r)
		}
		if pe.Op != op {
			t.Errorf("PreconditionError.Op = %q, want %q", pe.Op, op)
		}
	}()
	fn()
}

// forcedThresholds returns thresholds that route every size >= 2 to the
// given strategy.
func forcedThresholds(s Strategy) Thresholds {
	th := DefaultThresholds[uint64]()
	switch s {
	case StrategyBasecaseFull:
		th.Basecase, th.DC, th.Large = MaxBasecaseThreshold, MaxBasecaseThreshold, MaxBasecaseThreshold
	case StrategyBasecase:
		th.Basecase, th.DC, th.Large = 1, 1 << 30, 1 << 30
	case StrategyDivideAndConquer:
		th.Basecase, th.DC, th.Large = 1, 1, 1 << 30
	case StrategyLarge:
		th.Basecase, th.DC, th.Large = 1, 1, 1
	}
	return th
}
