package natmul

import (
	"math/big"
	"math/bits"
	"unsafe"

	"github.com/agbru/mullo/internal/bigfft"
)

// Limb is a fixed-width unsigned machine word. Every kernel in this package
// is generic over it so that 32-bit and 64-bit targets share one code path
// and can be tested side by side on any host.
type Limb interface {
	~uint32 | ~uint64
}

// LimbBits returns the width W of L in bits, 32 or 64.
func LimbBits[L Limb]() int {
	var zero L
	return int(unsafe.Sizeof(zero)) * 8
}

// wordSized reports whether L has the layout of big.Word, in which case the
// vector primitives run on the math/big assembly kernels.
func wordSized[L Limb]() bool {
	return LimbBits[L]() == bits.UintSize
}

// words reinterprets x as a []big.Word. Only valid when wordSized[L]().
func words[L Limb](x []L) []big.Word {
	if len(x) == 0 {
		return nil
	}
	return unsafe.Slice((*big.Word)(unsafe.Pointer(&x[0])), len(x))
}

// ─────────────────────────────────────────────────────────────────────────────
// Single-limb primitives
// ─────────────────────────────────────────────────────────────────────────────

// mulWW returns the double-width product x*y as (hi, lo).
func mulWW[L Limb](x, y L) (hi, lo L) {
	if LimbBits[L]() == 32 {
		h, l := bits.Mul32(uint32(x), uint32(y))
		return L(h), L(l)
	}
	h, l := bits.Mul64(uint64(x), uint64(y))
	return L(h), L(l)
}

// addWW returns x + y + c and the carry out. c must be 0 or 1.
func addWW[L Limb](x, y, c L) (sum, carry L) {
	if LimbBits[L]() == 32 {
		s, k := bits.Add32(uint32(x), uint32(y), uint32(c))
		return L(s), L(k)
	}
	s, k := bits.Add64(uint64(x), uint64(y), uint64(c))
	return L(s), L(k)
}

// subWW returns x - y - b and the borrow out. b must be 0 or 1.
func subWW[L Limb](x, y, b L) (diff, borrow L) {
	if LimbBits[L]() == 32 {
		d, k := bits.Sub32(uint32(x), uint32(y), uint32(b))
		return L(d), L(k)
	}
	d, k := bits.Sub64(uint64(x), uint64(y), uint64(b))
	return L(d), L(k)
}

// ─────────────────────────────────────────────────────────────────────────────
// Vector primitives
//
// x and y are at least as long as z. z may alias x or y only when both
// start at the same element.
// ─────────────────────────────────────────────────────────────────────────────

// addVV sets z = x + y and returns the carry.
func addVV[L Limb](z, x, y []L) (c L) {
	if wordSized[L]() {
		return L(bigfft.AddVV(words(z), words(x), words(y)))
	}
	for i := range z {
		z[i], c = addWW(x[i], y[i], c)
	}
	return c
}

// subVV sets z = x - y and returns the borrow.
func subVV[L Limb](z, x, y []L) (b L) {
	if wordSized[L]() {
		return L(bigfft.SubVV(words(z), words(x), words(y)))
	}
	for i := range z {
		z[i], b = subWW(x[i], y[i], b)
	}
	return b
}

// addVW sets z = x + y and returns the carry. An empty z returns y.
func addVW[L Limb](z, x []L, y L) (c L) {
	if wordSized[L]() {
		return L(bigfft.AddVW(words(z), words(x), big.Word(y)))
	}
	c = y
	for i := range z {
		if c == 0 {
			if &z[0] != &x[0] {
				copy(z[i:], x[i:len(z)])
			}
			return 0
		}
		z[i], c = addWW(x[i], c, 0)
	}
	return c
}

// subVW sets z = x - y and returns the borrow. An empty z returns y.
func subVW[L Limb](z, x []L, y L) (b L) {
	if wordSized[L]() {
		return L(bigfft.SubVW(words(z), words(x), big.Word(y)))
	}
	b = y
	for i := range z {
		if b == 0 {
			if &z[0] != &x[0] {
				copy(z[i:], x[i:len(z)])
			}
			return 0
		}
		z[i], b = subWW(x[i], b, 0)
	}
	return b
}

// mulVW sets z = x*y and returns the high limb (mpn_mul_1).
func mulVW[L Limb](z, x []L, y L) (c L) {
	if wordSized[L]() {
		return L(bigfft.MulAddVWW(words(z), words(x), big.Word(y), 0))
	}
	for i := range z {
		hi, lo := mulWW(x[i], y)
		var k L
		z[i], k = addWW(lo, c, 0)
		c = hi + k
	}
	return c
}

// addMulVW sets z += x*y and returns the high limb (mpn_addmul_1).
func addMulVW[L Limb](z, x []L, y L) (c L) {
	if wordSized[L]() {
		return L(bigfft.AddMulVVW(words(z), words(x), big.Word(y)))
	}
	for i := range z {
		hi, lo := mulWW(x[i], y)
		var k1, k2 L
		lo, k1 = addWW(lo, c, 0)
		z[i], k2 = addWW(z[i], lo, 0)
		c = hi + k1 + k2
	}
	return c
}

// cmpVV compares x and y of equal length as numbers.
func cmpVV[L Limb](x, y []L) int {
	for i := len(x) - 1; i >= 0; i-- {
		switch {
		case x[i] < y[i]:
			return -1
		case x[i] > y[i]:
			return 1
		}
	}
	return 0
}

