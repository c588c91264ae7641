package natmul

import (
	"math/big"
	"math/bits"

	"github.com/agbru/mullo/internal/bigfft"
	apperrors "github.com/agbru/mullo/internal/errors"
)

// mulFFT writes the exact product of x and y into z[:len(x)+len(y)] using
// the Schönhage–Strassen multiplier. Limbs narrower or wider than big.Word
// are repacked on the way in and out.
func mulFFT[L Limb](z, x, y []L) {
	p, err := bigfft.MulWords(packWords(x), packWords(y))
	if err != nil {
		panic(apperrors.WrapError(err, "natmul: fft product of %d×%d limbs", len(x), len(y)))
	}
	unpackWords(z[:len(x)+len(y)], p)
}

// packWords returns x as a little-endian []big.Word. When L is word sized
// the result aliases x.
func packWords[L Limb](x []L) []big.Word {
	lb, wb := LimbBits[L](), bits.UintSize
	switch {
	case lb == wb:
		return words(x)
	case lb < wb:
		per := wb / lb
		w := make([]big.Word, (len(x)+per-1)/per)
		for i, v := range x {
			w[i/per] |= big.Word(v) << (uint(i%per) * uint(lb))
		}
		return w
	default:
		per := lb / wb
		w := make([]big.Word, len(x)*per)
		for i, v := range x {
			for j := 0; j < per; j++ {
				w[i*per+j] = big.Word(uint64(v) >> (uint(j) * uint(wb)))
			}
		}
		return w
	}
}

// unpackWords fills z from the little-endian words w, zero-extending.
func unpackWords[L Limb](z []L, w []big.Word) {
	lb, wb := LimbBits[L](), bits.UintSize
	switch {
	case lb == wb:
		n := copy(words(z), w)
		clear(z[n:])
	case lb < wb:
		per := wb / lb
		for i := range z {
			if q := i / per; q < len(w) {
				z[i] = L(w[q] >> (uint(i%per) * uint(lb)))
			} else {
				z[i] = 0
			}
		}
	default:
		per := lb / wb
		for i := range z {
			var v uint64
			for j := 0; j < per; j++ {
				if q := i*per + j; q < len(w) {
					v |= uint64(w[q]) << (uint(j) * uint(wb))
				}
			}
			z[i] = L(v)
		}
	}
}
