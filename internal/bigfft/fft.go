// Package bigfft multiplies large naturals with a Schönhage–Strassen FFT
// over the ring Z/(2^N+1).
//
// The entry point works on raw little-endian word vectors so that limb
// kernels can hand their operands over without building big.Int values.
package bigfft

import (
	"fmt"
	"math/big"
	"runtime/debug"
	"unsafe"
)

const _W = int(unsafe.Sizeof(Word(0)) * 8)

type nat []Word

func (n nat) String() string {
	v := new(big.Int)
	v.SetBits(n)
	return v.String()
}

// MulWords returns the product of the little-endian word vectors x and y,
// trimmed of leading zero words (the product of zero is nil). Neither
// input is modified. Internal panics are recovered and reported as errors.
func MulWords(x, y []Word) (res []Word, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in bigfft.MulWords: %v\nStack: %s", r, debug.Stack())
		}
	}()
	if len(x) == 0 || len(y) == 0 {
		return nil, nil
	}
	return fftmul(x, y), nil
}

func fftmul(x, y nat) nat {
	k, m := fftSize(x, y)
	xp := polyFromNat(x, k, m)
	yp := polyFromNat(y, k, m)
	rp := xp.Mul(&yp)
	return rp.Int()
}

// mulNat computes x*y with math/big, reusing z's storage when it is large
// enough.
func mulNat(z, x, y nat) nat {
	var xi, yi, zi big.Int
	xi.SetBits(x)
	yi.SetBits(y)
	zi.SetBits(z)
	return zi.Mul(&xi, &yi).Bits()
}

// fftSizeThreshold[i] is the largest product size, in bits, for which an
// FFT of length 1<<i is used. A length of K is adequate when K is about
// 2*sqrt(N) for an N-bit product.
var fftSizeThreshold = [...]int64{0, 0, 0,
	4 << 10, 8 << 10, 16 << 10, // 5
	32 << 10, 64 << 10, 1 << 18, 1 << 20, 3 << 20, // 10
	8 << 20, 30 << 20, 100 << 20, 300 << 20, 600 << 20,
}

// fftSize returns the FFT length exponent k and the chunk size m in words,
// chosen so that m<<k exceeds the word length of x*y.
func fftSize(x, y nat) (k uint, m int) {
	return fftParams(len(x) + len(y))
}

func fftParams(words int) (k uint, m int) {
	bits := int64(words) * int64(_W)
	k = uint(len(fftSizeThreshold))
	for i := range fftSizeThreshold {
		if fftSizeThreshold[i] > bits {
			k = uint(i)
			break
		}
	}
	m = words>>k + 1
	return
}

// valueSize returns the coefficient length in words needed to hold the
// coefficients of P*Q exactly, where deg(P*Q) < 1<<k and the coefficients
// of P and Q are below 2^(m*_W). The bit length is rounded to a multiple
// of 1<<(k-extra).
func valueSize(k uint, m int, extra uint) int {
	// Coefficients of P*Q are below 2^(2*m*_W) * K.
	n := 2*m*_W + int(k)
	K := 1 << (k - extra)
	if K < _W {
		K = _W
	}
	n = ((n / K) + 1) * K
	return n / _W
}
