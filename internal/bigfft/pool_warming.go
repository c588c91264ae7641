// Pool pre-warming sized from an expected product length.

package bigfft

import "sync/atomic"

// MemoryEstimate describes the largest temporaries one FFT product of a
// given size will request.
type MemoryEstimate struct {
	MaxWordSliceSize int // transform backing arrays, (n+1)<<k words
	MaxFermatSize    int // single residues, n+1 words
}

// EstimateMemoryNeeds returns the temporary sizes used when multiplying two
// operands whose word lengths add up to productWords.
func EstimateMemoryNeeds(productWords int) MemoryEstimate {
	if productWords <= 0 {
		return MemoryEstimate{}
	}
	k, m := fftParams(productWords)
	n := valueSize(k, m, 2)
	return MemoryEstimate{
		MaxWordSliceSize: (n + 1) << k,
		MaxFermatSize:    n + 1,
	}
}

// PreWarmPools puts a few buffers of the size classes a product of
// productWords words will need into the pools.
//
// Parameters:
//   - productWords: len(x)+len(y) of the expected FFT products.
func PreWarmPools(productWords int) {
	est := EstimateMemoryNeeds(productWords)
	numBuffers := 3 // two transform arrays plus the input copy
	if productWords >= 1<<20 {
		numBuffers = 4
	}

	if idx := getWordSlicePoolIndex(est.MaxWordSliceSize); idx >= 0 && est.MaxWordSliceSize > 0 {
		for i := 0; i < numBuffers; i++ {
			wordSlicePools[idx].Put(make([]Word, wordSliceSizes[idx]))
		}
	}
	if idx := getFermatPoolIndex(est.MaxFermatSize); idx >= 0 && est.MaxFermatSize > 0 {
		for i := 0; i < 2; i++ {
			fermatPools[idx].Put(make(fermat, fermatSizes[idx]))
		}
	}
}

var poolsWarmed atomic.Bool

// EnsurePoolsWarmed pre-warms the pools once per process. It is safe to call
// concurrently; only the first call does any work.
func EnsurePoolsWarmed(productWords int) {
	if poolsWarmed.CompareAndSwap(false, true) {
		PreWarmPools(productWords)
	}
}
