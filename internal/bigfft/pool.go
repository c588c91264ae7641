// This file provides memory pooling for FFT temporaries to reduce GC pressure.

package bigfft

import (
	"math/bits"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Word Slice Pools
// ─────────────────────────────────────────────────────────────────────────────

// wordSlicePools pools []Word slices by size class: powers of 4 from 64 up to
// 16M words. Larger requests are allocated directly.
var wordSlicePools = [...]sync.Pool{
	{New: func() any { return make([]Word, 64) }},
	{New: func() any { return make([]Word, 256) }},
	{New: func() any { return make([]Word, 1024) }},
	{New: func() any { return make([]Word, 4096) }},
	{New: func() any { return make([]Word, 16384) }},
	{New: func() any { return make([]Word, 65536) }},
	{New: func() any { return make([]Word, 262144) }},
	{New: func() any { return make([]Word, 1048576) }},  // 1M words = 8MB on 64-bit
	{New: func() any { return make([]Word, 4194304) }},  // 4M words = 32MB on 64-bit
	{New: func() any { return make([]Word, 16777216) }}, // 16M words = 128MB on 64-bit
}

// wordSliceSizes defines the size classes for word slice pools.
var wordSliceSizes = [...]int{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304, 16777216}

// getWordSlicePoolIndex returns the pool index for a given size, or -1 if
// the size is too large for pooling.
//
// Size class i holds 4^(i+3) words, so the index follows from bits.Len.
func getWordSlicePoolIndex(size int) int {
	if size <= 0 {
		return 0
	}
	if size > wordSliceSizes[len(wordSliceSizes)-1] {
		return -1
	}
	idx := (bits.Len(uint(size-1)) - 5) / 2
	if idx < 0 {
		idx = 0
	}
	return idx
}

// acquireWordSlice gets a zeroed word slice of exactly the given length.
//
// The slice should be released with releaseWordSlice, preferably with defer:
//
//	slice := acquireWordSlice(size)
//	defer releaseWordSlice(slice)
func acquireWordSlice(size int) []Word {
	idx := getWordSlicePoolIndex(size)
	if idx < 0 {
		return make([]Word, size)
	}
	slice := wordSlicePools[idx].Get().([]Word)
	clear(slice)
	return slice[:size]
}

// acquireWordSliceUnsafe returns a word slice without clearing it. Use it
// only when every element is written before it is read.
func acquireWordSliceUnsafe(size int) []Word {
	idx := getWordSlicePoolIndex(size)
	if idx < 0 {
		return make([]Word, size)
	}
	slice := wordSlicePools[idx].Get().([]Word)
	return slice[:size]
}

// releaseWordSlice returns a word slice to its pool. Slices whose capacity
// is not a size class were allocated directly and are left to the GC.
//
// Parameters:
//   - slice: The slice to return to the pool. Safe to call with nil.
func releaseWordSlice(slice []Word) {
	if slice == nil {
		return
	}
	c := cap(slice)
	idx := getWordSlicePoolIndex(c)
	if idx >= 0 && wordSliceSizes[idx] == c {
		wordSlicePools[idx].Put(slice[:c])
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Fermat Pools
// ─────────────────────────────────────────────────────────────────────────────

// fermatPools pools single residues (n+1 words) by size class.
var fermatPools = [...]sync.Pool{
	{New: func() any { return make(fermat, 32) }},
	{New: func() any { return make(fermat, 128) }},
	{New: func() any { return make(fermat, 512) }},
	{New: func() any { return make(fermat, 2048) }},
	{New: func() any { return make(fermat, 8192) }},
	{New: func() any { return make(fermat, 32768) }},
	{New: func() any { return make(fermat, 131072) }},  // 128K
	{New: func() any { return make(fermat, 524288) }},  // 512K
	{New: func() any { return make(fermat, 2097152) }}, // 2M
}

// fermatSizes defines the size classes for fermat pools.
var fermatSizes = [...]int{32, 128, 512, 2048, 8192, 32768, 131072, 524288, 2097152}

// getFermatPoolIndex returns the pool index for a given size, or -1 if the
// size is too large for pooling. Sizes are 2*4^(i+2).
func getFermatPoolIndex(size int) int {
	if size <= 0 {
		return 0
	}
	if size > fermatSizes[len(fermatSizes)-1] {
		return -1
	}
	idx := (bits.Len(uint(size-1)) - 4) / 2
	if idx < 0 {
		idx = 0
	}
	return idx
}

// acquireFermat gets a zeroed fermat of exactly the given length.
//
//	f := acquireFermat(size)
//	defer releaseFermat(f)
func acquireFermat(size int) fermat {
	idx := getFermatPoolIndex(size)
	if idx < 0 {
		return make(fermat, size)
	}
	f := fermatPools[idx].Get().(fermat)
	clear(f)
	return f[:size]
}

// releaseFermat returns a fermat to its pool. Safe to call with nil.
func releaseFermat(f fermat) {
	if f == nil {
		return
	}
	c := cap(f)
	idx := getFermatPoolIndex(c)
	if idx >= 0 && fermatSizes[idx] == c {
		fermatPools[idx].Put(f[:c])
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// FFT State Pool
// ─────────────────────────────────────────────────────────────────────────────

// fftState holds the butterfly temporaries of one transform.
type fftState struct {
	tmp  fermat
	tmp2 fermat
	n    int
	k    uint
}

var fftStatePool = sync.Pool{
	New: func() any {
		return &fftState{}
	},
}

// acquireFFTState gets an fftState sized for residues of n+1 words.
//
//	state := acquireFFTState(n, k)
//	defer releaseFFTState(state)
func acquireFFTState(n int, k uint) *fftState {
	state := fftStatePool.Get().(*fftState)

	size := n + 1
	if cap(state.tmp) < size {
		state.tmp = acquireFermat(size)
	} else {
		state.tmp = state.tmp[:size]
		clear(state.tmp)
	}
	if cap(state.tmp2) < size {
		state.tmp2 = acquireFermat(size)
	} else {
		state.tmp2 = state.tmp2[:size]
		clear(state.tmp2)
	}

	state.n = n
	state.k = k
	return state
}

// releaseFFTState returns an fftState, with its buffers, to the pool.
// Safe to call with nil.
func releaseFFTState(state *fftState) {
	if state == nil {
		return
	}
	fftStatePool.Put(state)
}
