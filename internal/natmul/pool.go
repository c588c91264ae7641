// Scratch pooling for the limb kernels. Buffers of both limb widths share
// one set of pools of 8-byte words, so a 32-bit request simply sees twice
// as many limbs in the same backing array.

package natmul

import (
	"math/bits"
	"sync"
	"unsafe"
)

// scratchPools pools []uint64 backing arrays by size class: powers of 4
// from 64 up to 16M words. Larger requests are allocated directly.
var scratchPools = [...]sync.Pool{
	{New: func() any { return make([]uint64, 64) }},
	{New: func() any { return make([]uint64, 256) }},
	{New: func() any { return make([]uint64, 1024) }},
	{New: func() any { return make([]uint64, 4096) }},
	{New: func() any { return make([]uint64, 16384) }},
	{New: func() any { return make([]uint64, 65536) }},
	{New: func() any { return make([]uint64, 262144) }},
	{New: func() any { return make([]uint64, 1048576) }},  // 8MB
	{New: func() any { return make([]uint64, 4194304) }},  // 32MB
	{New: func() any { return make([]uint64, 16777216) }}, // 128MB
}

var scratchSizes = [...]int{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304, 16777216}

// getScratchPoolIndex returns the size class holding size words, or -1.
func getScratchPoolIndex(size int) int {
	if size <= 0 {
		return 0
	}
	if size > scratchSizes[len(scratchSizes)-1] {
		return -1
	}
	idx := (bits.Len(uint(size-1)) - 5) / 2
	if idx < 0 {
		idx = 0
	}
	return idx
}

// acquireScratch returns an uncleared buffer of exactly n limbs. Every
// kernel writes its scratch before reading it.
//
//	s := acquireScratch[L](n)
//	defer releaseScratch(s)
func acquireScratch[L Limb](n int) []L {
	if n <= 0 {
		return nil
	}
	per := 8 / int(unsafe.Sizeof(L(0)))
	size := (n + per - 1) / per
	var backing []uint64
	if idx := getScratchPoolIndex(size); idx >= 0 {
		backing = scratchPools[idx].Get().([]uint64)
	} else {
		backing = make([]uint64, size)
	}
	s := unsafe.Slice((*L)(unsafe.Pointer(&backing[0])), len(backing)*per)
	return s[:n]
}

// releaseScratch returns a buffer obtained from acquireScratch to its pool.
// Safe to call with nil.
func releaseScratch[L Limb](s []L) {
	if cap(s) == 0 {
		return
	}
	per := 8 / int(unsafe.Sizeof(L(0)))
	s = s[:cap(s)]
	size := len(s) / per
	idx := getScratchPoolIndex(size)
	if idx < 0 || scratchSizes[idx] != size {
		return
	}
	scratchPools[idx].Put(unsafe.Slice((*uint64)(unsafe.Pointer(&s[0])), size))
}
