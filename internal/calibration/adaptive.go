// This file generates the candidate sizes calibration measures.

package calibration

import (
	"runtime"

	"github.com/agbru/mullo/internal/natmul"
)

// ─────────────────────────────────────────────────────────────────────────────
// Parallel threshold candidates
// ─────────────────────────────────────────────────────────────────────────────

// GenerateParallelThresholds returns the cross-term sizes, in limbs, tried
// as the parallel threshold. Zero (sequential) is always first. More cores
// make finer-grained parallelism worth testing.
func GenerateParallelThresholds() []int {
	numCPU := runtime.NumCPU()

	thresholds := []int{0}

	switch {
	case numCPU == 1:
		return thresholds
	case numCPU <= 4:
		thresholds = append(thresholds, 256, 512, 1024, 2048)
	case numCPU <= 8:
		thresholds = append(thresholds, 128, 256, 512, 1024, 2048, 4096)
	case numCPU <= 16:
		thresholds = append(thresholds, 64, 128, 256, 512, 1024, 2048, 4096)
	default:
		thresholds = append(thresholds, 64, 128, 256, 512, 1024, 2048, 4096, 8192)
	}

	return thresholds
}

// GenerateQuickParallelThresholds is the reduced set used by quick
// calibration.
func GenerateQuickParallelThresholds() []int {
	numCPU := runtime.NumCPU()

	if numCPU == 1 {
		return []int{0}
	}

	switch {
	case numCPU <= 4:
		return []int{0, 1024, 2048}
	case numCPU <= 8:
		return []int{0, 512, 1024, 2048}
	default:
		return []int{0, 256, 512, 1024, 2048}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Crossover candidates
// ─────────────────────────────────────────────────────────────────────────────

// GenerateBasecaseSizes returns the sizes measured for the crossover from the
// fixed-array schoolbook to the dedicated low basecase. All are below
// natmul.MaxBasecaseThreshold.
func GenerateBasecaseSizes(quick bool) []int {
	if quick {
		return []int{2, 4, 8, 16, 32}
	}
	return []int{2, 3, 4, 6, 8, 10, 12, 16, 20, 24, 32, 40, 48, 56, 63}
}

// GenerateDCSizes returns the sizes measured for the crossover from the low
// basecase to divide and conquer.
func GenerateDCSizes(quick bool) []int {
	if quick {
		return []int{16, 32, 64, 128}
	}
	return []int{8, 12, 16, 20, 24, 32, 40, 48, 64, 80, 96, 128, 160, 192}
}

// GenerateLargeSizes returns the sizes measured for the crossover from divide
// and conquer to the truncated full product, up to maxSize.
func GenerateLargeSizes(quick bool, maxSize int) []int {
	step := 2
	if quick {
		step = 4
	}
	var sizes []int
	for n := 512; n <= maxSize; n *= step {
		sizes = append(sizes, n, n+n/2)
	}
	if len(sizes) > 0 && sizes[len(sizes)-1] > maxSize {
		sizes = sizes[:len(sizes)-1]
	}
	return sizes
}

// clampBasecase keeps a calibrated basecase threshold inside the range
// Thresholds.Validate accepts.
func clampBasecase(n int) int {
	return min(max(n, 1), natmul.MaxBasecaseThreshold)
}
