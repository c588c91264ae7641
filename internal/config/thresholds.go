package config

import (
	"runtime"

	"github.com/agbru/mullo/internal/natmul"
)

// Threshold resolution chain (highest priority first):
//   1. Explicit overrides and command-line flags (-dc-threshold, ...)
//   2. Environment variables (MULLO_DC_THRESHOLD, ...)
//   3. Cached calibration profile (~/.mullo_calibration.json)
//   4. Adaptive hardware estimation (this file)
//   5. Static defaults in natmul/thresholds.go

// ApplyAdaptiveThresholds fills in the cutovers that depend on the host
// rather than on the algorithms. Only the parallel threshold does today:
// the static default is sequential, and it is replaced by an estimate from
// the CPU count.
func ApplyAdaptiveThresholds(th natmul.Thresholds, width int) natmul.Thresholds {
	if th.Parallel == 0 {
		th.Parallel = EstimateOptimalParallelThreshold(width)
	}
	return th
}

// EstimateOptimalParallelThreshold provides a heuristic estimate, in limbs
// of the given width, of the cross-term size from which running both cross
// terms concurrently pays off. It returns 0 (sequential) on a single CPU.
func EstimateOptimalParallelThreshold(width int) int {
	numCPU := runtime.NumCPU()

	var limbs int
	switch {
	case numCPU == 1:
		return 0 // No parallelism
	case numCPU <= 2:
		limbs = 4096 // Goroutine overhead is significant
	case numCPU <= 4:
		limbs = 2048
	case numCPU <= 8:
		limbs = 1024
	case numCPU <= 16:
		limbs = 512
	default:
		limbs = 256
	}

	// Half-width limbs carry half the work each.
	if width == 32 {
		limbs *= 2
	}
	return limbs
}
