// CPU feature detection used to key tuned thresholds to a target.

package bigfft

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// SIMDLevel is the widest vector extension reported by the processor.
type SIMDLevel int

const (
	SIMDNone SIMDLevel = iota
	SIMDAVX2
	SIMDAVX512
	SIMDASIMD
)

// String returns the conventional name of the level.
func (l SIMDLevel) String() string {
	switch l {
	case SIMDNone:
		return "none"
	case SIMDAVX2:
		return "avx2"
	case SIMDAVX512:
		return "avx512"
	case SIMDASIMD:
		return "asimd"
	default:
		return fmt.Sprintf("SIMDLevel(%d)", int(l))
	}
}

// CPUFeatures summarizes the instruction set extensions that change the
// speed of the math/big vector kernels (and therefore the best cutovers).
type CPUFeatures struct {
	Arch   string
	BMI2   bool // MULX
	ADX    bool // ADCX/ADOX carry chains
	AVX2   bool
	AVX512 bool
	ASIMD  bool
	SIMD   SIMDLevel
}

// GetCPUFeatures reads the feature flags of the running processor.
func GetCPUFeatures() CPUFeatures {
	f := CPUFeatures{
		Arch:   runtime.GOARCH,
		BMI2:   cpu.X86.HasBMI2,
		ADX:    cpu.X86.HasADX,
		AVX2:   cpu.X86.HasAVX2,
		AVX512: cpu.X86.HasAVX512F,
		ASIMD:  cpu.ARM64.HasASIMD,
	}
	switch {
	case f.AVX512:
		f.SIMD = SIMDAVX512
	case f.AVX2:
		f.SIMD = SIMDAVX2
	case f.ASIMD:
		f.SIMD = SIMDASIMD
	}
	return f
}

// String renders the features as a stable, comma separated list that is
// suitable as a profile key.
func (f CPUFeatures) String() string {
	parts := []string{f.Arch}
	if f.BMI2 {
		parts = append(parts, "bmi2")
	}
	if f.ADX {
		parts = append(parts, "adx")
	}
	parts = append(parts, "simd="+f.SIMD.String())
	return strings.Join(parts, ",")
}
