package natmul

import (
	"fmt"

	apperrors "github.com/agbru/mullo/internal/errors"
)

// MaxBasecaseThreshold bounds Thresholds.Basecase. Products below the
// basecase threshold are formed in a fixed array of 2*MaxBasecaseThreshold
// limbs, so no scratch is allocated for them.
const MaxBasecaseThreshold = 64

// Thresholds are the operand-size cutovers, in limbs, of the low-half and
// full-product dispatchers. They change performance only: any assignment
// that passes Validate yields identical products.
type Thresholds struct {
	// Basecase: below it, the low half is cut from a general schoolbook product.
	Basecase int
	// DC: from Basecase up to DC, the dedicated low-half basecase is used.
	DC int
	// Large: from DC up to Large, divide and conquer; at and above, the
	// full product is computed and truncated.
	Large int
	// Toom22: balanced full products of at least this size use Karatsuba.
	Toom22 int
	// FFT: balanced full products of at least this size use the FFT.
	FFT int
	// Parallel: divide-and-conquer steps whose cross terms have at least
	// this many limbs compute them concurrently. Zero disables it.
	Parallel int
}

// Static defaults, per limb width.
var (
	defaultThresholds64 = Thresholds{
		Basecase: 8,
		DC:       32,
		Large:    4096,
		Toom22:   24,
		FFT:      1800,
		Parallel: 0,
	}
	defaultThresholds32 = Thresholds{
		Basecase: 12,
		DC:       48,
		Large:    8192,
		Toom22:   40,
		FFT:      3600,
		Parallel: 0,
	}
)

// DefaultThresholds returns the static cutovers for limbs of type L.
func DefaultThresholds[L Limb]() Thresholds {
	return DefaultThresholdsForWidth(LimbBits[L]())
}

// DefaultThresholdsForWidth returns the static cutovers for a limb width
// of 32 or 64 bits. Other widths get the 64-bit table.
func DefaultThresholdsForWidth(width int) Thresholds {
	if width == 32 {
		return defaultThresholds32
	}
	return defaultThresholds64
}

// Validate checks the ordering the dispatchers depend on.
func (th Thresholds) Validate() error {
	switch {
	case th.Basecase < 1:
		return apperrors.NewConfigError("basecase threshold %d must be at least 1", th.Basecase)
	case th.Basecase > MaxBasecaseThreshold:
		return apperrors.NewConfigError("basecase threshold %d exceeds the maximum of %d", th.Basecase, MaxBasecaseThreshold)
	case th.DC < th.Basecase:
		return apperrors.NewConfigError("dc threshold %d is below the basecase threshold %d", th.DC, th.Basecase)
	case th.Large < th.DC:
		return apperrors.NewConfigError("large threshold %d is below the dc threshold %d", th.Large, th.DC)
	case th.Toom22 < 2:
		return apperrors.NewConfigError("toom22 threshold %d must be at least 2", th.Toom22)
	case th.FFT < th.Toom22:
		return apperrors.NewConfigError("fft threshold %d is below the toom22 threshold %d", th.FFT, th.Toom22)
	case th.Parallel < 0:
		return apperrors.NewConfigError("parallel threshold %d must not be negative", th.Parallel)
	}
	return nil
}

// String renders the thresholds compactly for logs.
func (th Thresholds) String() string {
	return fmt.Sprintf("basecase=%d dc=%d large=%d toom22=%d fft=%d parallel=%d",
		th.Basecase, th.DC, th.Large, th.Toom22, th.FFT, th.Parallel)
}

// Strategy identifies the algorithm the low-half dispatcher selected.
type Strategy int

const (
	// StrategyBasecaseFull cuts the low half from a general schoolbook product.
	StrategyBasecaseFull Strategy = iota
	// StrategyBasecase runs the dedicated low-half schoolbook.
	StrategyBasecase
	// StrategyDivideAndConquer splits the operands asymmetrically.
	StrategyDivideAndConquer
	// StrategyLarge truncates an asymptotically fast full product.
	StrategyLarge
)

func (s Strategy) String() string {
	switch s {
	case StrategyBasecaseFull:
		return "basecase_full"
	case StrategyBasecase:
		return "basecase"
	case StrategyDivideAndConquer:
		return "divide_and_conquer"
	case StrategyLarge:
		return "large"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// LowStrategy is the pure selection function of the low-half dispatcher.
// n must be at least 1.
func (th Thresholds) LowStrategy(n int) Strategy {
	switch {
	case n < th.Basecase:
		return StrategyBasecaseFull
	case n < th.DC || n < 2:
		return StrategyBasecase
	case n < th.Large:
		return StrategyDivideAndConquer
	default:
		return StrategyLarge
	}
}
