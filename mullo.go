package mullo

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agbru/mullo/internal/calibration"
	"github.com/agbru/mullo/internal/config"
	apperrors "github.com/agbru/mullo/internal/errors"
	"github.com/agbru/mullo/internal/logging"
	"github.com/agbru/mullo/internal/metrics"
	"github.com/agbru/mullo/internal/natmul"
)

// Limb is the type set of machine words a magnitude is made of.
type Limb = natmul.Limb

// Thresholds are the operand-size cutovers of the dispatchers, in limbs.
type Thresholds = natmul.Thresholds

// Strategy identifies the algorithm chosen for a low product.
type Strategy = natmul.Strategy

// Observer is notified of each top-level dispatch decision.
type Observer = natmul.Observer

// Option configures a Multiplier.
type Option = natmul.Option

// Multiplier computes products with a fixed set of thresholds.
type Multiplier[L Limb] = natmul.Multiplier[L]

// Dispatch strategies, as reported to an Observer.
const (
	StrategyBasecaseFull     = natmul.StrategyBasecaseFull
	StrategyBasecase         = natmul.StrategyBasecase
	StrategyDivideAndConquer = natmul.StrategyDivideAndConquer
	StrategyLarge            = natmul.StrategyLarge
)

// MaxBasecaseThreshold bounds Thresholds.Basecase.
const MaxBasecaseThreshold = natmul.MaxBasecaseThreshold

// ComputeLowProduct writes (xs·ys) mod B^n into out[:n], n = len(xs) =
// len(ys), using the static default thresholds for L. Violated
// preconditions panic.
func ComputeLowProduct[L Limb](out, xs, ys []L) {
	natmul.ComputeLowProduct(out, xs, ys)
}

// FullProduct writes xs·ys into out[:len(xs)+len(ys)], requiring
// len(xs) >= len(ys) >= 1.
func FullProduct[L Limb](out, xs, ys []L) {
	natmul.FullProduct(out, xs, ys)
}

// LowProductScratchLength is the scratch needed by a low product of n limbs.
func LowProductScratchLength(n int) int {
	return natmul.LowProductScratchLength(n)
}

// DefaultThresholds returns the static cutovers for L.
func DefaultThresholds[L Limb]() Thresholds {
	return natmul.DefaultThresholds[L]()
}

// New returns a Multiplier with explicit thresholds.
func New[L Limb](th Thresholds, opts ...Option) (*Multiplier[L], error) {
	return natmul.New[L](th, opts...)
}

// WithObserver installs an Observer on a Multiplier.
func WithObserver(o Observer) Option {
	return natmul.WithObserver(o)
}

// Config selects how Configure resolves thresholds. The zero value reads
// the environment and the default calibration profile.
type Config struct {
	// Overrides sets thresholds by name: basecase, dc, large, toom22, fft,
	// parallel. They take precedence over every other source.
	Overrides map[string]int
	// ProfilePath overrides the calibration profile location.
	ProfilePath string
	// SkipProfile ignores any calibration profile.
	SkipProfile bool
	// MaxProfileAge, when positive, ignores older profiles.
	MaxProfileAge time.Duration
	// Logger receives the resolution trace; nil discards it.
	Logger *zerolog.Logger
	// Registerer, when set, receives a dispatch collector counting calls
	// per strategy.
	Registerer prometheus.Registerer
	// Observer is notified alongside the collector.
	Observer Observer
}

// Configure builds a Multiplier whose thresholds come from cfg.Overrides,
// the MULLO_* environment variables, a calibration profile for this host
// and hardware heuristics, in that order of precedence.
func Configure[L Limb](cfg Config) (*Multiplier[L], error) {
	width := natmul.LimbBits[L]()
	r, err := config.Resolve(config.Options{
		Width:         width,
		Overrides:     cfg.Overrides,
		ProfilePath:   cfg.ProfilePath,
		SkipProfile:   cfg.SkipProfile,
		MaxProfileAge: cfg.MaxProfileAge,
		Logger:        loggerFor(cfg.Logger, "config"),
	})
	if err != nil {
		return nil, err
	}

	var observers multiObserver
	if cfg.Observer != nil {
		observers = append(observers, cfg.Observer)
	}
	if cfg.Registerer != nil {
		c, err := metrics.NewDispatchCollector(cfg.Registerer, width)
		if err != nil {
			return nil, err
		}
		observers = append(observers, c)
	}

	var opts []Option
	switch len(observers) {
	case 0:
	case 1:
		opts = append(opts, natmul.WithObserver(observers[0]))
	default:
		opts = append(opts, natmul.WithObserver(observers))
	}
	return natmul.New[L](r.Thresholds, opts...)
}

// CalibrateConfig controls Calibrate.
type CalibrateConfig struct {
	// ProfilePath is where the profile is written; empty selects
	// ~/.mullo_calibration.json.
	ProfilePath string
	// Quick tries fewer candidate sizes.
	Quick bool
	// MaxSize bounds the sizes tried for the large threshold.
	MaxSize int
	// Widths restricts calibration to some limb widths; entries for other
	// widths already in a matching profile are kept.
	Widths []int
	// Timeout bounds the whole run; zero means no limit.
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Calibrate measures the crossovers on this host and saves them as the
// profile Configure reads. It returns the thresholds recorded for each
// width in the saved profile. When Timeout expires the error is an
// apperrors.TimeoutError.
func Calibrate(ctx context.Context, cfg CalibrateConfig) (map[int]Thresholds, error) {
	logger := loggerFor(cfg.Logger, "calibration")
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	profile, err := calibration.Calibrate(ctx, calibration.Options{
		Widths:  cfg.Widths,
		Quick:   cfg.Quick,
		MaxSize: cfg.MaxSize,
		Logger:  logger,
	})
	if apperrors.IsContextError(err) {
		if errors.Is(err, context.DeadlineExceeded) && cfg.Timeout > 0 {
			err = apperrors.TimeoutError{Operation: "calibration", Limit: cfg.Timeout}
		}
		logger.Info("calibration interrupted, profile left unchanged", logging.Err(err))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	path := cfg.ProfilePath
	if path == "" {
		path = calibration.GetDefaultProfilePath()
	}
	if previous, ok := calibration.LoadOrCreateProfile(path); ok {
		for width, th := range previous.Widths {
			if _, recalibrated := profile.Widths[width]; !recalibrated {
				profile.Widths[width] = th
			}
		}
	}
	if err := profile.SaveProfile(path); err != nil {
		return nil, err
	}
	logger.Info("calibration profile saved", logging.String("path", path))

	out := make(map[int]Thresholds, len(profile.Widths))
	for width := range profile.Widths {
		out[width], _ = profile.Thresholds(width)
	}
	return out, nil
}

// multiObserver fans a notification out to several observers.
type multiObserver []Observer

func (m multiObserver) ObserveLowProduct(s Strategy, n int) {
	for _, o := range m {
		o.ObserveLowProduct(s, n)
	}
}

func loggerFor(l *zerolog.Logger, component string) logging.Logger {
	if l == nil {
		return logging.NewNopLogger()
	}
	return logging.NewZerologAdapter(l.With().Str("component", component).Logger())
}
