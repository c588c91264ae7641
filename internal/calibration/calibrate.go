package calibration

import (
	"context"
	"math"
	"math/bits"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/mullo/internal/bigfft"
	apperrors "github.com/agbru/mullo/internal/errors"
	"github.com/agbru/mullo/internal/format"
	"github.com/agbru/mullo/internal/logging"
	"github.com/agbru/mullo/internal/metrics"
	"github.com/agbru/mullo/internal/natmul"
	"github.com/agbru/mullo/internal/sysmon"
)

const tracerName = "github.com/agbru/mullo/internal/calibration"

// Options controls a calibration run.
type Options struct {
	// Widths lists the limb widths to calibrate. Defaults to 32 and 64.
	Widths []int
	// MaxSize bounds the operand sizes tried for the large threshold.
	MaxSize int
	// Repetitions is the number of timed runs per measurement; the fastest
	// counts.
	Repetitions int
	// Quick uses reduced candidate sets.
	Quick bool
	// Logger receives progress; nil discards it.
	Logger logging.Logger
	// Memory is read after every measurement, outside the timed runs, for
	// the profile's heap figure and the per-series span attributes; nil
	// creates one.
	Memory *metrics.MemoryCollector
	// LoadInterval is how long the host CPU load is sampled before timing
	// starts. Defaults to 200ms.
	LoadInterval time.Duration
}

func (o Options) withDefaults() Options {
	if len(o.Widths) == 0 {
		o.Widths = []int{32, 64}
	}
	if o.MaxSize <= 0 {
		o.MaxSize = 16384
	}
	if o.Repetitions <= 0 {
		o.Repetitions = 3
	}
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	if o.Memory == nil {
		o.Memory = metrics.NewMemoryCollector()
	}
	if o.LoadInterval <= 0 {
		o.LoadInterval = 200 * time.Millisecond
	}
	return o
}

// calibrator carries the state shared by one Calibrate call.
type calibrator struct {
	opts   Options
	tracer trace.Tracer
}

// Calibrate measures the low-product crossovers on this host and returns a
// profile holding them. The context is checked between measurements.
func Calibrate(ctx context.Context, opts Options) (*CalibrationProfile, error) {
	opts = opts.withDefaults()
	c := &calibrator{opts: opts, tracer: otel.Tracer(tracerName)}

	ctx, span := c.tracer.Start(ctx, "calibration.run")
	defer span.End()

	start := time.Now()
	profile := NewProfile()
	load, err := sysmon.Sample(ctx, opts.LoadInterval)
	if err != nil {
		err = apperrors.CalibrationError{Stage: "load", Cause: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "calibration failed")
		return nil, err
	}
	if load.Busy() {
		opts.Logger.Info("host is busy, calibrated crossovers may be skewed",
			logging.Float64("cpu_percent", load.CPUPercent))
	}
	span.SetAttributes(attribute.Float64("host.cpu_percent", load.CPUPercent))

	for _, width := range opts.Widths {
		var (
			th  natmul.Thresholds
			err error
		)
		switch width {
		case 32:
			th, err = calibrateWidth[uint32](ctx, c)
		case 64:
			th, err = calibrateWidth[uint64](ctx, c)
		default:
			err = apperrors.CalibrationError{
				Stage: "width",
				Cause: apperrors.NewConfigError("unsupported limb width %d", width),
			}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "calibration failed")
			return nil, err
		}
		profile.SetThresholds(width, th)
		opts.Logger.Info("calibrated thresholds",
			logging.Int("width", width),
			logging.String("thresholds", th.String()))
	}

	profile.CalibratedAt = time.Now()
	profile.CalibrationTime = format.Timing(time.Since(start))
	profile.MaxHeapAllocBytes = opts.Memory.MaxHeapAlloc()
	profile.HostCPUPercent = load.CPUPercent
	return profile, nil
}

func calibrateWidth[L natmul.Limb](ctx context.Context, c *calibrator) (natmul.Thresholds, error) {
	th := natmul.DefaultThresholds[L]()
	width := natmul.LimbBits[L]()

	ctx, span := c.tracer.Start(ctx, "calibration.width",
		trace.WithAttributes(attribute.Int("limb.width", width)))
	defer span.End()

	basecase, err := crossover[L](ctx, c, "basecase", th,
		GenerateBasecaseSizes(c.opts.Quick), natmul.StrategyBasecaseFull, natmul.StrategyBasecase)
	if err != nil {
		return th, err
	}
	th.Basecase = clampBasecase(basecase)

	dc, err := crossover[L](ctx, c, "dc", th,
		GenerateDCSizes(c.opts.Quick), natmul.StrategyBasecase, natmul.StrategyDivideAndConquer)
	if err != nil {
		return th, err
	}
	th.DC = max(dc, th.Basecase)

	if sizes := GenerateLargeSizes(c.opts.Quick, c.opts.MaxSize); len(sizes) > 0 {
		bigfft.EnsurePoolsWarmed(2 * sizes[len(sizes)-1] * width / bits.UintSize)
		large, err := crossover[L](ctx, c, "large", th,
			sizes, natmul.StrategyDivideAndConquer, natmul.StrategyLarge)
		if err != nil {
			return th, err
		}
		th.Large = max(large, th.DC)
	} else {
		th.Large = max(th.Large, th.DC)
	}

	parallel, err := bestParallel[L](ctx, c, th)
	if err != nil {
		return th, err
	}
	th.Parallel = parallel

	if err := th.Validate(); err != nil {
		return th, apperrors.CalibrationError{Stage: "validate", Cause: err}
	}
	span.SetAttributes(
		attribute.Int("threshold.basecase", th.Basecase),
		attribute.Int("threshold.dc", th.DC),
		attribute.Int("threshold.large", th.Large),
		attribute.Int("threshold.parallel", th.Parallel),
	)
	return th, nil
}

// crossover returns the first size at which strategy b beats strategy a.
// When b never wins, the size after the last candidate is returned. Both
// strategies are forced at the top level only; their recursive steps run
// under candidateThresholds, the cutovers in effect if n became the
// crossover.
func crossover[L natmul.Limb](ctx context.Context, c *calibrator, stage string, base natmul.Thresholds,
	sizes []int, a, b natmul.Strategy) (int, error) {
	ctx, span := c.tracer.Start(ctx, "calibration.crossover", trace.WithAttributes(
		attribute.String("stage", stage),
		attribute.Int("limb.width", natmul.LimbBits[L]()),
	))
	defer span.End()

	before := c.opts.Memory.Snapshot()
	found := sizes[len(sizes)-1] + 1
	for _, n := range sizes {
		th := candidateThresholds(base, b, n)
		ma, err := natmul.New[L](th, natmul.WithForcedStrategy(a))
		if err != nil {
			return 0, apperrors.CalibrationError{Stage: stage, Cause: err}
		}
		mb, err := natmul.New[L](th, natmul.WithForcedStrategy(b))
		if err != nil {
			return 0, apperrors.CalibrationError{Stage: stage, Cause: err}
		}

		x, y := randomOperands[L](n)
		ta, err := measure(ctx, c, ma, x, y)
		if err != nil {
			return 0, apperrors.CalibrationError{Stage: stage, Cause: err}
		}
		tb, err := measure(ctx, c, mb, x, y)
		if err != nil {
			return 0, apperrors.CalibrationError{Stage: stage, Cause: err}
		}
		c.opts.Logger.Debug("crossover sample",
			logging.String("stage", stage),
			logging.Int("limbs", n),
			logging.String(a.String(), format.Timing(ta)),
			logging.String(b.String(), format.Timing(tb)),
			logging.String("speedup", format.Ratio(ta, tb)))
		if tb < ta {
			found = n
			break
		}
	}

	d := metrics.Delta(before, c.opts.Memory.Snapshot())
	span.SetAttributes(
		attribute.Int("crossover", found),
		attribute.Int64("heap.objects.delta", d.HeapObjects),
		attribute.Int64("gc.cycles", int64(d.GCCycles)),
		attribute.Int64("gc.pause_ns", d.GCPause.Nanoseconds()),
	)
	return found, nil
}

// bestParallel times the divide-and-conquer path at a size where the cross
// terms reach every candidate and returns the fastest parallel threshold.
func bestParallel[L natmul.Limb](ctx context.Context, c *calibrator, base natmul.Thresholds) (int, error) {
	candidates := GenerateParallelThresholds()
	if c.opts.Quick {
		candidates = GenerateQuickParallelThresholds()
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	ctx, span := c.tracer.Start(ctx, "calibration.parallel", trace.WithAttributes(
		attribute.Int("limb.width", natmul.LimbBits[L]()),
		attribute.Int("candidates", len(candidates)),
	))
	defer span.End()

	n := min(max(4*candidates[len(candidates)-1], base.DC), max(base.Large-1, base.DC))
	x, y := randomOperands[L](n)

	best, bestTime := 0, time.Duration(math.MaxInt64)
	for _, p := range candidates {
		th := base
		th.Parallel = p
		m, err := natmul.New[L](th, natmul.WithForcedStrategy(natmul.StrategyDivideAndConquer))
		if err != nil {
			return 0, apperrors.CalibrationError{Stage: "parallel", Cause: err}
		}
		d, err := measure(ctx, c, m, x, y)
		if err != nil {
			return 0, apperrors.CalibrationError{Stage: "parallel", Cause: err}
		}
		if d < bestTime {
			best, bestTime = p, d
		}
	}
	span.SetAttributes(attribute.Int("parallel", best))
	return best, nil
}

// measure returns the fastest of opts.Repetitions timed low products after
// one warm-up run. The heap is read once the timed runs are over.
func measure[L natmul.Limb](ctx context.Context, c *calibrator, m *natmul.Multiplier[L], x, y []L) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out := make([]L, len(x))
	m.ComputeLowProduct(out, x, y)
	best := time.Duration(math.MaxInt64)
	for i := 0; i < c.opts.Repetitions; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		start := time.Now()
		m.ComputeLowProduct(out, x, y)
		best = min(best, time.Since(start))
	}
	c.opts.Memory.Snapshot()
	return best, nil
}

// randomOperands returns two n-limb operands from a generator seeded by n,
// so repeated runs time the same inputs.
func randomOperands[L natmul.Limb](n int) (x, y []L) {
	rng := rand.New(rand.NewPCG(0x6d756c6c6f, uint64(n)))
	x = make([]L, n)
	y = make([]L, n)
	for i := range x {
		x[i] = L(rng.Uint64())
		y[i] = L(rng.Uint64())
	}
	return x, y
}

// candidateThresholds returns the cutovers under which size n is timed
// while it is tried as the crossover to strategy b: recursive cross terms
// below n stay on the strategy being replaced, the way they would if n were
// chosen. Parallel cross terms are off so that timings stay comparable.
func candidateThresholds(base natmul.Thresholds, b natmul.Strategy, n int) natmul.Thresholds {
	th := base
	th.Parallel = 0
	switch b {
	case natmul.StrategyBasecase:
		th.Basecase = min(max(n, 1), natmul.MaxBasecaseThreshold)
		th.DC = max(th.DC, th.Basecase)
	case natmul.StrategyDivideAndConquer:
		th.DC = max(n, th.Basecase)
	case natmul.StrategyLarge:
		th.Large = max(n, th.DC)
	}
	th.Large = max(th.Large, th.DC)
	return th
}
