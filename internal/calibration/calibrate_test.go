package calibration

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/mullo/internal/errors"
	"github.com/agbru/mullo/internal/logging"
	"github.com/agbru/mullo/internal/natmul"
)

// quickOptions keeps a calibration run short enough for unit tests.
func quickOptions(widths ...int) Options {
	return Options{
		Widths:       widths,
		MaxSize:      600,
		Repetitions:  1,
		Quick:        true,
		LoadInterval: time.Millisecond,
	}
}

func TestCalibrateQuick(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping calibration run in short mode")
	}
	t.Parallel()

	var buf bytes.Buffer
	opts := quickOptions(32, 64)
	opts.Logger = logging.NewLogger(&buf, "calibration")

	profile, err := Calibrate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	if !profile.IsValid() {
		t.Error("calibrated profile should be valid on the host that produced it")
	}
	if profile.CalibrationTime == "" {
		t.Error("CalibrationTime not recorded")
	}
	if profile.MaxHeapAllocBytes == 0 {
		t.Error("MaxHeapAllocBytes not recorded")
	}

	for _, width := range []int{32, 64} {
		th, ok := profile.Thresholds(width)
		if !ok {
			t.Fatalf("no thresholds recorded for width %d", width)
		}
		if err := th.Validate(); err != nil {
			t.Errorf("width %d: calibrated thresholds invalid: %v (%v)", width, err, th)
		}
		if th.Large > 601 {
			t.Errorf("width %d: large threshold %d beyond the measured range", width, th.Large)
		}
	}

	if got := strings.Count(buf.String(), "calibrated thresholds"); got != 2 {
		t.Errorf("expected one progress line per width, got %d:\n%s", got, buf.String())
	}
}

func TestCalibrateCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Calibrate(ctx, quickOptions(64))
	if err == nil {
		t.Fatal("expected an error from a canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not wrap context.Canceled", err)
	}
	if !apperrors.IsContextError(err) {
		t.Errorf("IsContextError(%v) = false", err)
	}
	var ce apperrors.CalibrationError
	if !errors.As(err, &ce) || ce.Stage != "load" {
		t.Errorf("expected a load CalibrationError, got %#v", err)
	}
}

func TestCalibrateCanceledSkipsLoadInterval(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := quickOptions(64)
	opts.LoadInterval = 10 * time.Second
	start := time.Now()
	if _, err := Calibrate(ctx, opts); !errors.Is(err, context.Canceled) {
		t.Fatalf("Calibrate on a canceled context = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("canceled calibration still waited %v for the load sample", elapsed)
	}
}

func TestCalibrateUnsupportedWidth(t *testing.T) {
	t.Parallel()
	_, err := Calibrate(context.Background(), quickOptions(16))

	var ce apperrors.CalibrationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CalibrationError, got %v", err)
	}
	if ce.Stage != "width" {
		t.Errorf("Stage = %q, want %q", ce.Stage, "width")
	}
	var cfg apperrors.ConfigError
	if !errors.As(err, &cfg) {
		t.Errorf("expected the cause to be a ConfigError, got %v", ce.Cause)
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	t.Parallel()
	o := Options{}.withDefaults()
	if len(o.Widths) != 2 || o.Widths[0] != 32 || o.Widths[1] != 64 {
		t.Errorf("Widths = %v, want [32 64]", o.Widths)
	}
	if o.MaxSize != 16384 || o.Repetitions != 3 {
		t.Errorf("MaxSize = %d, Repetitions = %d", o.MaxSize, o.Repetitions)
	}
	if o.Logger == nil || o.Memory == nil {
		t.Error("Logger and Memory should be populated")
	}
	if o.LoadInterval != 200*time.Millisecond {
		t.Errorf("LoadInterval = %v", o.LoadInterval)
	}

	custom := Options{Widths: []int{64}, MaxSize: 1024, Repetitions: 7}.withDefaults()
	if len(custom.Widths) != 1 || custom.MaxSize != 1024 || custom.Repetitions != 7 {
		t.Errorf("explicit options overwritten: %+v", custom)
	}
}

func TestCandidateThresholds(t *testing.T) {
	t.Parallel()
	base := natmul.DefaultThresholds[uint64]()
	base.Basecase, base.DC, base.Parallel = 6, 40, 512

	tests := []struct {
		name string
		b    natmul.Strategy
		n    int
		want natmul.Thresholds
	}{
		{
			name: "basecase stage moves only the basecase cutover",
			b:    natmul.StrategyBasecase, n: 16,
			want: natmul.Thresholds{Basecase: 16, DC: 40, Large: base.Large, Toom22: base.Toom22, FFT: base.FFT},
		},
		{
			name: "basecase stage clamps to the fixed array",
			b:    natmul.StrategyBasecase, n: 200,
			want: natmul.Thresholds{Basecase: natmul.MaxBasecaseThreshold, DC: natmul.MaxBasecaseThreshold, Large: base.Large, Toom22: base.Toom22, FFT: base.FFT},
		},
		{
			name: "dc stage keeps the calibrated basecase for cross terms",
			b:    natmul.StrategyDivideAndConquer, n: 64,
			want: natmul.Thresholds{Basecase: 6, DC: 64, Large: base.Large, Toom22: base.Toom22, FFT: base.FFT},
		},
		{
			name: "dc stage below the basecase cutover",
			b:    natmul.StrategyDivideAndConquer, n: 4,
			want: natmul.Thresholds{Basecase: 6, DC: 6, Large: base.Large, Toom22: base.Toom22, FFT: base.FFT},
		},
		{
			name: "large stage keeps both low cutovers",
			b:    natmul.StrategyLarge, n: 2048,
			want: natmul.Thresholds{Basecase: 6, DC: 40, Large: 2048, Toom22: base.Toom22, FFT: base.FFT},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := candidateThresholds(base, tt.b, tt.n)
			if got != tt.want {
				t.Errorf("candidateThresholds(%v, %d) = %v, want %v", tt.b, tt.n, got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("candidate thresholds invalid: %v", err)
			}
		})
	}
}

// The divide-and-conquer candidate must recurse with the cutovers it would
// run under if chosen, not all the way down to two limbs.
func TestCandidateThresholdsRealisticRecursion(t *testing.T) {
	t.Parallel()
	base := natmul.DefaultThresholds[uint64]()

	for _, n := range GenerateDCSizes(false) {
		th := candidateThresholds(base, natmul.StrategyDivideAndConquer, n)
		if th.Basecase != base.Basecase {
			t.Errorf("n=%d: recursion basecase %d, want %d", n, th.Basecase, base.Basecase)
		}
		// Every cross term of an n-limb split is below n, so none of them
		// recurses into divide and conquer again.
		for m := 1; m < n; m++ {
			if s := th.LowStrategy(m); s == natmul.StrategyDivideAndConquer || s == natmul.StrategyLarge {
				t.Fatalf("n=%d: a %d-limb cross term would use %v", n, m, s)
			}
		}
	}
}

func TestForcedCandidateComputesLowProduct(t *testing.T) {
	t.Parallel()
	base := natmul.DefaultThresholds[uint64]()
	base.Basecase = 6

	for _, s := range []natmul.Strategy{
		natmul.StrategyBasecaseFull,
		natmul.StrategyBasecase,
		natmul.StrategyDivideAndConquer,
		natmul.StrategyLarge,
	} {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()
			for _, n := range []int{2, 17, 48} {
				th := candidateThresholds(base, natmul.StrategyDivideAndConquer, n)
				m, err := natmul.New[uint64](th, natmul.WithForcedStrategy(s))
				if err != nil {
					t.Fatal(err)
				}
				ref, err := natmul.New[uint64](base)
				if err != nil {
					t.Fatal(err)
				}
				x, y := randomOperands[uint64](n)
				got, want := make([]uint64, n), make([]uint64, n)
				m.ComputeLowProduct(got, x, y)
				ref.ComputeLowProduct(want, x, y)
				for i := range got {
					if got[i] != want[i] {
						t.Fatalf("n=%d: limb %d differs", n, i)
					}
				}
			}
		})
	}
}

func TestRandomOperandsDeterministic(t *testing.T) {
	t.Parallel()
	x1, y1 := randomOperands[uint64](17)
	x2, y2 := randomOperands[uint64](17)
	if len(x1) != 17 || len(y1) != 17 {
		t.Fatalf("lengths %d, %d", len(x1), len(y1))
	}
	for i := range x1 {
		if x1[i] != x2[i] || y1[i] != y2[i] {
			t.Fatalf("operands differ at limb %d", i)
		}
	}
	x3, _ := randomOperands[uint64](18)
	if x3[0] == x1[0] {
		t.Error("different sizes should draw different operands")
	}
}

func TestMeasureHonorsContext(t *testing.T) {
	t.Parallel()
	c := &calibrator{opts: quickOptions(64).withDefaults()}
	m, err := natmul.New[uint64](natmul.DefaultThresholds[uint64]())
	if err != nil {
		t.Fatal(err)
	}
	x, y := randomOperands[uint64](8)

	d, err := measure(context.Background(), c, m, x, y)
	if err != nil || d < 0 {
		t.Errorf("measure = %v, %v", d, err)
	}
	if c.opts.Memory.MaxHeapAlloc() == 0 {
		t.Error("measure did not read the heap")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := measure(ctx, c, m, x, y); !errors.Is(err, context.Canceled) {
		t.Errorf("measure on canceled context = %v", err)
	}
}
