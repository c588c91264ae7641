package mullo_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/agbru/mullo"
	apperrors "github.com/agbru/mullo/internal/errors"
	"github.com/agbru/mullo/internal/natmul/mocks"
)

func limbsToBig(xs []uint64) *big.Int {
	z := new(big.Int)
	for i := len(xs) - 1; i >= 0; i-- {
		z.Lsh(z, 64)
		z.Or(z, new(big.Int).SetUint64(xs[i]))
	}
	return z
}

func operands(n int) (x, y []uint64) {
	x = make([]uint64, n)
	y = make([]uint64, n)
	for i := range x {
		x[i] = uint64(i)*0x9e3779b97f4a7c15 + 1
		y[i] = ^uint64(i) * 0xbf58476d1ce4e5b9
	}
	return x, y
}

func lowRef(x, y []uint64) *big.Int {
	p := new(big.Int).Mul(limbsToBig(x), limbsToBig(y))
	mask := new(big.Int).Lsh(big.NewInt(1), uint(64*len(x)))
	return p.Mod(p, mask)
}

// isolated clears the environment Configure reads.
func isolated(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BASECASE", "DC", "LARGE", "TOOM22", "FFT", "PARALLEL"} {
		t.Setenv("MULLO_"+k+"_THRESHOLD", "")
	}
	t.Setenv("MULLO_CALIBRATION_PROFILE", "")
	t.Setenv("MULLO_NO_PROFILE", "")
}

func TestComputeLowProduct(t *testing.T) {
	t.Parallel()
	for _, n := range []int{1, 2, 7, 33, 150} {
		x, y := operands(n)
		out := make([]uint64, n)
		mullo.ComputeLowProduct(out, x, y)
		if limbsToBig(out).Cmp(lowRef(x, y)) != 0 {
			t.Errorf("n=%d: low product mismatch", n)
		}
	}
}

func TestComputeLowProductUint32(t *testing.T) {
	t.Parallel()
	out := make([]uint32, 2)
	mullo.ComputeLowProduct(out, []uint32{0xFFFFFFFF, 0}, []uint32{2, 0})
	if out[0] != 0xFFFFFFFE || out[1] != 1 {
		t.Errorf("got %#x, want [0xfffffffe 0x1]", out)
	}
}

func TestFullProduct(t *testing.T) {
	t.Parallel()
	x, _ := operands(9)
	_, y := operands(4)
	out := make([]uint64, 13)
	mullo.FullProduct(out, x, y)
	want := new(big.Int).Mul(limbsToBig(x), limbsToBig(y))
	if limbsToBig(out).Cmp(want) != 0 {
		t.Error("full product mismatch")
	}
}

func TestLowProductScratchLength(t *testing.T) {
	t.Parallel()
	if got := mullo.LowProductScratchLength(40); got != 80 {
		t.Errorf("LowProductScratchLength(40) = %d, want 80", got)
	}
}

func TestNewRejectsInvalidThresholds(t *testing.T) {
	t.Parallel()
	th := mullo.DefaultThresholds[uint64]()
	th.Basecase = mullo.MaxBasecaseThreshold + 1
	if _, err := mullo.New[uint64](th); err == nil {
		t.Error("expected an error for an oversized basecase threshold")
	}
}

func TestConfigureOverrides(t *testing.T) {
	isolated(t)

	m, err := mullo.Configure[uint64](mullo.Config{
		SkipProfile: true,
		Overrides:   map[string]int{"basecase": 2, "dc": 4, "large": 64},
	})
	if err != nil {
		t.Fatal(err)
	}
	th := m.Thresholds()
	if th.Basecase != 2 || th.DC != 4 || th.Large != 64 {
		t.Errorf("overrides not applied: %v", th)
	}

	x, y := operands(100)
	out := make([]uint64, 100)
	m.ComputeLowProduct(out, x, y)
	if limbsToBig(out).Cmp(lowRef(x, y)) != 0 {
		t.Error("low product mismatch under overridden thresholds")
	}
}

func TestConfigureEnvironment(t *testing.T) {
	isolated(t)
	t.Setenv("MULLO_DC_THRESHOLD", "20")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	m, err := mullo.Configure[uint32](mullo.Config{SkipProfile: true, Logger: &logger})
	if err != nil {
		t.Fatal(err)
	}
	if m.Thresholds().DC != 20 {
		t.Errorf("DC = %d, want 20", m.Thresholds().DC)
	}
	if !strings.Contains(buf.String(), `"component":"config"`) {
		t.Errorf("expected config log lines, got:\n%s", buf.String())
	}
}

func TestConfigureRejectsBadOverride(t *testing.T) {
	isolated(t)
	if _, err := mullo.Configure[uint64](mullo.Config{SkipProfile: true, Overrides: map[string]int{"dc": -1}}); err == nil {
		t.Error("expected an error for a dc threshold below the basecase threshold")
	}
}

func TestConfigureObservers(t *testing.T) {
	isolated(t)
	ctrl := gomock.NewController(t)

	obs := mocks.NewMockObserver(ctrl)
	obs.EXPECT().ObserveLowProduct(mullo.StrategyBasecase, 10).Times(1)

	reg := prometheus.NewRegistry()
	m, err := mullo.Configure[uint64](mullo.Config{
		SkipProfile: true,
		Overrides:   map[string]int{"basecase": 4, "dc": 32},
		Registerer:  reg,
		Observer:    obs,
	})
	if err != nil {
		t.Fatal(err)
	}

	x, y := operands(10)
	m.ComputeLowProduct(make([]uint64, 10), x, y)

	n, err := testutil.GatherAndCount(reg, "mullo_low_product_calls_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("expected 4 strategy series, got %d", n)
	}
}

func TestConfigureBothWidthsOneRegistry(t *testing.T) {
	isolated(t)

	reg := prometheus.NewRegistry()
	m64, err := mullo.Configure[uint64](mullo.Config{SkipProfile: true, Registerer: reg})
	if err != nil {
		t.Fatal(err)
	}
	m32, err := mullo.Configure[uint32](mullo.Config{SkipProfile: true, Registerer: reg})
	if err != nil {
		t.Fatalf("uint32 multiplier on the registry of a uint64 one: %v", err)
	}
	again, err := mullo.Configure[uint64](mullo.Config{SkipProfile: true, Registerer: reg})
	if err != nil {
		t.Fatalf("second uint64 multiplier on the same registry: %v", err)
	}

	x, y := operands(3)
	m64.ComputeLowProduct(make([]uint64, 3), x, y)
	again.ComputeLowProduct(make([]uint64, 3), x, y)
	m32.ComputeLowProduct(make([]uint32, 1), []uint32{5}, []uint32{7})

	n, err := testutil.GatherAndCount(reg, "mullo_low_product_calls_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("expected 4 strategy series per width, got %d", n)
	}
	n, err = testutil.GatherAndCount(reg, "mullo_low_product_operand_limbs")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected one size histogram per width, got %d", n)
	}
}

func TestCalibrateWritesProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping calibration run in short mode")
	}
	isolated(t)

	path := filepath.Join(t.TempDir(), "profile.json")
	for _, width := range []int{32, 64} {
		got, err := mullo.Calibrate(context.Background(), mullo.CalibrateConfig{
			ProfilePath: path,
			Quick:       true,
			MaxSize:     600,
			Widths:      []int{width},
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := got[width]; !ok {
			t.Fatalf("no thresholds for width %d in %v", width, got)
		}
	}

	// The second run keeps the 32-bit entry of the first.
	got, err := mullo.Calibrate(context.Background(), mullo.CalibrateConfig{
		ProfilePath: path,
		Quick:       true,
		MaxSize:     600,
		Widths:      []int{64},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected thresholds for two widths, got %v", got)
	}

	m, err := mullo.Configure[uint64](mullo.Config{ProfilePath: path})
	if err != nil {
		t.Fatal(err)
	}
	if m.Thresholds() != got[64] {
		t.Errorf("Configure = %v, want calibrated %v", m.Thresholds(), got[64])
	}
}

func TestCalibrateCanceled(t *testing.T) {
	isolated(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "profile.json")
	if _, err := mullo.Calibrate(ctx, mullo.CalibrateConfig{ProfilePath: path, Quick: true}); err == nil {
		t.Error("expected an error from a canceled calibration")
	}
}

func TestCalibrateTimeout(t *testing.T) {
	isolated(t)

	path := filepath.Join(t.TempDir(), "profile.json")
	_, err := mullo.Calibrate(context.Background(), mullo.CalibrateConfig{
		ProfilePath: path,
		Quick:       true,
		Timeout:     time.Nanosecond,
	})
	var te apperrors.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if te.Operation != "calibration" || te.Limit != time.Nanosecond {
		t.Errorf("unexpected timeout error %+v", te)
	}
}
