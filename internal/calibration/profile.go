// This file implements persistence of calibration results.

package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/agbru/mullo/internal/bigfft"
	apperrors "github.com/agbru/mullo/internal/errors"
	"github.com/agbru/mullo/internal/natmul"
)

// CurrentProfileVersion is bumped whenever the profile layout changes.
// Profiles with another version are ignored.
const CurrentProfileVersion = 1

// DefaultProfileFileName is the profile file name in the user's home
// directory.
const DefaultProfileFileName = ".mullo_calibration.json"

// WidthThresholds holds the calibrated cutovers for one limb width. Zero
// values for Basecase, DC and Large mean "not calibrated".
type WidthThresholds struct {
	Basecase int `json:"basecase"`
	DC       int `json:"dc"`
	Large    int `json:"large"`
	Parallel int `json:"parallel"`
}

// CalibrationProfile stores calibrated thresholds together with the host
// signature they were measured on.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	// Host signature
	NumCPU      int    `json:"num_cpu"`
	GOARCH      string `json:"goarch"`
	GOOS        string `json:"goos"`
	GoVersion   string `json:"go_version"`
	WordSize    int    `json:"word_size"`
	CPUFeatures string `json:"cpu_features"`

	// Widths maps a limb width in bits (32 or 64) to its thresholds.
	Widths map[int]WidthThresholds `json:"widths"`

	CalibrationTime string `json:"calibration_time,omitempty"`
	// MaxHeapAllocBytes is the largest heap reading taken between
	// measurements, a lower bound on the run's peak heap.
	MaxHeapAllocBytes uint64  `json:"max_heap_alloc_bytes,omitempty"`
	HostCPUPercent    float64 `json:"host_cpu_percent,omitempty"`
}

// NewProfile returns an empty profile stamped with the current host.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		CalibratedAt:   time.Now(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CPUFeatures:    bigfft.GetCPUFeatures().String(),
		Widths:         make(map[int]WidthThresholds),
	}
}

// SetThresholds records th for the given limb width.
func (p *CalibrationProfile) SetThresholds(width int, th natmul.Thresholds) {
	if p.Widths == nil {
		p.Widths = make(map[int]WidthThresholds)
	}
	p.Widths[width] = WidthThresholds{
		Basecase: th.Basecase,
		DC:       th.DC,
		Large:    th.Large,
		Parallel: th.Parallel,
	}
}

// Thresholds returns the static defaults for width with the calibrated
// values laid over them. The boolean is false when the profile has no entry
// for width.
func (p *CalibrationProfile) Thresholds(width int) (natmul.Thresholds, bool) {
	th := natmul.DefaultThresholdsForWidth(width)
	if p == nil {
		return th, false
	}
	w, ok := p.Widths[width]
	if !ok {
		return th, false
	}
	if w.Basecase > 0 {
		th.Basecase = w.Basecase
	}
	if w.DC > 0 {
		th.DC = w.DC
	}
	if w.Large > 0 {
		th.Large = w.Large
	}
	if w.Parallel >= 0 {
		th.Parallel = w.Parallel
	}
	return th, true
}

// IsValid reports whether the profile was produced by this profile version
// on a host with the same signature. A nil profile is invalid.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	current := NewProfile()
	return p.ProfileVersion == current.ProfileVersion &&
		p.NumCPU == current.NumCPU &&
		p.GOARCH == current.GOARCH &&
		p.WordSize == current.WordSize &&
		p.CPUFeatures == current.CPUFeatures
}

// IsStale reports whether the profile is older than maxAge. A nil profile
// is always stale.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// String summarizes the profile for logs.
func (p *CalibrationProfile) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Calibration profile v%d (%s)\n", p.ProfileVersion, p.CalibratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "  host: %s/%s, %d CPUs, %d-bit words, %s, %s\n",
		p.GOOS, p.GOARCH, p.NumCPU, p.WordSize, p.CPUFeatures, p.GoVersion)

	widths := make([]int, 0, len(p.Widths))
	for w := range p.Widths {
		widths = append(widths, w)
	}
	sort.Ints(widths)
	for _, w := range widths {
		t := p.Widths[w]
		fmt.Fprintf(&b, "  %d-bit limbs: basecase=%d dc=%d large=%d parallel=%d\n",
			w, t.Basecase, t.DC, t.Large, t.Parallel)
	}
	if p.CalibrationTime != "" {
		fmt.Fprintf(&b, "  calibration took %s (max heap alloc %d bytes, host cpu %.0f%%)",
			p.CalibrationTime, p.MaxHeapAllocBytes, p.HostCPUPercent)
	}
	return b.String()
}

// SaveProfile writes the profile as indented JSON, creating parent
// directories as needed.
func (p *CalibrationProfile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return apperrors.WrapError(err, "encoding calibration profile")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.WrapError(err, "creating profile directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.WrapError(err, "writing calibration profile %s", path)
	}
	return nil
}

// LoadProfile reads a profile from path. It does not check IsValid.
func LoadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapError(err, "reading calibration profile %s", path)
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperrors.WrapError(err, "decoding calibration profile %s", path)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path when it exists and matches
// this host; otherwise it returns a fresh profile and false.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	p, err := LoadProfile(path)
	if err != nil || !p.IsValid() {
		return NewProfile(), false
	}
	return p, true
}

// GetDefaultProfilePath returns the profile location in the user's home
// directory, or the bare file name when the home directory is unknown.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}
