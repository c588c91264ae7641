// Package config resolves the multiplication thresholds for a limb width
// from explicit overrides, command-line flags, the environment, a cached
// calibration profile and hardware heuristics.
package config

import (
	"flag"
	"math/bits"
	"sort"
	"time"

	"github.com/agbru/mullo/internal/calibration"
	apperrors "github.com/agbru/mullo/internal/errors"
	"github.com/agbru/mullo/internal/logging"
	"github.com/agbru/mullo/internal/natmul"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "MULLO_"

const (
	envProfile   = "CALIBRATION_PROFILE"
	envNoProfile = "NO_PROFILE"
	flagProfile  = "calibration-profile"
)

// Source names where a resolved threshold came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceAdaptive Source = "adaptive"
	SourceProfile  Source = "profile"
	SourceEnv      Source = "env"
	SourceFlag     Source = "flag"
	SourceExplicit Source = "explicit"
)

// Options drives Resolve.
type Options struct {
	// Width is the limb width in bits, 32 or 64. Zero selects the machine
	// word size.
	Width int
	// Overrides sets thresholds by name ("basecase", "dc", "large",
	// "toom22", "fft", "parallel") above every other source.
	Overrides map[string]int
	// FlagSet, when non-nil and parsed, contributes the flags registered by
	// RegisterFlags. A set flag masks the matching environment variable.
	FlagSet *flag.FlagSet
	// ProfilePath overrides the calibration profile location.
	ProfilePath string
	// SkipProfile ignores any cached calibration profile.
	SkipProfile bool
	// MaxProfileAge, when positive, ignores profiles calibrated longer ago.
	MaxProfileAge time.Duration
	// Logger receives one line per applied source; nil discards them.
	Logger logging.Logger
}

// Resolved is the outcome of Resolve.
type Resolved struct {
	Width      int
	Thresholds natmul.Thresholds
	// Sources maps each threshold name to the source of its value.
	Sources map[string]Source
	// ProfilePath is the profile consulted, empty when profiles were skipped.
	ProfilePath string
	// ProfileLoaded reports whether the profile contributed values.
	ProfileLoaded bool
}

// RegisterFlags adds one integer flag per threshold and a
// -calibration-profile flag to fs. Unset flags leave the lower-priority
// sources in effect.
func RegisterFlags(fs *flag.FlagSet) {
	for _, o := range thresholdOverrides {
		fs.Int(o.flag, 0, o.usage)
	}
	fs.String(flagProfile, "", "path of the calibration profile (default ~/"+calibration.DefaultProfileFileName+")")
}

// Resolve computes the thresholds for opts.Width. The result is validated;
// an invalid combination, an unparsable environment value or an unknown
// override name yields an apperrors.ConfigError.
func Resolve(opts Options) (Resolved, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	width := opts.Width
	if width == 0 {
		width = bits.UintSize
	}
	if width != 32 && width != 64 {
		return Resolved{}, apperrors.NewConfigError("unsupported limb width %d", width)
	}

	r := Resolved{
		Width:      width,
		Thresholds: natmul.DefaultThresholdsForWidth(width),
		Sources:    make(map[string]Source, len(thresholdOverrides)),
	}
	for _, o := range thresholdOverrides {
		r.Sources[o.name] = SourceDefault
	}

	adapted := ApplyAdaptiveThresholds(r.Thresholds, width)
	if adapted.Parallel != r.Thresholds.Parallel {
		r.Thresholds = adapted
		r.mark(logger, SourceAdaptive, "parallel")
	}

	if !opts.SkipProfile && !getEnvBool(envNoProfile, false) {
		r.ProfilePath = profilePath(opts)
		r.applyProfile(logger, opts.MaxProfileAge)
	}

	names, err := applyEnvOverrides(&r.Thresholds, opts.FlagSet)
	if err != nil {
		return Resolved{}, err
	}
	r.mark(logger, SourceEnv, names...)

	names, err = applyFlagOverrides(&r.Thresholds, opts.FlagSet)
	if err != nil {
		return Resolved{}, err
	}
	r.mark(logger, SourceFlag, names...)

	if err := r.applyExplicit(opts.Overrides); err != nil {
		return Resolved{}, err
	}
	for _, name := range sortedKeys(opts.Overrides) {
		r.mark(logger, SourceExplicit, name)
	}

	if err := r.Thresholds.Validate(); err != nil {
		return Resolved{}, err
	}
	logger.Info("resolved thresholds",
		logging.Int("width", width),
		logging.String("thresholds", r.Thresholds.String()))
	return r, nil
}

// profilePath picks the profile location: explicit option, then flag, then
// environment, then the home directory default.
func profilePath(opts Options) string {
	if opts.ProfilePath != "" {
		return opts.ProfilePath
	}
	if isFlagSetAny(opts.FlagSet, flagProfile) {
		if v := opts.FlagSet.Lookup(flagProfile).Value.String(); v != "" {
			return v
		}
	}
	return getEnvString(envProfile, calibration.GetDefaultProfilePath())
}

// applyProfile lays the calibrated values for r.Width over r.Thresholds
// when the profile exists, was measured on this host and is recent enough.
func (r *Resolved) applyProfile(logger logging.Logger, maxAge time.Duration) {
	p, err := calibration.LoadProfile(r.ProfilePath)
	if err != nil {
		logger.Debug("no calibration profile", logging.String("path", r.ProfilePath), logging.Err(err))
		return
	}
	if !p.IsValid() {
		logger.Info("ignoring calibration profile from another host or version",
			logging.String("path", r.ProfilePath))
		return
	}
	if maxAge > 0 && p.IsStale(maxAge) {
		logger.Info("ignoring stale calibration profile",
			logging.String("path", r.ProfilePath),
			logging.String("calibrated_at", p.CalibratedAt.Format(time.RFC3339)))
		return
	}
	w, ok := p.Widths[r.Width]
	if !ok {
		return
	}

	r.ProfileLoaded = true
	set := func(name string, dst *int, v int) {
		*dst = v
		r.mark(logger, SourceProfile, name)
	}
	if w.Basecase > 0 {
		set("basecase", &r.Thresholds.Basecase, w.Basecase)
	}
	if w.DC > 0 {
		set("dc", &r.Thresholds.DC, w.DC)
	}
	if w.Large > 0 {
		set("large", &r.Thresholds.Large, w.Large)
	}
	if w.Parallel >= 0 {
		set("parallel", &r.Thresholds.Parallel, w.Parallel)
	}
}

func (r *Resolved) applyExplicit(overrides map[string]int) error {
	for _, name := range sortedKeys(overrides) {
		o, ok := lookupOverride(name)
		if !ok {
			return apperrors.NewConfigError("unknown threshold %q", name)
		}
		*o.field(&r.Thresholds) = overrides[name]
	}
	return nil
}

// mark records source for names and logs each.
func (r *Resolved) mark(logger logging.Logger, source Source, names ...string) {
	for _, name := range names {
		r.Sources[name] = source
		o, _ := lookupOverride(name)
		logger.Debug("threshold applied",
			logging.String("threshold", name),
			logging.String("source", string(source)),
			logging.Int("value", *o.field(&r.Thresholds)))
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
