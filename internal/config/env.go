// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/agbru/mullo/internal/errors"
	"github.com/agbru/mullo/internal/natmul"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as bool, or the default value if not set.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return parseBoolEnv(val, defaultVal)
	}
	return defaultVal
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
// A nil FlagSet has no flags set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	if fs == nil {
		return false
	}
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Threshold table
// ─────────────────────────────────────────────────────────────────────────────

// thresholdOverride declares one tunable cutover: the key used in
// Options.Overrides, the environment key (without the MULLO_ prefix), the
// command-line flag, and the Thresholds field it sets.
type thresholdOverride struct {
	name   string
	envKey string
	flag   string
	usage  string
	field  func(*natmul.Thresholds) *int
}

// thresholdOverrides is the declarative table of all threshold overrides.
var thresholdOverrides = []thresholdOverride{
	{"basecase", "BASECASE_THRESHOLD", "basecase-threshold",
		"operand size (limbs) from which the dedicated low basecase is used",
		func(t *natmul.Thresholds) *int { return &t.Basecase }},
	{"dc", "DC_THRESHOLD", "dc-threshold",
		"operand size (limbs) from which divide and conquer is used",
		func(t *natmul.Thresholds) *int { return &t.DC }},
	{"large", "LARGE_THRESHOLD", "large-threshold",
		"operand size (limbs) from which the truncated full product is used",
		func(t *natmul.Thresholds) *int { return &t.Large }},
	{"toom22", "TOOM22_THRESHOLD", "toom22-threshold",
		"operand size (limbs) from which full products use Karatsuba",
		func(t *natmul.Thresholds) *int { return &t.Toom22 }},
	{"fft", "FFT_THRESHOLD", "fft-threshold",
		"operand size (limbs) from which full products use the FFT",
		func(t *natmul.Thresholds) *int { return &t.FFT }},
	{"parallel", "PARALLEL_THRESHOLD", "parallel-threshold",
		"cross-term size (limbs) from which cross terms run concurrently (0 disables)",
		func(t *natmul.Thresholds) *int { return &t.Parallel }},
}

// lookupOverride returns the table entry for name.
func lookupOverride(name string) (thresholdOverride, bool) {
	for _, o := range thresholdOverrides {
		if o.name == name {
			return o, true
		}
	}
	return thresholdOverride{}, false
}

// parseThreshold parses a threshold value from source (an env var or flag
// name) into a ConfigError on failure.
func parseThreshold(source, val string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, apperrors.NewConfigError("invalid value %q for %s: not an integer", val, source)
	}
	return parsed, nil
}

// applyEnvOverrides applies environment variable values to th for every
// threshold whose flag was not explicitly set on the command line.
// It returns the names of the thresholds it changed.
//
// Supported environment variables (all prefixed with MULLO_):
//   - BASECASE_THRESHOLD, DC_THRESHOLD, LARGE_THRESHOLD,
//     TOOM22_THRESHOLD, FFT_THRESHOLD, PARALLEL_THRESHOLD
func applyEnvOverrides(th *natmul.Thresholds, fs *flag.FlagSet) ([]string, error) {
	var applied []string
	for _, o := range thresholdOverrides {
		if isFlagSet(fs, o.flag) {
			continue
		}
		val := os.Getenv(EnvPrefix + o.envKey)
		if val == "" {
			continue
		}
		parsed, err := parseThreshold(EnvPrefix+o.envKey, val)
		if err != nil {
			return applied, err
		}
		*o.field(th) = parsed
		applied = append(applied, o.name)
	}
	return applied, nil
}

// applyFlagOverrides applies the threshold flags explicitly set on fs.
func applyFlagOverrides(th *natmul.Thresholds, fs *flag.FlagSet) ([]string, error) {
	var applied []string
	for _, o := range thresholdOverrides {
		if !isFlagSet(fs, o.flag) {
			continue
		}
		parsed, err := parseThreshold("-"+o.flag, fs.Lookup(o.flag).Value.String())
		if err != nil {
			return applied, err
		}
		*o.field(th) = parsed
		applied = append(applied, o.name)
	}
	return applied, nil
}
