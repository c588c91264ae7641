package calibration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/agbru/mullo/internal/bigfft"
	"github.com/agbru/mullo/internal/natmul"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	if profile == nil {
		t.Fatal("NewProfile returned nil")
	}

	if profile.NumCPU != runtime.NumCPU() {
		t.Errorf("NumCPU = %d, want %d", profile.NumCPU, runtime.NumCPU())
	}

	if profile.GOARCH != runtime.GOARCH {
		t.Errorf("GOARCH = %s, want %s", profile.GOARCH, runtime.GOARCH)
	}

	if profile.GOOS != runtime.GOOS {
		t.Errorf("GOOS = %s, want %s", profile.GOOS, runtime.GOOS)
	}

	if profile.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %s, want %s", profile.GoVersion, runtime.Version())
	}

	if profile.ProfileVersion != CurrentProfileVersion {
		t.Errorf("ProfileVersion = %d, want %d", profile.ProfileVersion, CurrentProfileVersion)
	}

	expectedWordSize := 32 << (^uint(0) >> 63)
	if profile.WordSize != expectedWordSize {
		t.Errorf("WordSize = %d, want %d", profile.WordSize, expectedWordSize)
	}

	if profile.CalibratedAt.IsZero() {
		t.Error("CalibratedAt is zero")
	}

	if profile.CPUFeatures != bigfft.GetCPUFeatures().String() {
		t.Errorf("CPUFeatures = %q, want %q", profile.CPUFeatures, bigfft.GetCPUFeatures().String())
	}

	if len(profile.Widths) != 0 {
		t.Errorf("Widths = %v, want empty", profile.Widths)
	}
}

func TestProfileThresholds(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	if th, ok := profile.Thresholds(64); ok || th != natmul.DefaultThresholdsForWidth(64) {
		t.Errorf("uncalibrated width: got %v, %v; want defaults, false", th, ok)
	}

	want := natmul.DefaultThresholdsForWidth(64)
	want.Basecase, want.DC, want.Large, want.Parallel = 10, 40, 5000, 1024
	profile.SetThresholds(64, want)

	got, ok := profile.Thresholds(64)
	if !ok {
		t.Fatal("Thresholds(64) reported no entry after SetThresholds")
	}
	if got != want {
		t.Errorf("Thresholds(64) = %v, want %v", got, want)
	}

	// Full-product cutovers are not stored and come from the defaults.
	if got.Toom22 != natmul.DefaultThresholdsForWidth(64).Toom22 {
		t.Errorf("Toom22 = %d, want default", got.Toom22)
	}

	if _, ok := profile.Thresholds(32); ok {
		t.Error("Thresholds(32) should have no entry")
	}
}

func TestProfileThresholdsZeroFields(t *testing.T) {
	t.Parallel()
	profile := &CalibrationProfile{Widths: map[int]WidthThresholds{32: {Parallel: 256}}}

	got, ok := profile.Thresholds(32)
	if !ok {
		t.Fatal("expected an entry for width 32")
	}
	want := natmul.DefaultThresholdsForWidth(32)
	want.Parallel = 256
	if got != want {
		t.Errorf("Thresholds(32) = %v, want %v", got, want)
	}
}

func TestNilProfileThresholds(t *testing.T) {
	t.Parallel()
	var p *CalibrationProfile
	if th, ok := p.Thresholds(64); ok || th != natmul.DefaultThresholdsForWidth(64) {
		t.Errorf("nil profile: got %v, %v", th, ok)
	}
}

func TestProfileSaveLoad(t *testing.T) {
	t.Parallel()
	// Create a temporary directory for the test
	tmpDir, err := os.MkdirTemp("", "mullo_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	profilePath := filepath.Join(tmpDir, "nested", "test_profile.json")

	// Create and save a profile
	original := NewProfile()
	original.Widths[32] = WidthThresholds{Basecase: 14, DC: 52, Large: 9000, Parallel: 0}
	original.Widths[64] = WidthThresholds{Basecase: 9, DC: 30, Large: 4096, Parallel: 2048}
	original.CalibrationTime = "1m30s"
	original.MaxHeapAllocBytes = 1 << 20

	if err := original.SaveProfile(profilePath); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(profilePath); os.IsNotExist(err) {
		t.Fatal("Profile file was not created")
	}

	// Load the profile
	loaded, err := LoadProfile(profilePath)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}

	// Verify loaded values
	for _, w := range []int{32, 64} {
		if loaded.Widths[w] != original.Widths[w] {
			t.Errorf("Widths[%d] = %+v, want %+v", w, loaded.Widths[w], original.Widths[w])
		}
	}

	if loaded.CalibrationTime != original.CalibrationTime {
		t.Errorf("CalibrationTime = %q, want %q", loaded.CalibrationTime, original.CalibrationTime)
	}

	if loaded.MaxHeapAllocBytes != original.MaxHeapAllocBytes {
		t.Errorf("MaxHeapAllocBytes = %d, want %d", loaded.MaxHeapAllocBytes, original.MaxHeapAllocBytes)
	}

	if loaded.NumCPU != original.NumCPU {
		t.Errorf("NumCPU = %d, want %d", loaded.NumCPU, original.NumCPU)
	}
}

func TestProfileIsValid(t *testing.T) {
	t.Parallel()
	// Valid profile for current hardware
	valid := NewProfile()
	if !valid.IsValid() {
		t.Error("Expected newly created profile to be valid")
	}

	// Invalid: wrong CPU count
	wrongCPU := NewProfile()
	wrongCPU.NumCPU = 999
	if wrongCPU.IsValid() {
		t.Error("Expected profile with wrong CPU count to be invalid")
	}

	// Invalid: wrong architecture
	wrongArch := NewProfile()
	wrongArch.GOARCH = "invalid_arch"
	if wrongArch.IsValid() {
		t.Error("Expected profile with wrong GOARCH to be invalid")
	}

	// Invalid: wrong word size
	wrongWordSize := NewProfile()
	wrongWordSize.WordSize = 16
	if wrongWordSize.IsValid() {
		t.Error("Expected profile with wrong word size to be invalid")
	}

	// Invalid: other CPU features
	wrongFeatures := NewProfile()
	wrongFeatures.CPUFeatures = "none-of-these"
	if wrongFeatures.IsValid() {
		t.Error("Expected profile with other CPU features to be invalid")
	}

	// Invalid: wrong version
	wrongVersion := NewProfile()
	wrongVersion.ProfileVersion = 999
	if wrongVersion.IsValid() {
		t.Error("Expected profile with wrong version to be invalid")
	}

	// Nil profile
	var nilProfile *CalibrationProfile
	if nilProfile.IsValid() {
		t.Error("Expected nil profile to be invalid")
	}
}

func TestProfileIsStale(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	// Fresh profile should not be stale
	if profile.IsStale(time.Hour) {
		t.Error("Expected fresh profile to not be stale")
	}

	// Old profile should be stale
	profile.CalibratedAt = time.Now().Add(-2 * time.Hour)
	if !profile.IsStale(time.Hour) {
		t.Error("Expected old profile to be stale")
	}

	// Nil profile should be stale
	var nilProfile *CalibrationProfile
	if !nilProfile.IsStale(time.Hour) {
		t.Error("Expected nil profile to be stale")
	}
}

func TestProfileString(t *testing.T) {
	t.Parallel()
	profile := NewProfile()
	profile.Widths[64] = WidthThresholds{Basecase: 8, DC: 32, Large: 4096, Parallel: 1024}
	profile.Widths[32] = WidthThresholds{Basecase: 12, DC: 48, Large: 8192}

	str := profile.String()
	if str == "" {
		t.Error("String() returned empty string")
	}

	i32 := strings.Index(str, "32-bit limbs: basecase=12")
	i64 := strings.Index(str, "64-bit limbs: basecase=8 dc=32 large=4096 parallel=1024")
	if i32 < 0 || i64 < 0 {
		t.Fatalf("String() missing width lines:\n%s", str)
	}
	if i32 > i64 {
		t.Errorf("String() should list widths in ascending order:\n%s", str)
	}
}

func TestLoadNonExistentProfile(t *testing.T) {
	t.Parallel()
	_, err := LoadProfile("/nonexistent/path/to/profile.json")
	if err == nil {
		t.Error("Expected error loading nonexistent profile")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()
	tmpDir, err := os.MkdirTemp("", "mullo_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create file with invalid JSON
	invalidPath := filepath.Join(tmpDir, "invalid.json")
	if err := os.WriteFile(invalidPath, []byte("not valid json"), 0644); err != nil {
		t.Fatalf("Failed to write invalid file: %v", err)
	}

	_, err = LoadProfile(invalidPath)
	if err == nil {
		t.Error("Expected error loading invalid JSON")
	}
}

func TestLoadOrCreateProfile(t *testing.T) {
	t.Parallel()
	tmpDir, err := os.MkdirTemp("", "mullo_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	profilePath := filepath.Join(tmpDir, "profile.json")

	// First call should create new profile
	profile, loaded := LoadOrCreateProfile(profilePath)
	if loaded {
		t.Error("Expected loaded to be false for nonexistent file")
	}
	if profile == nil {
		t.Fatal("Expected profile to not be nil")
	}

	// Save the profile
	profile.Widths[64] = WidthThresholds{Parallel: 8192}
	if err := profile.SaveProfile(profilePath); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	// Second call should load existing profile
	profile2, loaded2 := LoadOrCreateProfile(profilePath)
	if !loaded2 {
		t.Error("Expected loaded to be true for existing file")
	}
	if profile2.Widths[64].Parallel != 8192 {
		t.Errorf("Loaded profile has wrong threshold: %d", profile2.Widths[64].Parallel)
	}

	// A profile from another host is replaced by a fresh one.
	profile2.NumCPU++
	if err := profile2.SaveProfile(profilePath); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}
	profile3, loaded3 := LoadOrCreateProfile(profilePath)
	if loaded3 {
		t.Error("Expected loaded to be false for a foreign profile")
	}
	if len(profile3.Widths) != 0 {
		t.Errorf("Fresh profile should be empty, got %v", profile3.Widths)
	}
}

func TestGetDefaultProfilePath(t *testing.T) {
	t.Parallel()
	path := GetDefaultProfilePath()
	if path == "" {
		t.Error("GetDefaultProfilePath returned empty string")
	}

	// Should end with the default filename
	if filepath.Base(path) != DefaultProfileFileName {
		t.Errorf("Path %s doesn't end with %s", path, DefaultProfileFileName)
	}
}

