// Command generate-golden writes the low-product test vectors consumed by
// internal/natmul. Operands come from a splitmix64 stream and expected
// values from math/big, so the vectors never depend on the code under test.
//
//	go run ./cmd/generate-golden -out internal/natmul/testdata/lowproduct_golden.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"

	apperrors "github.com/agbru/mullo/internal/errors"
	"github.com/agbru/mullo/internal/logging"
)

// defaultSeed spells "mullo" in ASCII.
const defaultSeed uint64 = 0x6d756c6c6f

// defaultSizes are the limb counts written for each width. They cross the
// static basecase and divide-and-conquer thresholds of both widths.
var defaultSizes = func() []int {
	var sizes []int
	for n := 1; n <= 33; n++ {
		sizes = append(sizes, n)
	}
	return append(sizes, 48, 64, 65, 100, 128, 200, 300)
}()

type goldenCase struct {
	Width int    `json:"width"`
	N     int    `json:"n"`
	X     string `json:"x"`
	Y     string `json:"y"`
	Low   string `json:"low"`
}

type goldenFile struct {
	Generator string       `json:"generator"`
	Seed      uint64       `json:"seed"`
	Cases     []goldenCase `json:"cases"`
}

type splitMix64 struct{ state uint64 }

func (s *splitMix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// operand draws n limbs of the given width, least significant first.
func operand(rng *splitMix64, n, width int) *big.Int {
	v := new(big.Int)
	limb := new(big.Int)
	for i := 0; i < n; i++ {
		w := rng.next()
		if width == 32 {
			w &= 0xFFFFFFFF
		}
		limb.SetUint64(w)
		v.Or(v, limb.Lsh(limb, uint(i*width)))
	}
	return v
}

// lowProduct returns x·y mod 2^(n·width).
func lowProduct(x, y *big.Int, n, width int) *big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(n*width))
	mask.Sub(mask, big.NewInt(1))
	p := new(big.Int).Mul(x, y)
	return p.And(p, mask)
}

func hexDigits(v *big.Int, n, width int) string {
	return fmt.Sprintf("%0*x", n*width/4, v)
}

func generate(seed uint64, sizes []int) goldenFile {
	rng := &splitMix64{state: seed}
	out := goldenFile{Generator: "splitmix64", Seed: seed}
	for _, width := range []int{32, 64} {
		for _, n := range sizes {
			x := operand(rng, n, width)
			y := operand(rng, n, width)
			out.Cases = append(out.Cases, goldenCase{
				Width: width,
				N:     n,
				X:     hexDigits(x, n, width),
				Y:     hexDigits(y, n, width),
				Low:   hexDigits(lowProduct(x, y, n, width), n, width),
			})
		}
	}
	return out
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run parses args, writes the vectors and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("generate-golden", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seed := fs.Uint64("seed", defaultSeed, "splitmix64 seed")
	path := fs.String("out", "internal/natmul/testdata/lowproduct_golden.json", "output file")
	plain := fs.Bool("plain", false, "log with the standard library logger instead of zerolog")
	if err := fs.Parse(args); err != nil {
		return apperrors.ExitErrorConfig
	}

	var logger logging.Logger = logging.NewLogger(stderr, "generate-golden")
	if *plain {
		logger = logging.NewStdLoggerAdapter(log.New(stderr, "generate-golden: ", 0))
	}

	if *path == "" {
		logger.Error("invalid flags", apperrors.ValidationError{Field: "out", Message: "must not be empty"})
		return apperrors.ExitErrorConfig
	}

	data, err := json.MarshalIndent(generate(*seed, defaultSizes), "", "  ")
	if err != nil {
		logger.Error("encoding vectors failed", err)
		return apperrors.ExitErrorGeneric
	}
	if err := os.WriteFile(*path, append(data, '\n'), 0o644); err != nil {
		logger.Error("writing vectors failed", err, logging.String("path", *path))
		return apperrors.ExitErrorGeneric
	}
	logger.Info("golden vectors written",
		logging.String("path", *path),
		logging.Int("cases", 2*len(defaultSizes)),
		logging.Uint64("seed", *seed))
	return apperrors.ExitSuccess
}
