// Package format renders measurements for logs and profiles.
package format

import (
	"fmt"
	"time"
)

// Timing formats d with a unit suited to its magnitude: whole nanoseconds
// below a microsecond, whole microseconds below a millisecond, whole
// milliseconds below a second, and time.Duration's own form above.
func Timing(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

// Ratio formats a/b as a speedup factor, e.g. "1.37x". A zero b yields "n/a".
func Ratio(a, b time.Duration) string {
	if b == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", float64(a)/float64(b))
}
