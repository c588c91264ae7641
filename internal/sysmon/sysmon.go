// Package sysmon samples system-wide CPU and memory load. Calibration uses
// it to flag timings taken on a busy host.
package sysmon

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// BusyCPUPercent is the system CPU load above which crossover timings are
// considered unreliable.
const BusyCPUPercent = 50.0

// Load holds a single snapshot of system-wide resource usage.
type Load struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a system-wide CPU and memory snapshot. CPU usage is
// measured over interval, blocking for it unless ctx ends first; a zero
// interval reports the delta since the previous call. The only error is
// ctx's. Fields are zero when the platform does not report them.
func Sample(ctx context.Context, interval time.Duration) (Load, error) {
	var l Load
	pcts, err := cpu.PercentWithContext(ctx, interval, false)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Load{}, ctxErr
	}
	if err == nil && len(pcts) > 0 {
		l.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		l.MemPercent = vmem.UsedPercent
	}
	return l, nil
}

// Busy reports whether other work on the host is likely to disturb timing.
func (l Load) Busy() bool {
	return l.CPUPercent > BusyCPUPercent
}
