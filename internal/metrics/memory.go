package metrics

import (
	"runtime"
	"sync/atomic"
	"time"
)

// MemorySnapshot is the part of runtime.MemStats that calibration reports.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes of live and not yet swept heap objects
	HeapObjects  uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// MemoryDelta is the change between two snapshots.
type MemoryDelta struct {
	HeapObjects int64
	GCCycles    uint32
	GCPause     time.Duration
}

// Delta returns after minus before.
func Delta(before, after MemorySnapshot) MemoryDelta {
	return MemoryDelta{
		HeapObjects: int64(after.HeapObjects) - int64(before.HeapObjects),
		GCCycles:    after.NumGC - before.NumGC,
		GCPause:     time.Duration(after.PauseTotalNs - before.PauseTotalNs),
	}
}

// MemoryCollector reads runtime memory statistics and remembers the largest
// HeapAlloc among its snapshots. The value is a lower bound on the true
// peak, since the heap may grow and shrink between snapshots. It is safe
// for concurrent use.
type MemoryCollector struct {
	maxHeap atomic.Uint64
}

// NewMemoryCollector creates a collector with no snapshots recorded.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads the current statistics and records HeapAlloc. It stops
// the world briefly, so callers keep it out of timed regions.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	for {
		cur := mc.maxHeap.Load()
		if m.HeapAlloc <= cur || mc.maxHeap.CompareAndSwap(cur, m.HeapAlloc) {
			break
		}
	}
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapObjects:  m.HeapObjects,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// MaxHeapAlloc returns the largest HeapAlloc seen by Snapshot, or zero
// before the first one.
func (mc *MemoryCollector) MaxHeapAlloc() uint64 {
	return mc.maxHeap.Load()
}
