package metrics_collectors

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
)

// GoroutineMetricCollector reports the goroutines alive when the run ends.
type GoroutineMetricCollector struct {
	Logger zerolog.Logger
}

func (g *GoroutineMetricCollector) Name() string {
	return "goroutines"
}

func (g *GoroutineMetricCollector) Collect(ctx context.Context) any {
	n := float64(runtime.NumGoroutine())
	g.Logger.Debug().Float64("goroutines", n).Msg("Goroutine count collected")
	return &n
}

func (g *GoroutineMetricCollector) Unit() string {
	return "count"
}

func (g *GoroutineMetricCollector) Description() string {
	return "Goroutines alive at the end of the run."
}

// HeapMetricCollector reports the live Go heap, dominated by the decoded packets.
type HeapMetricCollector struct {
	Logger zerolog.Logger
}

func (h *HeapMetricCollector) Name() string {
	return "go_heap"
}

func (h *HeapMetricCollector) Collect(ctx context.Context) any {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	heap := float64(stats.HeapAlloc)
	h.Logger.Debug().Float64("heap_bytes", heap).Msg("Heap size collected")
	return &heap
}

func (h *HeapMetricCollector) Unit() string {
	return "bytes"
}

func (h *HeapMetricCollector) Description() string {
	return "Bytes of allocated heap objects."
}
