package metrics_collectors

import (
	"context"
	"sort"

	"github.com/benmeehan/apmapper/internal/models"
	"github.com/rs/zerolog"
)

// MetricsRegistry manages the metric collectors of a run.
type MetricsRegistry struct {
	collectors map[string]MetricCollector
}

// NewMetricsRegistry creates a new MetricsRegistry instance.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		collectors: make(map[string]MetricCollector),
	}
}

// Register adds a new metric collector to the registry, replacing one with the same name.
func (r *MetricsRegistry) Register(collector MetricCollector) {
	r.collectors[collector.Name()] = collector
}

// GetCollectors returns all the metric collectors registered in the registry.
func (r *MetricsRegistry) GetCollectors() map[string]MetricCollector {
	return r.collectors
}

// Names returns the registered collector names, sorted.
func (r *MetricsRegistry) Names() []string {
	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CollectAll runs every collector. Collectors returning nil are left out.
func (r *MetricsRegistry) CollectAll(ctx context.Context) map[string]models.Metric {
	metrics := make(map[string]models.Metric, len(r.collectors))
	for _, name := range r.Names() {
		collector := r.collectors[name]
		value := collector.Collect(ctx)
		if value == nil {
			continue
		}
		metrics[name] = models.Metric{Value: value, Unit: collector.Unit()}
	}
	return metrics
}

// NewRunRegistry registers the collectors describing a mapping run: own process memory and
// CPU time, goroutines, Go heap, system memory and disk usage of the directory holding the outputs.
func NewRunRegistry(outputDir string, logger zerolog.Logger) *MetricsRegistry {
	registry := NewMetricsRegistry()
	registry.Register(&ProcessMemoryCollector{Logger: logger})
	registry.Register(&ProcessCPUCollector{Logger: logger})
	registry.Register(&GoroutineMetricCollector{Logger: logger})
	registry.Register(&HeapMetricCollector{Logger: logger})
	registry.Register(&MemoryMetricCollector{Logger: logger})
	registry.Register(&DiskMetricCollector{Logger: logger, Path: outputDir})
	return registry
}
