package export

import (
	"context"
	"fmt"

	"github.com/benmeehan/apmapper/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const metricsNamespace = "apmapper"

// MetricsSink writes the run summary in the Prometheus text format, for the node_exporter
// textfile collector.
type MetricsSink struct {
	path   string
	logger zerolog.Logger
}

// NewMetricsSink creates a sink writing to path, which should end in ".prom".
func NewMetricsSink(path string, logger zerolog.Logger) *MetricsSink {
	return &MetricsSink{path: path, logger: logger}
}

// Name implements the sink interface.
func (s *MetricsSink) Name() string {
	return "metrics"
}

// Write gathers the summary into a fresh registry and writes it atomically.
func (s *MetricsSink) Write(ctx context.Context, report *models.Report) error {
	registry, err := SummaryRegistry(report.Summary)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(s.path, registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", s.path, err)
	}

	report.AddFile(s.path)
	s.logger.Info().Str("file", s.path).Msg("Run metrics written")
	return nil
}

// SummaryRegistry exposes the counters of summary as gauges.
func SummaryRegistry(summary *models.RunSummary) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	gauges := []struct {
		name  string
		help  string
		value float64
	}{
		{"capture_files", "Capture files found in the input directory.", float64(summary.CaptureFiles)},
		{"failed_capture_files", "Capture files that could not be read.", float64(summary.FailedFiles)},
		{"records", "Capture records read.", float64(summary.Records)},
		{"decoded_packets", "Records decoded into access point packets.", float64(summary.DecodedPackets)},
		{"malformed_records", "Records dropped as malformed.", float64(summary.MalformedRecords)},
		{"positions", "GPS positions parsed from the NMEA logs.", float64(summary.Positions)},
		{"skipped_nmea_lines", "NMEA lines that did not parse.", float64(summary.SkippedLines)},
		{"packets_without_position", "Packets outside the GPS track.", float64(summary.DroppedNoPosition)},
		{"access_points", "Unique access points observed.", float64(summary.AccessPoints)},
		{"vendors", "Access points with a known vendor.", float64(summary.Vendors)},
		{"passwords", "Access points with a recovered password.", float64(summary.Passwords)},
		{"sink_failures", "Output sinks that failed.", float64(summary.SinkFailures)},
		{"run_duration_seconds", "Duration of the run.", summary.EndedAt.Sub(summary.StartedAt).Seconds()},
		{"run_timestamp_seconds", "End of the run as a Unix timestamp.", float64(summary.EndedAt.Unix())},
	}
	for _, g := range gauges {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      g.name,
			Help:      g.help,
		})
		gauge.Set(g.value)
		if err := registry.Register(gauge); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", g.name, err)
		}
	}

	methods := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "estimated_access_points",
		Help:      "Access points with an estimated position, by estimation method.",
	}, []string{"method"})
	for _, method := range []string{models.MethodSingle, models.MethodWeightedCentroid, models.MethodTrilateration} {
		methods.WithLabelValues(method).Set(float64(summary.MethodCounts[method]))
	}

	process := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "process_metric",
		Help:      "Process and host metrics collected at the end of the run.",
	}, []string{"name", "unit"})
	for name, metric := range summary.Metrics {
		if v, ok := metricValue(metric.Value); ok {
			process.WithLabelValues(name, metric.Unit).Set(v)
		}
	}

	for _, c := range []prometheus.Collector{methods, process} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func metricValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case *float64:
		if value == nil {
			return 0, false
		}
		return *value, true
	case int:
		return float64(value), true
	case uint64:
		return float64(value), true
	default:
		return 0, false
	}
}
