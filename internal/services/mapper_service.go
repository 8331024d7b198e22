package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benmeehan/apmapper/internal/capture"
	"github.com/benmeehan/apmapper/internal/enrichment"
	"github.com/benmeehan/apmapper/internal/geo"
	"github.com/benmeehan/apmapper/internal/metrics_collectors"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/track"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MapperService runs one mapping pass over a capture directory.
type MapperService struct {
	config  *utils.Config
	fileOps file.FileOperations
	runner  enrichment.CommandRunner
	sinks   *SinkRegistry
	metrics *metrics_collectors.MetricsRegistry
	logger  zerolog.Logger
}

// NewMapperService creates a MapperService. metrics may be nil to skip process metrics.
func NewMapperService(
	config *utils.Config,
	fileOps file.FileOperations,
	runner enrichment.CommandRunner,
	sinks *SinkRegistry,
	metrics *metrics_collectors.MetricsRegistry,
	logger zerolog.Logger,
) *MapperService {
	return &MapperService{
		config:  config,
		fileOps: fileOps,
		runner:  runner,
		sinks:   sinks,
		metrics: metrics,
		logger:  logger,
	}
}

// Directory returns the input directory with trailing slashes removed.
func (s *MapperService) Directory() string {
	dir := strings.TrimRight(s.config.Input.Directory, "/")
	if dir == "" && strings.HasPrefix(s.config.Input.Directory, "/") {
		return "/"
	}
	if dir == "" {
		return "."
	}
	return dir
}

// Run loads the GPS track, decodes the captures, groups packets by access point, enriches
// them, estimates their positions and hands the result to the sinks. Only an unreadable
// input directory or cancellation of ctx make it fail.
func (s *MapperService) Run(ctx context.Context) (*models.Report, error) {
	dir := s.Directory()
	summary := &models.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Directory: dir,
	}
	logger := s.logger.With().Str("run_id", summary.RunID).Logger()
	logger.Info().Str("directory", dir).Msg("Starting mapping run")

	loaded, err := track.NewLoader(s.fileOps, logger).Load(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load GPS tracks: %w", err)
	}
	summary.TrackFiles = loaded.Files
	summary.TrackLines = loaded.Stats.Lines
	summary.SkippedLines = loaded.Stats.Skipped
	summary.Positions = loaded.Track.Len()
	logger.Info().Int("positions", summary.Positions).Int("files", loaded.Files).Msg("Found positions")

	decoded, err := capture.NewReader(s.fileOps, s.config.Input.DecodeWorkers, logger).ReadDirectory(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read captures: %w", err)
	}
	summary.CaptureFiles = decoded.Stats.Files
	summary.FailedFiles = decoded.Stats.FailedFiles
	summary.Records = decoded.Stats.Records
	summary.DecodedPackets = decoded.Stats.Decoded
	summary.MalformedRecords = decoded.Stats.Malformed
	logger.Info().Int("packets", len(decoded.Packets)).Msg("Found access point packets")

	pathLoss := geo.PathLoss{
		RSSIAt1m: s.config.Model.RSSIAt1m,
		Exponent: s.config.Model.PathLossExponent,
	}
	aps, dropped := NewAggregationService(pathLoss, logger).Aggregate(decoded.Packets, loaded.Track)
	summary.DroppedNoAddress = dropped.DroppedNoAddress
	summary.DroppedNoSignal = dropped.DroppedNoSignal
	summary.DroppedNoPosition = dropped.DroppedNoPosition
	summary.AccessPoints = len(aps)
	logger.Info().Int("access_points", len(aps)).Msg("Found unique access points")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary.Vendors = s.bindVendors(aps, logger)

	if s.config.Enrichment.HashcatEnabled {
		hashcat := enrichment.NewHashcatEnricher(s.fileOps, s.runner, s.config.Enrichment.HashcatTimeout, logger)
		summary.Passwords = hashcat.Enrich(ctx, dir, aps)
		logger.Info().Int("access_points", summary.Passwords).Msg("Bound passwords to access points")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	LogObservationStatistics(aps, logger)

	filter := NewSpatialFilter(s.config.Model.MinObservationSpacing)
	params := geo.TrilaterationParams{
		MaxIterations:        s.config.Model.MaxIterations,
		LearningRate:         s.config.Model.LearningRate,
		ConvergenceThreshold: s.config.Model.ConvergenceThreshold,
	}
	summary.MethodCounts = NewEstimationService(filter, params, logger).EstimateAll(aps)

	report := &models.Report{Summary: summary, AccessPoints: aps}
	if s.metrics != nil {
		summary.Metrics = s.metrics.CollectAll(ctx)
	}
	summary.EndedAt = time.Now().UTC()

	if s.sinks != nil && s.sinks.Len() > 0 {
		summary.SinkFailures = s.sinks.WriteAll(ctx, report)
	}

	s.logSummary(summary, logger)
	return report, ctx.Err()
}

func (s *MapperService) bindVendors(aps []*models.AccessPoint, logger zerolog.Logger) int {
	vendors := enrichment.NewVendorLookup(logger)
	path := s.config.Enrichment.VendorFile
	if path != "" {
		if err := vendors.LoadFile(s.fileOps, path); err != nil {
			logger.Error().Err(err).Msg("Failed to load vendor file, using the embedded table")
			path = ""
		}
	}
	if path == "" {
		logger.Warn().
			Int("entries", vendors.Len()).
			Msg("Only the built-in vendor sample is loaded, set enrichment.vendor_file to a full OUI registry")
	}
	bound := vendors.BindVendors(aps)
	logger.Info().Int("access_points", bound).Msg("Bound vendors to access points")
	return bound
}

func (s *MapperService) logSummary(summary *models.RunSummary, logger zerolog.Logger) {
	methods := zerolog.Dict()
	for method, count := range summary.MethodCounts {
		methods.Int(method, count)
	}

	logger.Info().
		Int("capture_files", summary.CaptureFiles).
		Int("failed_files", summary.FailedFiles).
		Int("records", summary.Records).
		Int("decoded", summary.DecodedPackets).
		Int("malformed", summary.MalformedRecords).
		Int("positions", summary.Positions).
		Int("skipped_lines", summary.SkippedLines).
		Int("no_position", summary.DroppedNoPosition).
		Int("access_points", summary.AccessPoints).
		Dict("methods", methods).
		Int("sink_failures", summary.SinkFailures).
		Dur("elapsed", summary.EndedAt.Sub(summary.StartedAt)).
		Msg("Mapping run finished")
}
