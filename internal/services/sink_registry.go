package services

import (
	"context"

	"github.com/benmeehan/apmapper/internal/export"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/benmeehan/apmapper/pkg/mqtt"
	"github.com/benmeehan/apmapper/pkg/s3"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sink consumes the result of a run, for example by writing an export file.
type Sink interface {
	Name() string
	Write(ctx context.Context, report *models.Report) error
}

// SinkRegistry runs output sinks in registration order.
type SinkRegistry struct {
	sinks  *orderedmap.OrderedMap[string, Sink]
	logger zerolog.Logger
}

// NewSinkRegistry creates an empty SinkRegistry.
func NewSinkRegistry(logger zerolog.Logger) *SinkRegistry {
	return &SinkRegistry{
		sinks:  orderedmap.NewOrderedMap[string, Sink](),
		logger: logger,
	}
}

// Register adds a sink. A second sink with an already registered name is ignored.
func (r *SinkRegistry) Register(sink Sink) {
	if _, exists := r.sinks.Get(sink.Name()); exists {
		r.logger.Warn().Str("sink", sink.Name()).Msg("Sink is already registered")
		return
	}
	r.sinks.Set(sink.Name(), sink)
	r.logger.Debug().Str("sink", sink.Name()).Msg("Registered sink")
}

// Len returns the number of registered sinks.
func (r *SinkRegistry) Len() int {
	return r.sinks.Len()
}

// Names returns the registered sink names in execution order.
func (r *SinkRegistry) Names() []string {
	return r.sinks.Keys()
}

// WriteAll hands report to every sink in order. A failing sink is logged and counted and the
// remaining sinks still run; only cancellation of ctx stops the loop early.
func (r *SinkRegistry) WriteAll(ctx context.Context, report *models.Report) (failures int) {
	for el := r.sinks.Front(); el != nil; el = el.Next() {
		if ctx.Err() != nil {
			r.logger.Warn().Str("sink", el.Key).Msg("Run cancelled, skipping remaining sinks")
			return failures
		}

		if err := el.Value.Write(ctx, report); err != nil {
			failures++
			r.logger.Error().Err(err).Str("sink", el.Key).Msg("Sink failed")
			continue
		}
		r.logger.Info().Str("sink", el.Key).Msg("Sink completed")
	}
	return failures
}

// SinkClients carries the clients the remote sinks are built on.
type SinkClients struct {
	Files   file.FileOperations
	MQTT    *mqtt.MqttService
	Storage s3.ObjectStorageClient
}

// RegisterSinks registers the sinks enabled in config. File exports come first so the S3
// sink, registered last, finds every file written during the run.
func (r *SinkRegistry) RegisterSinks(config *utils.Config, clients SinkClients) {
	out := config.Output
	if out.CSV != "" {
		r.Register(export.NewCSVSink(out.CSV, false, clients.Files, r.logger))
	}
	if out.KML != "" {
		r.Register(export.NewKMLSink(out.KML, false, clients.Files, r.logger))
	}
	if out.Filter {
		if out.CSV == "" && out.KML == "" {
			r.logger.Warn().Msg("Filter requested without CSV or KML output, nothing to filter")
		}
		if out.CSV != "" {
			r.Register(export.NewCSVSink(export.FilteredPath(out.CSV), true, clients.Files, r.logger))
		}
		if out.KML != "" {
			r.Register(export.NewKMLSink(export.FilteredPath(out.KML), true, clients.Files, r.logger))
		}
	}
	if out.Wigle != "" {
		r.Register(export.NewWigleSink(out.Wigle, clients.Files, r.logger))
	}
	if out.SQLite != "" {
		r.Register(export.NewSQLiteSink(out.SQLite, r.logger))
	}
	if out.Metrics != "" {
		r.Register(export.NewMetricsSink(out.Metrics, r.logger))
	}

	if config.MQTT.Enabled && clients.MQTT != nil {
		opts := mqtt.Options{
			Broker:     config.MQTT.Broker,
			ClientID:   config.MQTT.ClientID,
			Username:   config.MQTT.Username,
			Password:   config.MQTT.Password,
			CACertPath: config.MQTT.CACertificate,
			Timeout:    config.MQTT.Timeout,
		}
		// Generate a unique MQTT Client ID by appending a UUID
		if opts.ClientID == "" {
			opts.ClientID = "apmapper"
		}
		opts.ClientID += "-" + uuid.New().String()
		connect := func() error { return clients.MQTT.Initialize(opts) }
		r.Register(NewMQTTSink(clients.MQTT, connect, config.MQTT.Topic, config.MQTT.QOS, config.MQTT.Timeout, r.logger))
	}

	if config.S3.Enabled && clients.Storage != nil {
		r.Register(NewS3Sink(clients.Storage, S3SinkConfig{
			Endpoint:  config.S3.Endpoint,
			AccessKey: config.S3.AccessKey,
			SecretKey: config.S3.SecretKey,
			UseSSL:    config.S3.UseSSL,
			Bucket:    config.S3.Bucket,
			Region:    config.S3.Region,
			Prefix:    config.S3.Prefix,
		}, r.logger))
	}
}
