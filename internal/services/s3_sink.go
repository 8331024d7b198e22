package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/pkg/s3"
	"github.com/rs/zerolog"
)

// S3SinkConfig locates the bucket receiving export files.
type S3SinkConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	Prefix    string
}

// S3Sink uploads the export files written earlier in the run.
type S3Sink struct {
	client s3.ObjectStorageClient
	config S3SinkConfig
	logger zerolog.Logger
}

// NewS3Sink creates an S3Sink.
func NewS3Sink(client s3.ObjectStorageClient, config S3SinkConfig, logger zerolog.Logger) *S3Sink {
	if config.Region == "" {
		config.Region = constants.DefaultS3Region
	}
	return &S3Sink{
		client: client,
		config: config,
		logger: logger,
	}
}

// Name implements Sink.
func (s *S3Sink) Name() string {
	return "s3"
}

// Write uploads every file in report.Files under <prefix>/<run id>/.
func (s *S3Sink) Write(ctx context.Context, report *models.Report) error {
	if len(report.Files) == 0 {
		s.logger.Info().Msg("No export files to upload")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultS3UploadTimeout)
	defer cancel()

	if err := s.client.Connect(ctx, s.config.Endpoint, s.config.AccessKey, s.config.SecretKey, s.config.UseSSL); err != nil {
		return err
	}
	if err := s.client.EnsureBucket(ctx, s.config.Bucket, s.config.Region); err != nil {
		return err
	}

	var errs []error
	for _, file := range report.Files {
		objectName := ObjectName(s.config.Prefix, report.Summary.RunID, file)
		result, err := s.client.UploadFile(ctx, s.config.Bucket, objectName, file, ContentType(file))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.logger.Info().
			Str("file", file).
			Str("object", result.ObjectName).
			Int64("size", result.Size).
			Str("url", result.PresignedURL).
			Msg("Export file uploaded")
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to upload %d of %d files: %w", len(errs), len(report.Files), err)
	}
	return nil
}

// ObjectName returns the object key of a local file for a run.
func ObjectName(prefix, runID, file string) string {
	return path.Join(prefix, runID, filepath.Base(file))
}

// ContentType guesses the MIME type of an export file from its extension.
func ContentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		return "text/csv"
	case ".kml":
		return "application/vnd.google-earth.kml+xml"
	case ".db", ".sqlite":
		return "application/vnd.sqlite3"
	default:
		return "application/octet-stream"
	}
}
