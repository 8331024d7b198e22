package export

import (
	"context"
	"fmt"
	"io"

	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/rs/zerolog"
)

// WriteFunc renders access points to w.
type WriteFunc func(w io.Writer, aps []*models.AccessPoint) error

// FileSink writes one export file per run.
type FileSink struct {
	name     string
	path     string
	filtered bool
	write    WriteFunc
	fileOps  file.FileOperations
	logger   zerolog.Logger
}

// NewFileSink creates a sink writing to path. With filtered set, only accessible access
// points are written.
func NewFileSink(name, path string, filtered bool, write WriteFunc, fileOps file.FileOperations, logger zerolog.Logger) *FileSink {
	return &FileSink{
		name:     name,
		path:     path,
		filtered: filtered,
		write:    write,
		fileOps:  fileOps,
		logger:   logger,
	}
}

// NewCSVSink creates the CSV export sink.
func NewCSVSink(path string, filtered bool, fileOps file.FileOperations, logger zerolog.Logger) *FileSink {
	return NewFileSink(sinkName("csv", filtered), path, filtered, WriteCSV, fileOps, logger)
}

// NewKMLSink creates the KML export sink.
func NewKMLSink(path string, filtered bool, fileOps file.FileOperations, logger zerolog.Logger) *FileSink {
	return NewFileSink(sinkName("kml", filtered), path, filtered, WriteKML, fileOps, logger)
}

// NewWigleSink creates the WiGLE export sink.
func NewWigleSink(path string, fileOps file.FileOperations, logger zerolog.Logger) *FileSink {
	return NewFileSink("wigle", path, false, WriteWigle, fileOps, logger)
}

func sinkName(kind string, filtered bool) string {
	if filtered {
		return kind + "_filtered"
	}
	return kind
}

// Name implements the sink interface.
func (s *FileSink) Name() string {
	return s.name
}

// Path returns the output file.
func (s *FileSink) Path() string {
	return s.path
}

// Write renders the report's access points into the output file.
func (s *FileSink) Write(ctx context.Context, report *models.Report) error {
	aps := report.AccessPoints
	if s.filtered {
		aps = FilterAccessible(aps)
	}

	err := s.fileOps.WriteFileAtomic(s.path, func(w io.Writer) error {
		return s.write(w, aps)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	report.AddFile(s.path)
	s.logger.Info().Str("file", s.path).Int("access_points", len(aps)).Msg("Exported results")
	return nil
}

// SQLiteSink appends the run to a SQLite database.
type SQLiteSink struct {
	path   string
	logger zerolog.Logger
}

// NewSQLiteSink creates a sink for the database at path.
func NewSQLiteSink(path string, logger zerolog.Logger) *SQLiteSink {
	return &SQLiteSink{path: path, logger: logger}
}

// Name implements the sink interface.
func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Write stores the report in the database.
func (s *SQLiteSink) Write(ctx context.Context, report *models.Report) error {
	store, err := OpenSQLite(ctx, s.path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveRun(ctx, report); err != nil {
		return err
	}

	report.AddFile(s.path)
	s.logger.Info().Str("file", s.path).Str("run_id", report.Summary.RunID).Msg("Run stored in database")
	return nil
}
