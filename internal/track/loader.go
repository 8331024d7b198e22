package track

import (
	"context"
	"fmt"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/rs/zerolog"
)

// LoadResult is the merged track of a directory plus parsing diagnostics.
type LoadResult struct {
	Track       *Track
	Files       int
	FailedFiles int
	Stats       NMEAStats
}

// Loader discovers NMEA logs in a directory and builds one Track from them.
type Loader struct {
	fileOps file.FileOperations
	logger  zerolog.Logger
}

// NewLoader creates a Loader.
func NewLoader(fileOps file.FileOperations, logger zerolog.Logger) *Loader {
	return &Loader{
		fileOps: fileOps,
		logger:  logger,
	}
}

// Load reads every *.nmea file of dir. Each file gets its own accumulator so a date or fix
// from one log never stamps sentences of another. A file that cannot be opened is logged and
// skipped; an unreadable directory is an error.
func (l *Loader) Load(ctx context.Context, dir string) (*LoadResult, error) {
	paths, err := l.fileOps.ListFiles(dir, constants.TrackFileExtension)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{Files: len(paths)}
	var positions []models.Position
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		filePositions, stats, err := l.loadFile(path)
		result.Stats.Lines += stats.Lines
		result.Stats.Skipped += stats.Skipped
		result.Stats.Positions += stats.Positions
		if err != nil {
			result.FailedFiles++
			l.logger.Error().Err(err).Str("file", path).Msg("Failed to read GPS track file")
			continue
		}

		l.logger.Debug().
			Str("file", path).
			Int("lines", stats.Lines).
			Int("skipped", stats.Skipped).
			Int("positions", len(filePositions)).
			Msg("GPS track file parsed")
		positions = append(positions, filePositions...)
	}

	result.Track = NewTrack(positions)
	return result, nil
}

func (l *Loader) loadFile(path string) ([]models.Position, NMEAStats, error) {
	rc, err := l.fileOps.Open(path)
	if err != nil {
		return nil, NMEAStats{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()

	reader := NewNMEAReader()
	positions, err := reader.ReadAll(rc)
	return positions, reader.Stats, err
}
