// Package capture reads pcapng capture files and decodes their records into packets.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/internal/dot11"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/rs/zerolog"
)

// FileResult holds the packets decoded from one capture file.
type FileResult struct {
	Path      string
	Packets   []*models.Packet
	Records   int
	Malformed int
	// Err is set when the file could not be opened or its container header is corrupt.
	// A container error after the first record only truncates Packets.
	Err error
}

// Stats aggregates FileResults of a directory.
type Stats struct {
	Files       int
	FailedFiles int
	Records     int
	Decoded     int
	Malformed   int
}

// Result is the concatenation of every capture file of a directory in file-name order.
type Result struct {
	Packets []*models.Packet
	Stats   Stats
}

// Reader decodes capture files, one file per worker.
type Reader struct {
	fileOps file.FileOperations
	workers int
	logger  zerolog.Logger
}

// NewReader creates a Reader that decodes up to workers files at a time.
func NewReader(fileOps file.FileOperations, workers int, logger zerolog.Logger) *Reader {
	return &Reader{
		fileOps: fileOps,
		workers: workers,
		logger:  logger,
	}
}

// ReadDirectory decodes every *.pcapng file of dir. Files are processed in parallel but the
// packets are returned in sorted file order and, within a file, in record order.
func (r *Reader) ReadDirectory(ctx context.Context, dir string) (*Result, error) {
	paths, err := r.fileOps.ListFiles(dir, constants.CaptureFileExtension)
	if err != nil {
		return nil, err
	}
	r.logger.Info().Int("files", len(paths)).Str("directory", dir).Msg("Decoding capture files")

	files := utils.RunIndexed(ctx, r.workers, len(paths), func(ctx context.Context, i int) FileResult {
		return r.ReadFile(ctx, paths[i])
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Stats: Stats{Files: len(paths)}}
	for _, fr := range files {
		if fr.Err != nil {
			result.Stats.FailedFiles++
			r.logger.Error().Err(fr.Err).Str("file", fr.Path).Msg("Failed to read capture file")
			continue
		}
		result.Stats.Records += fr.Records
		result.Stats.Malformed += fr.Malformed
		result.Stats.Decoded += len(fr.Packets)
		result.Packets = append(result.Packets, fr.Packets...)
	}

	return result, nil
}

// ReadFile decodes a single capture file.
func (r *Reader) ReadFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path}

	rc, err := r.fileOps.Open(path)
	if err != nil {
		result.Err = fmt.Errorf("failed to open %s: %w", path, err)
		return result
	}
	defer rc.Close()

	if err := r.decode(ctx, rc, &result); err != nil {
		result.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return result
	}

	r.logger.Debug().
		Str("file", path).
		Int("records", result.Records).
		Int("packets", len(result.Packets)).
		Int("malformed", result.Malformed).
		Msg("Capture file decoded")
	return result
}

// decode fills result from a pcapng stream. Only errors of the section header are returned.
func (r *Reader) decode(ctx context.Context, rd io.Reader, result *FileResult) error {
	ng, err := pcapgo.NewNgReader(rd, pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return err
	}
	if lt := ng.LinkType(); lt != layers.LinkTypeIEEE80211Radio {
		r.logger.Warn().
			Str("file", result.Path).
			Str("link_type", lt.String()).
			Msg("Capture is not radiotap framed, records will likely not decode")
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		data, ci, err := ng.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("file", result.Path).
				Int("records", result.Records).
				Msg("Capture file ends with a damaged block, keeping records read so far")
			return nil
		}

		result.Records++
		packet, ok := dot11.Decode(data, ci.Timestamp)
		if !ok {
			result.Malformed++
			r.logger.Trace().Str("file", result.Path).Int("record", result.Records).Msg("Record skipped")
			continue
		}
		result.Packets = append(result.Packets, packet)
	}
}
