package track

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/benmeehan/apmapper/internal/models"
)

// NMEAStats counts what happened to the lines fed to an NMEAReader.
type NMEAStats struct {
	Lines     int
	Skipped   int
	Positions int
}

// NMEAReader accumulates fix date, fix time and coordinates across NMEA sentences and
// emits a position for every successfully parsed sentence once all four are known.
type NMEAReader struct {
	year     int
	month    int
	day      int
	fixTime  nmea.Time
	lat, lon float64
	hasDate  bool
	hasTime  bool
	hasFix   bool

	Stats NMEAStats
}

// NewNMEAReader returns an empty accumulator.
func NewNMEAReader() *NMEAReader {
	return &NMEAReader{}
}

// ParseLine feeds one line. It returns the current position when the line parsed and the
// accumulated state is complete. Malformed or unsupported lines are counted as skipped.
func (r *NMEAReader) ParseLine(line string) (models.Position, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return models.Position{}, false
	}
	r.Stats.Lines++

	// gpsd JSON reports are interleaved with raw sentences in some logs.
	if strings.HasPrefix(line, "{") {
		r.Stats.Skipped++
		return models.Position{}, false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		r.Stats.Skipped++
		return models.Position{}, false
	}

	switch s := sentence.(type) {
	case nmea.RMC:
		r.setTime(s.Time)
		if s.Date.Valid {
			r.setDate(2000+s.Date.YY, s.Date.MM, s.Date.DD)
		}
		r.setFix(s.Validity == nmea.ValidRMC, s.Latitude, s.Longitude)
	case nmea.GGA:
		r.setTime(s.Time)
		r.setFix(s.FixQuality != nmea.Invalid, s.Latitude, s.Longitude)
	case nmea.GLL:
		r.setTime(s.Time)
		r.setFix(s.Validity == nmea.ValidGLL, s.Latitude, s.Longitude)
	case nmea.ZDA:
		r.setTime(s.Time)
		if s.Year > 0 && s.Month > 0 && s.Day > 0 {
			r.setDate(int(s.Year), int(s.Month), int(s.Day))
		}
	}

	if !(r.hasDate && r.hasTime && r.hasFix) {
		return models.Position{}, false
	}

	r.Stats.Positions++
	return models.Position{
		Latitude:  r.lat,
		Longitude: r.lon,
		Timestamp: r.timestamp(),
	}, true
}

// ReadAll feeds every line of rd and returns the emitted positions in input order.
func (r *NMEAReader) ReadAll(rd io.Reader) ([]models.Position, error) {
	var positions []models.Position
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		if pos, ok := r.ParseLine(scanner.Text()); ok {
			positions = append(positions, pos)
		}
	}
	if err := scanner.Err(); err != nil {
		return positions, fmt.Errorf("failed to scan NMEA input: %w", err)
	}
	return positions, nil
}

func (r *NMEAReader) setTime(t nmea.Time) {
	if t.Valid {
		r.fixTime = t
		r.hasTime = true
	}
}

func (r *NMEAReader) setDate(year, month, day int) {
	r.year, r.month, r.day = year, month, day
	r.hasDate = true
}

// setFix records the coordinates of a position sentence. A sentence without a valid fix
// clears the previous one, so nothing is emitted until the receiver reacquires.
func (r *NMEAReader) setFix(valid bool, lat, lon float64) {
	r.lat, r.lon = lat, lon
	r.hasFix = valid
}

// timestamp combines the date with the fix time as UTC epoch seconds.
func (r *NMEAReader) timestamp() int64 {
	return time.Date(
		r.year, time.Month(r.month), r.day,
		r.fixTime.Hour, r.fixTime.Minute, r.fixTime.Second, 0,
		time.UTC,
	).Unix()
}
