package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benmeehan/apmapper/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	ended_at    TEXT NOT NULL,
	directory   TEXT NOT NULL,
	summary     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS access_points (
	run_id       TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	mac          TEXT NOT NULL,
	ssid         TEXT,
	security     TEXT NOT NULL,
	channel      INTEGER,
	vendor       TEXT,
	password     TEXT,
	latitude     REAL,
	longitude    REAL,
	method       TEXT,
	observations INTEGER NOT NULL,
	min_rssi     INTEGER,
	max_rssi     INTEGER,
	avg_rssi     REAL,
	PRIMARY KEY (run_id, mac)
);
CREATE TABLE IF NOT EXISTS observations (
	run_id    TEXT NOT NULL,
	mac       TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL,
	rssi      INTEGER NOT NULL,
	distance  REAL NOT NULL,
	FOREIGN KEY (run_id, mac) REFERENCES access_points(run_id, mac) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_observations_ap ON observations(run_id, mac);
`

// SQLiteStore persists runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an open handle whose schema is already in place.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// DB exposes the underlying handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores the run summary, every access point and its observations in one
// transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, report *models.Report) error {
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("failed to serialize run summary: %w", err)
	}

	return s.transaction(ctx, func(tx *sql.Tx) error {
		run := report.Summary
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (run_id, started_at, ended_at, directory, summary) VALUES (?, ?, ?, ?, ?)`,
			run.RunID, run.StartedAt.UTC().Format(time.RFC3339), run.EndedAt.UTC().Format(time.RFC3339), run.Directory, string(summary),
		); err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		apStmt, err := tx.PrepareContext(ctx, `INSERT INTO access_points
			(run_id, mac, ssid, security, channel, vendor, password, latitude, longitude, method, observations, min_rssi, max_rssi, avg_rssi)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer apStmt.Close()

		obsStmt, err := tx.PrepareContext(ctx, `INSERT INTO observations
			(run_id, mac, timestamp, latitude, longitude, rssi, distance) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer obsStmt.Close()

		for _, ap := range report.AccessPoints {
			if err := insertAccessPoint(ctx, apStmt, run.RunID, ap); err != nil {
				return fmt.Errorf("failed to insert access point %s: %w", ap.MAC, err)
			}
			for _, obs := range ap.Observations {
				if _, err := obsStmt.ExecContext(ctx, run.RunID, ap.MAC.String(), obs.Position.Timestamp,
					obs.Position.Latitude, obs.Position.Longitude, int(obs.SignalStrength), obs.Distance); err != nil {
					return fmt.Errorf("failed to insert observation of %s: %w", ap.MAC, err)
				}
			}
		}
		return nil
	})
}

func insertAccessPoint(ctx context.Context, stmt *sql.Stmt, runID string, ap *models.AccessPoint) error {
	var lat, lon sql.NullFloat64
	if ap.EstimatedPosition != nil {
		lat = sql.NullFloat64{Float64: ap.EstimatedPosition.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: ap.EstimatedPosition.Longitude, Valid: true}
	}
	var minRSSI, maxRSSI sql.NullInt64
	var avgRSSI sql.NullFloat64
	if stats, ok := ap.SignalStats(); ok {
		minRSSI = sql.NullInt64{Int64: int64(stats.Min), Valid: true}
		maxRSSI = sql.NullInt64{Int64: int64(stats.Max), Valid: true}
		avgRSSI = sql.NullFloat64{Float64: stats.Avg, Valid: true}
	}
	var channel sql.NullInt64
	if ap.Channel != nil {
		channel = sql.NullInt64{Int64: int64(*ap.Channel), Valid: true}
	}

	_, err := stmt.ExecContext(ctx,
		runID, ap.MAC.String(), nullString(ap.SSID), ap.SecurityOrUnknown().String(), channel,
		nullString(ap.Vendor), nullString(ap.Password), lat, lon, nullString(ap.PositionMethod),
		len(ap.Observations), minRSSI, maxRSSI, avgRSSI,
	)
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *SQLiteStore) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
