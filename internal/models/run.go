package models

import "time"

// RunSummary carries the diagnostics of one mapping run.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Directory string    `json:"directory"`

	// Capture decoding
	CaptureFiles     int `json:"capture_files"`
	FailedFiles      int `json:"failed_files"`
	Records          int `json:"records"`
	DecodedPackets   int `json:"decoded_packets"`
	MalformedRecords int `json:"malformed_records"`

	// GPS
	TrackFiles   int `json:"track_files"`
	TrackLines   int `json:"track_lines"`
	SkippedLines int `json:"skipped_lines"`
	Positions    int `json:"positions"`

	// Aggregation
	DroppedNoAddress  int `json:"dropped_no_address"`
	DroppedNoSignal   int `json:"dropped_no_signal"`
	DroppedNoPosition int `json:"dropped_no_position"`
	AccessPoints      int `json:"access_points"`

	// Estimation
	MethodCounts map[string]int `json:"method_counts"`
	Vendors      int            `json:"vendors"`
	Passwords    int            `json:"passwords"`

	// Outputs
	SinkFailures int `json:"sink_failures"`

	// Process metrics collected at the end of the run
	Metrics map[string]Metric `json:"metrics,omitempty"`
}
