package models

// Metric is one value collected at the end of a run.
type Metric struct {
	Value any    `json:"value"`
	Unit  string `json:"unit"`
}
