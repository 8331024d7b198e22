package models

// Report is what output sinks receive at the end of a run.
type Report struct {
	Summary      *RunSummary
	AccessPoints []*AccessPoint
	// Files lists the export files written so far, in write order.
	Files []string
}

// AddFile records an export file produced by a sink.
func (r *Report) AddFile(path string) {
	r.Files = append(r.Files, path)
}

// Estimated returns the access points that received a position estimate.
func (r *Report) Estimated() []*AccessPoint {
	var aps []*AccessPoint
	for _, ap := range r.AccessPoints {
		if ap.EstimatedPosition != nil {
			aps = append(aps, ap)
		}
	}
	return aps
}
