package track

import (
	"sort"

	"github.com/benmeehan/apmapper/internal/models"
)

// Track is a time-ordered sequence of GPS fixes.
type Track struct {
	fixes []models.Position
}

// NewTrack copies fixes and sorts them ascending by timestamp. Fixes sharing a timestamp
// keep their input order.
func NewTrack(fixes []models.Position) *Track {
	sorted := make([]models.Position, len(fixes))
	copy(sorted, fixes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return &Track{fixes: sorted}
}

// Len returns the number of fixes.
func (t *Track) Len() int {
	return len(t.fixes)
}

// Fixes returns the sorted fixes. Callers must not modify the slice.
func (t *Track) Fixes() []models.Position {
	return t.fixes
}

// At interpolates the position at ts (epoch seconds).
//
// A single-fix track always answers with that fix unchanged. Otherwise the first pair of
// consecutive fixes bracketing ts is linearly interpolated and the result is stamped with
// ts. ok is false for an empty track or when ts lies outside the covered time span.
func (t *Track) At(ts int64) (pos models.Position, ok bool) {
	switch len(t.fixes) {
	case 0:
		return pos, false
	case 1:
		return t.fixes[0], true
	}

	// First pair (i, i+1) with fixes[i+1] >= ts; fixes[i] <= ts then holds unless ts
	// precedes the whole track.
	pairs := len(t.fixes) - 1
	i := sort.Search(pairs, func(i int) bool {
		return t.fixes[i+1].Timestamp >= ts
	})
	if i == pairs || t.fixes[i].Timestamp > ts {
		return pos, false
	}

	p1, p2 := t.fixes[i], t.fixes[i+1]
	ratio := 0.0
	if p2.Timestamp != p1.Timestamp {
		ratio = float64(ts-p1.Timestamp) / float64(p2.Timestamp-p1.Timestamp)
	}

	return models.Position{
		Latitude:  p1.Latitude + (p2.Latitude-p1.Latitude)*ratio,
		Longitude: p1.Longitude + (p2.Longitude-p1.Longitude)*ratio,
		Timestamp: ts,
	}, true
}
