package fairness

import (
	"math"
	"time"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// Ledger holds each member's point total accumulated within a memory horizon.
// It is built once from completed-work entries and read by the distributor and
// the turn order strategies; nothing mutates it after construction.
type Ledger struct {
	points   map[string]float64
	recorded map[string]bool
}

// NewLedger builds a ledger from completed-work entries, dropping entries
// completed before the horizon start
func NewLedger(entries []model.PointsEntry, horizon Horizon, now time.Time) *Ledger {
	start := horizon.Start(now)
	l := &Ledger{
		points:   make(map[string]float64),
		recorded: make(map[string]bool),
	}
	for _, entry := range entries {
		if !start.IsZero() && entry.CompletedAt.Before(start) {
			continue
		}
		l.points[entry.MemberID] += entry.Points
		l.recorded[entry.MemberID] = true
	}
	return l
}

// Points returns the member's accumulated points within the horizon
func (l *Ledger) Points(memberID string) float64 {
	return l.points[memberID]
}

// HasHistory reports whether the member completed any work within the horizon
func (l *Ledger) HasHistory(memberID string) bool {
	return l.recorded[memberID]
}

// Index computes the fairness index of the ledger across the given members
func (l *Ledger) Index(memberIDs []string) float64 {
	return IndexOf(l.points, memberIDs)
}

// IndexOf computes a 0-100 fairness index for a score set: 100 means points
// are spread perfectly evenly, lower values mean a wider relative spread.
// The index is max(0, 100 - 100*stddev/mean) over the given members; a zero
// mean (no completed work) scores 100.
func IndexOf(scores map[string]float64, memberIDs []string) float64 {
	if len(memberIDs) == 0 {
		return 100
	}

	mean := 0.0
	for _, id := range memberIDs {
		mean += scores[id]
	}
	mean /= float64(len(memberIDs))

	if mean == 0 {
		return 100
	}

	variance := 0.0
	for _, id := range memberIDs {
		diff := scores[id] - mean
		variance += diff * diff
	}
	variance /= float64(len(memberIDs))

	index := 100 - 100*(math.Sqrt(variance)/mean)
	if index < 0 {
		return 0
	}
	return index
}
