package fairness

import "time"

// Policy selects how the memory horizon resets
type Policy string

const (
	// PolicyRolling counts points completed within a trailing window of days
	PolicyRolling Policy = "rolling"
	// PolicyPeriodic counts points completed since a fixed reset date
	PolicyPeriodic Policy = "periodic"
)

func (p Policy) IsValid() bool {
	return p == PolicyRolling || p == PolicyPeriodic
}

// Horizon bounds how far back completed work counts toward fairness
type Horizon struct {
	Policy  Policy
	Days    int       // rolling window length, 0 means unbounded
	ResetAt time.Time // start of the current period when Policy is periodic
}

// Start returns the horizon cutoff. Entries completed before the cutoff are
// outside the horizon. A zero return means the horizon is unbounded.
func (h Horizon) Start(now time.Time) time.Time {
	if h.Policy == PolicyPeriodic {
		return h.ResetAt
	}
	if h.Days <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -h.Days)
}
