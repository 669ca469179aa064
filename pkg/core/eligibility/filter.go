package eligibility

import (
	"fmt"
	"sort"
	"time"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// Filter evaluates which roster members may take a given work instance.
// It keeps running per-week and per-month assignment tallies so that a batch
// of assignments sees the effect of assignments made earlier in the batch.
//
// A member is excluded when:
//   - their status is not active
//   - a blackout rule overlaps the instance's weekday and time window
//   - taking the instance would exceed their max-per-week or max-per-month limit
//
// An empty eligible set is a normal outcome (the instance is unassignable),
// never an error.
type Filter struct {
	roster  []model.Member
	weekly  map[string]map[string]int
	monthly map[string]map[string]int
}

// NewFilter builds a filter over the roster, seeding the period tallies from
// instances that already carry an assignee
func NewFilter(roster []model.Member, existing []model.WorkInstance) *Filter {
	f := &Filter{
		roster:  roster,
		weekly:  make(map[string]map[string]int),
		monthly: make(map[string]map[string]int),
	}
	for i := range existing {
		inst := &existing[i]
		if inst.AssignedMemberID == "" {
			continue
		}
		f.Record(inst, inst.AssignedMemberID)
	}
	return f
}

// Eligible returns the members allowed to take the instance, sorted by ID
func (f *Filter) Eligible(inst *model.WorkInstance) []model.Member {
	eligible := make([]model.Member, 0, len(f.roster))
	for _, member := range f.roster {
		if f.memberEligible(member, inst) {
			eligible = append(eligible, member)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].ID < eligible[j].ID
	})
	return eligible
}

// Record counts an assignment against the member's weekly and monthly tallies
func (f *Filter) Record(inst *model.WorkInstance, memberID string) {
	if f.weekly[memberID] == nil {
		f.weekly[memberID] = make(map[string]int)
	}
	if f.monthly[memberID] == nil {
		f.monthly[memberID] = make(map[string]int)
	}
	f.weekly[memberID][weekKey(inst.ScheduledAt)]++
	f.monthly[memberID][monthKey(inst.ScheduledAt)]++
}

func (f *Filter) memberEligible(member model.Member, inst *model.WorkInstance) bool {
	if member.Status != model.MemberActive {
		return false
	}

	for _, rule := range member.Availability {
		if blackoutOverlaps(rule, inst) {
			return false
		}
	}

	if member.Limits != nil {
		if member.Limits.MaxPerWeek != nil {
			taken := f.weekly[member.ID][weekKey(inst.ScheduledAt)]
			if taken+1 > *member.Limits.MaxPerWeek {
				return false
			}
		}
		if member.Limits.MaxPerMonth != nil {
			taken := f.monthly[member.ID][monthKey(inst.ScheduledAt)]
			if taken+1 > *member.Limits.MaxPerMonth {
				return false
			}
		}
	}

	return true
}

// blackoutOverlaps reports whether the rule's weekly window overlaps the
// instance window. The instance window is [ScheduledAt, End); every calendar
// day it touches is checked against the rule's weekday, starting one day
// early so that a window crossing midnight from the previous day is caught.
func blackoutOverlaps(rule model.BlackoutRule, inst *model.WorkInstance) bool {
	instStart := inst.ScheduledAt
	instEnd := inst.End()

	day := time.Date(instStart.Year(), instStart.Month(), instStart.Day(), 0, 0, 0, 0, instStart.Location())
	day = day.AddDate(0, 0, -1)
	for ; day.Before(instEnd); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != rule.Weekday {
			continue
		}

		ruleStart, err := clockOn(day, rule.Start)
		if err != nil {
			continue
		}
		ruleEnd, err := clockOn(day, rule.End)
		if err != nil {
			continue
		}
		// A window crossing midnight runs into the next day
		if !ruleEnd.After(ruleStart) {
			ruleEnd = ruleEnd.AddDate(0, 0, 1)
		}

		if instStart.Before(ruleEnd) && ruleStart.Before(instEnd) {
			return true
		}
	}

	return false
}

// clockOn places a "15:04" clock time on the given day
func clockOn(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse clock time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

// weekKey identifies the ISO week containing t
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// monthKey identifies the calendar month containing t
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
