package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// RoutineRule describes one recurring duty to expand into work instances.
// RRule is an RFC 5545 recurrence body such as "FREQ=WEEKLY;BYDAY=MO,TH";
// StartTime is the clock time each occurrence starts at.
type RoutineRule struct {
	Name            string
	Kind            model.InstanceKind
	RRule           string
	StartTime       string // "15:04"
	DurationMinutes int
	PointValue      float64
}

// ExpandRules expands every rule's occurrences inside [from, to] into
// unassigned work instances, sorted chronologically
func ExpandRules(rules []RoutineRule, groupID string, from, to time.Time) ([]model.WorkInstance, error) {
	if !to.After(from) {
		return nil, model.NewValidationError("range", "date range must end after it starts")
	}

	var instances []model.WorkInstance
	for i, r := range rules {
		occurrences, err := expandRule(r, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to expand rule %d (%s): %w", i, r.Name, err)
		}

		kind := r.Kind
		if kind == "" {
			kind = model.KindRoutine
		}

		for _, occ := range occurrences {
			instances = append(instances, model.WorkInstance{
				ID:              uuid.New().String(),
				GroupID:         groupID,
				Kind:            kind,
				Title:           r.Name,
				ScheduledAt:     occ,
				DurationMinutes: r.DurationMinutes,
				PointValue:      r.PointValue,
				Status:          model.InstanceUnassigned,
			})
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		if instances[i].ScheduledAt.Equal(instances[j].ScheduledAt) {
			return instances[i].Title < instances[j].Title
		}
		return instances[i].ScheduledAt.Before(instances[j].ScheduledAt)
	})

	return instances, nil
}

// expandRule returns the rule's occurrence times inside [from, to]
func expandRule(r RoutineRule, from, to time.Time) ([]time.Time, error) {
	if r.PointValue < 0 {
		return nil, model.NewValidationError("pointValue", "point value must not be negative")
	}

	rule, err := rrule.StrToRRule(r.RRule)
	if err != nil {
		return nil, model.NewValidationError("rrule", fmt.Sprintf("invalid recurrence rule: %v", err))
	}

	clock, err := time.Parse("15:04", r.StartTime)
	if err != nil {
		return nil, model.NewValidationError("startTime", fmt.Sprintf("invalid start time %q: %v", r.StartTime, err))
	}

	// Anchor the rule at the window start carrying the rule's clock time, so
	// every occurrence inherits it
	anchor := time.Date(from.Year(), from.Month(), from.Day(), clock.Hour(), clock.Minute(), 0, 0, from.Location())
	rule.DTStart(anchor)

	occurrences := rule.Between(anchor, to, true)

	// The anchor can precede from when from carries a later clock time
	kept := occurrences[:0]
	for _, occ := range occurrences {
		if occ.Before(from) {
			continue
		}
		kept = append(kept, occ)
	}
	return kept, nil
}
