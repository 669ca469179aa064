package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackroom/fairshare/pkg/core/model"
)

func activeMember(id, name string) model.Member {
	return model.Member{ID: id, DisplayName: name, Status: model.MemberActive}
}

func instanceAt(id string, scheduledAt time.Time, minutes int) model.WorkInstance {
	return model.WorkInstance{
		ID:              id,
		Kind:            model.KindShift,
		ScheduledAt:     scheduledAt,
		DurationMinutes: minutes,
		PointValue:      2,
		Status:          model.InstanceUnassigned,
	}
}

func memberIDs(members []model.Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func intPtr(n int) *int {
	return &n
}

// Tuesday 2026-08-25 09:00 UTC
var tuesdayMorning = time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

func TestEligibleExcludesInactiveMembers(t *testing.T) {
	roster := []model.Member{
		activeMember("m1", "Anna"),
		{ID: "m2", DisplayName: "Bengt", Status: model.MemberInactive},
	}
	filter := NewFilter(roster, nil)
	inst := instanceAt("i1", tuesdayMorning, 60)

	eligible := filter.Eligible(&inst)

	assert.Equal(t, []string{"m1"}, memberIDs(eligible))
}

func TestEligibleSortedByID(t *testing.T) {
	roster := []model.Member{
		activeMember("m3", "Clara"),
		activeMember("m1", "Anna"),
		activeMember("m2", "Bengt"),
	}
	filter := NewFilter(roster, nil)
	inst := instanceAt("i1", tuesdayMorning, 60)

	eligible := filter.Eligible(&inst)

	assert.Equal(t, []string{"m1", "m2", "m3"}, memberIDs(eligible))
}

func TestBlackoutExcludesOverlappingWindow(t *testing.T) {
	member := activeMember("m1", "Anna")
	member.Availability = []model.BlackoutRule{
		{Weekday: time.Tuesday, Start: "08:00", End: "10:00"},
	}
	filter := NewFilter([]model.Member{member}, nil)

	inst := instanceAt("i1", tuesdayMorning, 60)
	assert.Empty(t, filter.Eligible(&inst))

	// Same clock time on a Wednesday is fine
	wednesday := instanceAt("i2", tuesdayMorning.AddDate(0, 0, 1), 60)
	assert.Len(t, filter.Eligible(&wednesday), 1)
}

func TestBlackoutEndIsExclusive(t *testing.T) {
	member := activeMember("m1", "Anna")
	member.Availability = []model.BlackoutRule{
		{Weekday: time.Tuesday, Start: "07:00", End: "09:00"},
	}
	filter := NewFilter([]model.Member{member}, nil)

	// Instance starts exactly when the blackout ends
	inst := instanceAt("i1", tuesdayMorning, 60)

	assert.Len(t, filter.Eligible(&inst), 1)
}

func TestZeroDurationInstanceCoversStartMinute(t *testing.T) {
	member := activeMember("m1", "Anna")
	member.Availability = []model.BlackoutRule{
		{Weekday: time.Tuesday, Start: "09:00", End: "09:30"},
	}
	filter := NewFilter([]model.Member{member}, nil)

	inst := instanceAt("i1", tuesdayMorning, 0)

	assert.Empty(t, filter.Eligible(&inst))
}

func TestBlackoutSpanningMidnight(t *testing.T) {
	member := activeMember("m1", "Anna")
	member.Availability = []model.BlackoutRule{
		{Weekday: time.Monday, Start: "22:00", End: "06:00"},
	}
	filter := NewFilter([]model.Member{member}, nil)

	// Tuesday 02:00 falls inside Monday's overnight blackout
	inst := instanceAt("i1", time.Date(2026, 8, 25, 2, 0, 0, 0, time.UTC), 60)

	assert.Empty(t, filter.Eligible(&inst))
}

func TestMaxPerWeekLimit(t *testing.T) {
	member := activeMember("m1", "Anna")
	member.Limits = &model.Limits{MaxPerWeek: intPtr(1)}
	filter := NewFilter([]model.Member{member}, nil)

	first := instanceAt("i1", tuesdayMorning, 60)
	require.Len(t, filter.Eligible(&first), 1)
	filter.Record(&first, "m1")

	// Second instance in the same ISO week is blocked
	sameWeek := instanceAt("i2", tuesdayMorning.AddDate(0, 0, 2), 60)
	assert.Empty(t, filter.Eligible(&sameWeek))

	// Next week is allowed again
	nextWeek := instanceAt("i3", tuesdayMorning.AddDate(0, 0, 7), 60)
	assert.Len(t, filter.Eligible(&nextWeek), 1)
}

func TestMaxPerMonthLimit(t *testing.T) {
	member := activeMember("m1", "Anna")
	member.Limits = &model.Limits{MaxPerMonth: intPtr(2)}
	filter := NewFilter([]model.Member{member}, nil)

	first := instanceAt("i1", tuesdayMorning, 60)
	filter.Record(&first, "m1")
	second := instanceAt("i2", tuesdayMorning.AddDate(0, 0, 1), 60)
	filter.Record(&second, "m1")

	sameMonth := instanceAt("i3", tuesdayMorning.AddDate(0, 0, 2), 60)
	assert.Empty(t, filter.Eligible(&sameMonth))

	nextMonth := instanceAt("i4", time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), 60)
	assert.Len(t, filter.Eligible(&nextMonth), 1)
}

func TestNewFilterSeedsTalliesFromExistingAssignments(t *testing.T) {
	member := activeMember("m1", "Anna")
	member.Limits = &model.Limits{MaxPerWeek: intPtr(1)}

	taken := instanceAt("i0", tuesdayMorning, 60)
	taken.AssignedMemberID = "m1"
	taken.Status = model.InstanceAssigned

	filter := NewFilter([]model.Member{member}, []model.WorkInstance{taken})

	sameWeek := instanceAt("i1", tuesdayMorning.AddDate(0, 0, 1), 60)
	assert.Empty(t, filter.Eligible(&sameWeek))
}

func TestEmptyEligibleSetIsNotAnError(t *testing.T) {
	filter := NewFilter(nil, nil)
	inst := instanceAt("i1", tuesdayMorning, 60)

	eligible := filter.Eligible(&inst)

	assert.NotNil(t, eligible)
	assert.Empty(t, eligible)
}
