package model

import "time"

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

func (s MemberStatus) IsValid() bool {
	return s == MemberActive || s == MemberInactive
}

// BlackoutRule represents a recurring weekly window when a member is unavailable.
// Start and End are clock times in "15:04" format and End is exclusive.
type BlackoutRule struct {
	Weekday time.Weekday `json:"weekday" bson:"weekday"`
	Start   string       `json:"start" bson:"start"`
	End     string       `json:"end" bson:"end"`
}

// Limits caps how many instances a member takes per calendar period.
// Nil fields mean no limit in that direction.
type Limits struct {
	MinPerWeek  *int `json:"minPerWeek,omitempty" bson:"minPerWeek,omitempty"`
	MaxPerWeek  *int `json:"maxPerWeek,omitempty" bson:"maxPerWeek,omitempty"`
	MinPerMonth *int `json:"minPerMonth,omitempty" bson:"minPerMonth,omitempty"`
	MaxPerMonth *int `json:"maxPerMonth,omitempty" bson:"maxPerMonth,omitempty"`
}

// Member represents a group member on the duty roster
type Member struct {
	ID           string         `json:"id" bson:"_id"`
	GroupID      string         `json:"groupId" bson:"groupId"`
	DisplayName  string         `json:"displayName" bson:"displayName"`
	Status       MemberStatus   `json:"status" bson:"status"`
	Availability []BlackoutRule `json:"availability,omitempty" bson:"availability,omitempty"`
	Limits       *Limits        `json:"limits,omitempty" bson:"limits,omitempty"` // nil if no limits
}

type InstanceKind string

const (
	KindShift   InstanceKind = "shift"
	KindRoutine InstanceKind = "routine"
)

func (k InstanceKind) IsValid() bool {
	return k == KindShift || k == KindRoutine
}

type InstanceStatus string

const (
	InstanceUnassigned InstanceStatus = "unassigned"
	InstanceAssigned   InstanceStatus = "assigned"
	InstanceCompleted  InstanceStatus = "completed"
	InstanceMissed     InstanceStatus = "missed"
)

// WorkInstance represents a single dated occurrence of work
type WorkInstance struct {
	ID               string         `json:"id" bson:"_id"`
	GroupID          string         `json:"groupId" bson:"groupId"`
	Kind             InstanceKind   `json:"kind" bson:"kind"`
	Title            string         `json:"title" bson:"title"`
	ScheduledAt      time.Time      `json:"scheduledAt" bson:"scheduledAt"`
	DurationMinutes  int            `json:"durationMinutes" bson:"durationMinutes"`
	PointValue       float64        `json:"pointValue" bson:"pointValue"`
	AssignedMemberID string         `json:"assignedMemberId,omitempty" bson:"assignedMemberId,omitempty"` // empty when unassigned
	Status           InstanceStatus `json:"status" bson:"status"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// Assigned reports whether the instance has an assignee
func (w *WorkInstance) Assigned() bool {
	return w.AssignedMemberID != ""
}

// End returns the exclusive end of the instance window.
// Zero-duration instances cover their start minute.
func (w *WorkInstance) End() time.Time {
	if w.DurationMinutes <= 0 {
		return w.ScheduledAt.Add(time.Minute)
	}
	return w.ScheduledAt.Add(time.Duration(w.DurationMinutes) * time.Minute)
}

// PointsEntry represents one completed instance in the points ledger
type PointsEntry struct {
	MemberID    string    `json:"memberId" bson:"memberId"`
	Points      float64   `json:"points" bson:"points"`
	CompletedAt time.Time `json:"completedAt" bson:"completedAt"`
}
