package model

import "time"

// OccasionState is the lifecycle state of a selection occasion
type OccasionState string

const (
	OccasionDraft     OccasionState = "draft"
	OccasionComputed  OccasionState = "computed"
	OccasionActive    OccasionState = "active"
	OccasionCompleted OccasionState = "completed"
)

func (s OccasionState) IsValid() bool {
	switch s {
	case OccasionDraft, OccasionComputed, OccasionActive, OccasionCompleted:
		return true
	}
	return false
}

// CanTransition reports whether the occasion state machine allows moving to
// next. Recomputing an already computed occasion is modelled as
// computed -> computed; an active occasion can only complete.
func (s OccasionState) CanTransition(next OccasionState) bool {
	switch s {
	case OccasionDraft:
		return next == OccasionComputed
	case OccasionComputed:
		return next == OccasionComputed || next == OccasionActive
	case OccasionActive:
		return next == OccasionCompleted
	}
	return false
}

// OccasionPick records one selection made during an active occasion
type OccasionPick struct {
	InstanceID string    `json:"instanceId" bson:"instanceId"`
	MemberID   string    `json:"memberId" bson:"memberId"`
	Points     float64   `json:"points" bson:"points"`
	PickedAt   time.Time `json:"pickedAt" bson:"pickedAt"`
}

// SelectionOccasion represents one round of member-driven duty selection
type SelectionOccasion struct {
	ID           string             `json:"id" bson:"_id"`
	GroupID      string             `json:"groupId" bson:"groupId"`
	Algorithm    Algorithm          `json:"algorithm" bson:"algorithm"`
	MemberIDs    []string           `json:"memberIds" bson:"memberIds"`
	InstancePool []string           `json:"instancePool" bson:"instancePool"`
	State        OccasionState      `json:"state" bson:"state"`
	Order        []string           `json:"order,omitempty" bson:"order,omitempty"`
	Quotas       map[string]float64 `json:"quotas,omitempty" bson:"quotas,omitempty"` // nil unless the algorithm assigns quotas
	CurrentTurn  int                `json:"currentTurn" bson:"currentTurn"`           // index into Order
	Picks        []OccasionPick     `json:"picks,omitempty" bson:"picks,omitempty"`
	ClosesAt     time.Time          `json:"closesAt" bson:"closesAt"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	CompletedAt  *time.Time         `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// TurnMember returns the member whose turn it currently is, or empty when the
// occasion has no computed order
func (o *SelectionOccasion) TurnMember() string {
	if len(o.Order) == 0 {
		return ""
	}
	return o.Order[o.CurrentTurn%len(o.Order)]
}

// PickedInstanceIDs returns the set of instance IDs already taken
func (o *SelectionOccasion) PickedInstanceIDs() map[string]bool {
	picked := make(map[string]bool, len(o.Picks))
	for _, p := range o.Picks {
		picked[p.InstanceID] = true
	}
	return picked
}

// RemainingPool returns the pool instance IDs not yet picked, in pool order
func (o *SelectionOccasion) RemainingPool() []string {
	picked := o.PickedInstanceIDs()
	remaining := make([]string, 0, len(o.InstancePool))
	for _, id := range o.InstancePool {
		if !picked[id] {
			remaining = append(remaining, id)
		}
	}
	return remaining
}

// PointsPicked sums the point values a member has picked so far
func (o *SelectionOccasion) PointsPicked(memberID string) float64 {
	total := 0.0
	for _, p := range o.Picks {
		if p.MemberID == memberID {
			total += p.Points
		}
	}
	return total
}

// SelectionsBy counts the picks a member has made so far
func (o *SelectionOccasion) SelectionsBy(memberID string) int {
	count := 0
	for _, p := range o.Picks {
		if p.MemberID == memberID {
			count++
		}
	}
	return count
}

// TurnOrderHistory is the per-occasion record consulted when computing the
// order of the next occasion. OccasionID doubles as the idempotency key so a
// completed occasion contributes exactly one record.
type TurnOrderHistory struct {
	ID                    string             `json:"id" bson:"_id"`
	GroupID               string             `json:"groupId" bson:"groupId"`
	OccasionID            string             `json:"occasionId" bson:"occasionId"`
	Algorithm             Algorithm          `json:"algorithm" bson:"algorithm"`
	FinalOrder            []string           `json:"finalOrder" bson:"finalOrder"`
	SelectionsPerMember   map[string]int     `json:"selectionsPerMember,omitempty" bson:"selectionsPerMember,omitempty"`
	PointsPickedPerMember map[string]float64 `json:"pointsPickedPerMember,omitempty" bson:"pointsPickedPerMember,omitempty"`
	CompletedAt           time.Time          `json:"completedAt" bson:"completedAt"`
}
