package turnorder

import (
	"fmt"
	"sort"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// usableHistory validates a previous record against the current participants.
// A record with missing fields or with a final order referencing someone no
// longer on the roster is stale: it is reported as a warning and treated as
// absent, so old history can never fail an order computation.
func usableHistory(history *model.TurnOrderHistory, participants []model.Member) (*model.TurnOrderHistory, []string) {
	if history == nil {
		return nil, nil
	}

	if len(history.FinalOrder) == 0 {
		return nil, []string{fmt.Sprintf("history record %s has no final order, starting fresh", history.ID)}
	}
	if history.CompletedAt.IsZero() {
		return nil, []string{fmt.Sprintf("history record %s has no completion time, starting fresh", history.ID)}
	}

	known := make(map[string]bool, len(participants))
	for _, member := range participants {
		known[member.ID] = true
	}
	for _, id := range history.FinalOrder {
		if !known[id] {
			return nil, []string{fmt.Sprintf("history record %s references member %s who is no longer on the roster, starting fresh", history.ID, id)}
		}
	}

	return history, nil
}

// alphabetical returns the participants' IDs ordered by display name, ties
// broken by ID
func alphabetical(participants []model.Member) []string {
	sorted := make([]model.Member, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DisplayName == sorted[j].DisplayName {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].DisplayName < sorted[j].DisplayName
	})

	ids := make([]string, len(sorted))
	for i, member := range sorted {
		ids[i] = member.ID
	}
	return ids
}

// appendNew appends participants missing from the order at the end,
// alphabetically among themselves
func appendNew(order []string, participants []model.Member) []string {
	present := make(map[string]bool, len(order))
	for _, id := range order {
		present[id] = true
	}

	var missing []model.Member
	for _, member := range participants {
		if !present[member.ID] {
			missing = append(missing, member)
		}
	}

	return append(order, alphabetical(missing)...)
}

// reversed returns a new slice with the elements in reverse order
func reversed(order []string) []string {
	out := make([]string, len(order))
	for i, id := range order {
		out[len(order)-1-i] = id
	}
	return out
}

// leftShifted returns a new slice cyclically shifted left by one, so the
// first element moves to the back
func leftShifted(order []string) []string {
	if len(order) < 2 {
		return append([]string(nil), order...)
	}
	out := make([]string, 0, len(order))
	out = append(out, order[1:]...)
	return append(out, order[0])
}
