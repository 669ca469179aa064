package distributor

import (
	"fmt"
	"sort"

	"github.com/tackroom/fairshare/pkg/core/eligibility"
	"github.com/tackroom/fairshare/pkg/core/fairness"
	"github.com/tackroom/fairshare/pkg/core/model"
)

// Result contains the outcome of one distribution run
type Result struct {
	// Assignments maps every input instance ID to a member ID, or to the
	// empty string when no member was eligible
	Assignments map[string]string
	// Unassigned lists the unassignable instance IDs in schedule order,
	// ready for the escalation signal
	Unassigned []string
	// FinalScores holds each roster member's running score after the batch
	FinalScores map[string]float64
	// FairnessBefore and FairnessAfter are the roster's fairness indexes
	// computed from the ledger alone and from the final running scores
	FairnessBefore float64
	FairnessAfter  float64
}

// Distribute assigns each instance to the eligible member with the lowest
// running score. Instances are processed chronologically and each assignment
// updates the running scores and period tallies, so later instances in the
// batch see the effect of earlier ones. Ties on the running score go to the
// lowest member ID.
//
// The existing instances seed the per-period limit tallies; pass the
// already-assigned instances around the batch's date range so limits hold
// across the whole period, not just within the batch.
//
// Distribute is a pure function of its inputs: rerunning it with identical
// arguments returns an identical result.
func Distribute(
	instances []model.WorkInstance,
	roster []model.Member,
	ledger *fairness.Ledger,
	existing []model.WorkInstance,
) (*Result, error) {
	if len(roster) == 0 {
		return nil, model.NewValidationError("roster", "no members to distribute to")
	}
	for i := range instances {
		if instances[i].PointValue < 0 {
			return nil, model.NewValidationError("instances", fmt.Sprintf("instance %s has a negative point value", instances[i].ID))
		}
		if instances[i].AssignedMemberID != "" {
			return nil, model.NewValidationError("instances", fmt.Sprintf("instance %s is already assigned", instances[i].ID))
		}
	}

	sorted := make([]model.WorkInstance, len(instances))
	copy(sorted, instances)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ScheduledAt.Equal(sorted[j].ScheduledAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].ScheduledAt.Before(sorted[j].ScheduledAt)
	})

	rosterIDs := make([]string, len(roster))
	scores := make(map[string]float64, len(roster))
	for i, member := range roster {
		rosterIDs[i] = member.ID
		scores[member.ID] = ledger.Points(member.ID)
	}
	fairnessBefore := fairness.IndexOf(scores, rosterIDs)

	filter := eligibility.NewFilter(roster, existing)

	assignments := make(map[string]string, len(sorted))
	unassigned := make([]string, 0)
	for i := range sorted {
		inst := &sorted[i]

		candidates := filter.Eligible(inst)
		if len(candidates) == 0 {
			assignments[inst.ID] = ""
			unassigned = append(unassigned, inst.ID)
			continue
		}

		// Candidates come back sorted by ID, so a strict comparison keeps
		// the lowest ID on score ties
		chosen := candidates[0]
		for _, candidate := range candidates[1:] {
			if scores[candidate.ID] < scores[chosen.ID] {
				chosen = candidate
			}
		}

		assignments[inst.ID] = chosen.ID
		scores[chosen.ID] += inst.PointValue
		filter.Record(inst, chosen.ID)
	}

	return &Result{
		Assignments:    assignments,
		Unassigned:     unassigned,
		FinalScores:    scores,
		FairnessBefore: fairnessBefore,
		FairnessAfter:  fairness.IndexOf(scores, rosterIDs),
	}, nil
}
