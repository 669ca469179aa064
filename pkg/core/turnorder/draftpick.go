package turnorder

import (
	"math"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// DraftPickStrategy computes a quota draft order. Every participant shares
// the same quota, the pool's total points divided by the participant count,
// and the previous occasion's final order is reversed so whoever picked last
// picks first this time. New participants join at the end, alphabetically.
//
// During the occasion a member keeps picking until their accumulated points
// reach the quota; the pick that meets or passes it ends their turn.
// Overshooting to the nearest available instance is allowed, skipping a turn
// to stay under is not.
type DraftPickStrategy struct{}

func (s *DraftPickStrategy) Algorithm() model.Algorithm {
	return model.AlgorithmDraftPick
}

func (s *DraftPickStrategy) ComputeOrder(in Input) (*Output, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	history, warnings := usableHistory(in.History, in.Participants)

	var order []string
	if history == nil {
		order = alphabetical(in.Participants)
	} else {
		order = appendNew(reversed(history.FinalOrder), in.Participants)
	}

	totalPoints := 0.0
	for i := range in.Pool {
		totalPoints += in.Pool[i].PointValue
	}
	quota := totalPoints / float64(len(in.Participants))

	quotas := make(map[string]float64, len(order))
	for _, id := range order {
		quotas[id] = quota
	}

	return &Output{Order: order, Quotas: quotas, Warnings: warnings}, nil
}

// SuggestedPick returns the available instance that lands the member's
// accumulated total nearest the quota, minimizing |accumulated+value-quota|.
// Ties go to the lower point value, then the lower instance ID. Returns nil
// for an empty pool.
func SuggestedPick(pool []model.WorkInstance, accumulated, quota float64) *model.WorkInstance {
	var best *model.WorkInstance
	var bestDiff float64

	for i := range pool {
		inst := &pool[i]
		diff := math.Abs(accumulated + inst.PointValue - quota)

		better := best == nil || diff < bestDiff
		if !better && diff == bestDiff {
			if inst.PointValue != best.PointValue {
				better = inst.PointValue < best.PointValue
			} else {
				better = inst.ID < best.ID
			}
		}
		if better {
			best = inst
			bestDiff = diff
		}
	}

	return best
}
