package turnorder

import (
	"sort"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// PointsBalanceStrategy orders participants by ascending accumulated points
// within the horizon. Members with no recorded history pick first, sorting
// below any positive total; ties break alphabetically by display name. No
// quota is computed: early pickers accumulate points and drift down the
// order over repeated occasions, so the order self-balances.
type PointsBalanceStrategy struct{}

func (s *PointsBalanceStrategy) Algorithm() model.Algorithm {
	return model.AlgorithmPointsBalance
}

func (s *PointsBalanceStrategy) ComputeOrder(in Input) (*Output, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Ledger == nil {
		return nil, model.NewValidationError("ledger", "points balance requires a points ledger")
	}

	sorted := make([]model.Member, len(in.Participants))
	copy(sorted, in.Participants)
	sort.Slice(sorted, func(i, j int) bool {
		iHas, jHas := in.Ledger.HasHistory(sorted[i].ID), in.Ledger.HasHistory(sorted[j].ID)
		if iHas != jHas {
			return !iHas
		}
		iPoints, jPoints := in.Ledger.Points(sorted[i].ID), in.Ledger.Points(sorted[j].ID)
		if iPoints != jPoints {
			return iPoints < jPoints
		}
		if sorted[i].DisplayName != sorted[j].DisplayName {
			return sorted[i].DisplayName < sorted[j].DisplayName
		}
		return sorted[i].ID < sorted[j].ID
	})

	order := make([]string, len(sorted))
	for i, member := range sorted {
		order[i] = member.ID
	}

	return &Output{Order: order}, nil
}
