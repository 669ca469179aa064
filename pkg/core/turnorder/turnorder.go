package turnorder

import (
	"fmt"

	"github.com/tackroom/fairshare/pkg/core/fairness"
	"github.com/tackroom/fairshare/pkg/core/model"
)

// Input carries everything one turn order computation reads
type Input struct {
	Participants []model.Member
	Pool         []model.WorkInstance
	Ledger       *fairness.Ledger
	History      *model.TurnOrderHistory // nil when the group has none yet
}

// Output is a computed turn order
type Output struct {
	Order []string
	// Quotas holds each member's point target, nil for strategies without one
	Quotas map[string]float64
	// Warnings records absorbed anomalies such as stale history, for the
	// caller to log
	Warnings []string
}

// Strategy computes the turn order for one selection occasion.
// Implementations are pure: previews and commits run the same code, the
// caller decides whether to persist the output.
type Strategy interface {
	Algorithm() model.Algorithm
	ComputeOrder(in Input) (*Output, error)
}

// ForAlgorithm returns the strategy implementing the given algorithm
func ForAlgorithm(alg model.Algorithm) (Strategy, error) {
	switch alg {
	case model.AlgorithmDraftPick:
		return &DraftPickStrategy{}, nil
	case model.AlgorithmPointsBalance:
		return &PointsBalanceStrategy{}, nil
	case model.AlgorithmFairRotation:
		return &FairRotationStrategy{}, nil
	}
	return nil, model.NewValidationError("algorithm", fmt.Sprintf("unknown algorithm %q", alg))
}

// Compute resolves the strategy for alg and runs it
func Compute(alg model.Algorithm, in Input) (*Output, error) {
	strategy, err := ForAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	return strategy.ComputeOrder(in)
}

func validateInput(in Input) error {
	if len(in.Participants) == 0 {
		return model.NewValidationError("participants", "no participants in the occasion")
	}
	for i := range in.Pool {
		if in.Pool[i].PointValue < 0 {
			return model.NewValidationError("pool", fmt.Sprintf("instance %s has a negative point value", in.Pool[i].ID))
		}
	}
	return nil
}
