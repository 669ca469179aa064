package model

import "fmt"

// Algorithm selects how the turn order of a selection occasion is computed
type Algorithm string

const (
	AlgorithmDraftPick     Algorithm = "draft_pick"
	AlgorithmPointsBalance Algorithm = "points_balance"
	AlgorithmFairRotation  Algorithm = "fair_rotation"
)

func (a Algorithm) IsValid() bool {
	return a == AlgorithmDraftPick || a == AlgorithmPointsBalance || a == AlgorithmFairRotation
}

// ParseAlgorithm converts a wire string into an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	alg := Algorithm(s)
	if !alg.IsValid() {
		return "", NewValidationError("algorithm", fmt.Sprintf("unknown algorithm %q", s))
	}
	return alg, nil
}
