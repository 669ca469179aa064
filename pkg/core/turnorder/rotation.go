package turnorder

import "github.com/tackroom/fairshare/pkg/core/model"

// FairRotationStrategy cyclically shifts the previous final order one
// position to the left: last occasion's first picker moves to the back and
// everyone else moves up one slot. With a stable roster of N members every
// member leads exactly once per N occasions. New participants join at the
// end, alphabetically; without history the order is alphabetical.
type FairRotationStrategy struct{}

func (s *FairRotationStrategy) Algorithm() model.Algorithm {
	return model.AlgorithmFairRotation
}

func (s *FairRotationStrategy) ComputeOrder(in Input) (*Output, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	history, warnings := usableHistory(in.History, in.Participants)

	var order []string
	if history == nil {
		order = alphabetical(in.Participants)
	} else {
		order = appendNew(leftShifted(history.FinalOrder), in.Participants)
	}

	return &Output{Order: order, Warnings: warnings}, nil
}
