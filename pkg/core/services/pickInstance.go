package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/core/turnorder"
)

// PickInstanceResult contains the updated occasion after a pick
type PickInstanceResult struct {
	Occasion      *model.SelectionOccasion
	Instance      *model.WorkInstance
	NextTurn      string // empty once the pool is exhausted
	PoolExhausted bool
	Suggested     *model.WorkInstance // quota-guided suggestion for the next picker, draft pick only
}

// PickInstanceStore defines the database operations needed for picking inside an occasion
type PickInstanceStore interface {
	GetOccasion(ctx context.Context, occasionID string) (*model.SelectionOccasion, error)
	UpdateOccasion(ctx context.Context, occasion *model.SelectionOccasion) error
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
	ClaimInstance(ctx context.Context, instanceID, memberID string) error
}

// PickInstance records the member whose turn it is taking an instance from the
// occasion pool. The claim is conditional, so an instance grabbed concurrently
// surfaces as no longer available instead of being double-booked.
func PickInstance(
	ctx context.Context,
	database PickInstanceStore,
	logger *zap.Logger,
	occasionID, memberID, instanceID string,
	now time.Time,
) (*PickInstanceResult, error) {
	logger.Debug("Starting pickInstance",
		zap.String("occasion_id", occasionID),
		zap.String("member_id", memberID),
		zap.String("instance_id", instanceID))

	occasion, err := database.GetOccasion(ctx, occasionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occasion: %w", err)
	}

	if occasion.State != model.OccasionActive {
		return nil, model.NewValidationError("state", fmt.Sprintf("occasion is %s, picks need an active occasion", occasion.State))
	}

	turn := occasion.TurnMember()
	if turn != memberID {
		return nil, model.NewValidationError("turn", fmt.Sprintf("it is %s's turn, not %s's", turn, memberID))
	}

	if occasion.PickedInstanceIDs()[instanceID] {
		return nil, model.NewValidationError("instance", "instance has already been picked")
	}
	inPool := false
	for _, id := range occasion.InstancePool {
		if id == instanceID {
			inPool = true
			break
		}
	}
	if !inPool {
		return nil, model.NewValidationError("instance", "instance is not part of this occasion's pool")
	}

	instance, err := database.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instance: %w", err)
	}

	// Conditional claim; losing the race propagates as no longer available
	if err := database.ClaimInstance(ctx, instanceID, memberID); err != nil {
		return nil, fmt.Errorf("failed to claim instance: %w", err)
	}
	instance.AssignedMemberID = memberID
	instance.Status = model.InstanceAssigned

	occasion.Picks = append(occasion.Picks, model.OccasionPick{
		InstanceID: instanceID,
		MemberID:   memberID,
		Points:     instance.PointValue,
		PickedAt:   now,
	})
	advanceTurn(occasion)

	if err := database.UpdateOccasion(ctx, occasion); err != nil {
		return nil, fmt.Errorf("failed to update occasion: %w", err)
	}

	result := &PickInstanceResult{
		Occasion: occasion,
		Instance: instance,
	}

	remaining, err := resolveRemainingPool(ctx, database, logger, occasion)
	if err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		result.PoolExhausted = true
		logger.Info("Occasion pool exhausted",
			zap.String("occasion_id", occasion.ID),
			zap.Int("pick_count", len(occasion.Picks)))
		return result, nil
	}

	result.NextTurn = occasion.TurnMember()
	if occasion.Algorithm == model.AlgorithmDraftPick {
		accumulated := occasion.PointsPicked(result.NextTurn)
		result.Suggested = turnorder.SuggestedPick(remaining, accumulated, occasion.Quotas[result.NextTurn])
	}

	logger.Info("Pick recorded",
		zap.String("occasion_id", occasion.ID),
		zap.String("member_id", memberID),
		zap.String("instance_id", instanceID),
		zap.Float64("points", instance.PointValue),
		zap.String("next_turn", result.NextTurn))

	return result, nil
}

// advanceTurn moves the turn along after a pick. Under draft pick a member
// keeps the turn until their accumulated points reach their quota, then the
// turn skips ahead to the next member still under quota. The other algorithms
// rotate after every pick.
func advanceTurn(occasion *model.SelectionOccasion) {
	if occasion.Algorithm == model.AlgorithmDraftPick && len(occasion.Order) > 0 {
		current := occasion.TurnMember()
		if occasion.PointsPicked(current) < occasion.Quotas[current] {
			return
		}
		for i := 1; i <= len(occasion.Order); i++ {
			candidate := occasion.Order[(occasion.CurrentTurn+i)%len(occasion.Order)]
			if occasion.PointsPicked(candidate) < occasion.Quotas[candidate] {
				occasion.CurrentTurn += i
				return
			}
		}
		// Every quota is met; fall through to plain rotation
	}
	occasion.CurrentTurn++
}
