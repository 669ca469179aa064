package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/model"
)

// ActivateOccasionResult contains the activated occasion and any compute warnings
type ActivateOccasionResult struct {
	Occasion *model.SelectionOccasion
	Warnings []string
}

// ActivateOccasionStore defines the database operations needed for activating a selection occasion
type ActivateOccasionStore interface {
	ListMembers(ctx context.Context, groupID string) ([]model.Member, error)
	ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error)
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
	LatestHistory(ctx context.Context, groupID string) (*model.TurnOrderHistory, error)
	GetOccasion(ctx context.Context, occasionID string) (*model.SelectionOccasion, error)
	UpdateOccasion(ctx context.Context, occasion *model.SelectionOccasion) error
}

// ActivateOccasion recomputes the turn order against the current roster and
// freezes it. From this point the participant set and order no longer change;
// members pick in the frozen order until the occasion completes.
func ActivateOccasion(
	ctx context.Context,
	database ActivateOccasionStore,
	cfg *config.Config,
	logger *zap.Logger,
	occasionID string,
	now time.Time,
) (*ActivateOccasionResult, error) {
	logger.Debug("Starting activateOccasion", zap.String("occasion_id", occasionID))

	occasion, err := database.GetOccasion(ctx, occasionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occasion: %w", err)
	}

	// Recomputing is only legal while the occasion sits in the computed state
	if err := transitionOccasion(occasion, model.OccasionComputed); err != nil {
		return nil, err
	}

	comp, err := computeTurnOrder(ctx, database, cfg, logger, occasion.Algorithm, occasion.InstancePool, now)
	if err != nil {
		return nil, err
	}

	occasion.MemberIDs = memberIDList(comp.Participants)
	occasion.Order = comp.Output.Order
	occasion.Quotas = comp.Output.Quotas
	occasion.CurrentTurn = 0
	occasion.Picks = nil

	if err := transitionOccasion(occasion, model.OccasionActive); err != nil {
		return nil, err
	}

	logger.Info("Activating selection occasion",
		zap.String("occasion_id", occasion.ID),
		zap.String("algorithm", string(occasion.Algorithm)),
		zap.Strings("order", occasion.Order),
		zap.String("first_turn", occasion.TurnMember()))

	if err := database.UpdateOccasion(ctx, occasion); err != nil {
		return nil, fmt.Errorf("failed to update occasion: %w", err)
	}

	return &ActivateOccasionResult{
		Occasion: occasion,
		Warnings: comp.Output.Warnings,
	}, nil
}
