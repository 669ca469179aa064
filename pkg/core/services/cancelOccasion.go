package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// CancelOccasionStore defines the database operations needed for cancelling a selection occasion
type CancelOccasionStore interface {
	GetOccasion(ctx context.Context, occasionID string) (*model.SelectionOccasion, error)
	DeleteOccasion(ctx context.Context, occasionID string) error
}

// CancelOccasion removes an occasion that never went live. Active occasions
// have picks behind them and must be completed instead.
func CancelOccasion(
	ctx context.Context,
	database CancelOccasionStore,
	logger *zap.Logger,
	occasionID string,
) error {
	logger.Debug("Starting cancelOccasion", zap.String("occasion_id", occasionID))

	occasion, err := database.GetOccasion(ctx, occasionID)
	if err != nil {
		return fmt.Errorf("failed to fetch occasion: %w", err)
	}

	if occasion.State != model.OccasionDraft && occasion.State != model.OccasionComputed {
		return model.NewValidationError("state", fmt.Sprintf("cannot cancel a %s occasion", occasion.State))
	}

	if err := database.DeleteOccasion(ctx, occasionID); err != nil {
		return fmt.Errorf("failed to delete occasion: %w", err)
	}

	logger.Info("Occasion cancelled", zap.String("occasion_id", occasionID))
	return nil
}
