package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// CompleteOccasionResult contains the completed occasion and its history record
type CompleteOccasionResult struct {
	Occasion         *model.SelectionOccasion
	History          *model.TurnOrderHistory
	Unpicked         []string // pool instance IDs never picked
	AlreadyCompleted bool
}

// CompleteOccasionStore defines the database operations needed for completing a selection occasion
type CompleteOccasionStore interface {
	GetOccasion(ctx context.Context, occasionID string) (*model.SelectionOccasion, error)
	UpdateOccasion(ctx context.Context, occasion *model.SelectionOccasion) error
	InsertHistory(ctx context.Context, history *model.TurnOrderHistory) error
	HistoryForOccasion(ctx context.Context, occasionID string) (*model.TurnOrderHistory, error)
}

// CompleteOccasion closes an active occasion and writes its turn order
// history. Completing an already completed occasion returns the existing
// history instead of writing a second record.
func CompleteOccasion(
	ctx context.Context,
	database CompleteOccasionStore,
	logger *zap.Logger,
	occasionID string,
	now time.Time,
) (*CompleteOccasionResult, error) {
	logger.Debug("Starting completeOccasion", zap.String("occasion_id", occasionID))

	occasion, err := database.GetOccasion(ctx, occasionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occasion: %w", err)
	}

	if occasion.State == model.OccasionCompleted {
		logger.Info("Occasion already completed", zap.String("occasion_id", occasionID))
		history, err := database.HistoryForOccasion(ctx, occasionID)
		if err != nil {
			if !errors.Is(err, db.ErrHistoryNotFound) {
				return nil, fmt.Errorf("failed to fetch history: %w", err)
			}
			// The completion marker landed but the history write did not;
			// heal by writing it now
			completedAt := now
			if occasion.CompletedAt != nil {
				completedAt = *occasion.CompletedAt
			}
			history = buildHistory(occasion, completedAt)
			if err := database.InsertHistory(ctx, history); err != nil {
				return nil, fmt.Errorf("failed to insert history: %w", err)
			}
			logger.Warn("Wrote missing history for completed occasion", zap.String("occasion_id", occasionID))
		}
		return &CompleteOccasionResult{
			Occasion:         occasion,
			History:          history,
			Unpicked:         occasion.RemainingPool(),
			AlreadyCompleted: true,
		}, nil
	}

	if err := transitionOccasion(occasion, model.OccasionCompleted); err != nil {
		return nil, err
	}
	completedAt := now
	occasion.CompletedAt = &completedAt

	history := buildHistory(occasion, now)

	// History goes first: the write is idempotent per occasion, so a retry
	// after a partial failure completes cleanly
	if err := database.InsertHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to insert history: %w", err)
	}
	if err := database.UpdateOccasion(ctx, occasion); err != nil {
		return nil, fmt.Errorf("failed to update occasion: %w", err)
	}

	unpicked := occasion.RemainingPool()
	logger.Info("Occasion completed",
		zap.String("occasion_id", occasion.ID),
		zap.Int("pick_count", len(occasion.Picks)),
		zap.Int("unpicked_count", len(unpicked)),
		zap.Strings("final_order", history.FinalOrder))

	return &CompleteOccasionResult{
		Occasion: occasion,
		History:  history,
		Unpicked: unpicked,
	}, nil
}

// buildHistory derives the turn order history record from a finished occasion
func buildHistory(occasion *model.SelectionOccasion, completedAt time.Time) *model.TurnOrderHistory {
	selections := make(map[string]int, len(occasion.Order))
	points := make(map[string]float64, len(occasion.Order))
	for _, pick := range occasion.Picks {
		selections[pick.MemberID]++
		points[pick.MemberID] += pick.Points
	}

	finalOrder := make([]string, len(occasion.Order))
	copy(finalOrder, occasion.Order)

	return &model.TurnOrderHistory{
		ID:                    uuid.New().String(),
		GroupID:               occasion.GroupID,
		OccasionID:            occasion.ID,
		Algorithm:             occasion.Algorithm,
		FinalOrder:            finalOrder,
		SelectionsPerMember:   selections,
		PointsPickedPerMember: points,
		CompletedAt:           completedAt,
	}
}
