package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/model"
)

// CommitOccasionResult contains the stored occasion and any compute warnings
type CommitOccasionResult struct {
	Occasion *model.SelectionOccasion
	Warnings []string
}

// CommitOccasionStore defines the database operations needed for creating a selection occasion
type CommitOccasionStore interface {
	ListMembers(ctx context.Context, groupID string) ([]model.Member, error)
	ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error)
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
	LatestHistory(ctx context.Context, groupID string) (*model.TurnOrderHistory, error)
	InsertOccasion(ctx context.Context, occasion *model.SelectionOccasion) error
}

// CommitOccasion computes a turn order over the pool and stores it as a new
// selection occasion in the computed state. The order is not frozen yet;
// activation recomputes it against the roster of that moment.
func CommitOccasion(
	ctx context.Context,
	database CommitOccasionStore,
	cfg *config.Config,
	logger *zap.Logger,
	algorithmName string,
	poolIDs []string,
	closesAt time.Time,
	now time.Time,
) (*CommitOccasionResult, error) {
	if algorithmName == "" {
		algorithmName = cfg.DefaultAlgorithm
	}
	algorithm, err := model.ParseAlgorithm(algorithmName)
	if err != nil {
		return nil, err
	}
	if len(poolIDs) == 0 {
		return nil, model.NewValidationError("pool", "at least one instance is required")
	}

	logger.Debug("Starting commitOccasion",
		zap.String("group_id", cfg.GroupID),
		zap.String("algorithm", string(algorithm)),
		zap.Int("pool_size", len(poolIDs)))

	comp, err := computeTurnOrder(ctx, database, cfg, logger, algorithm, poolIDs, now)
	if err != nil {
		return nil, err
	}

	occasion := &model.SelectionOccasion{
		ID:           uuid.New().String(),
		GroupID:      cfg.GroupID,
		Algorithm:    algorithm,
		MemberIDs:    memberIDList(comp.Participants),
		InstancePool: poolIDs,
		State:        model.OccasionDraft,
		Order:        comp.Output.Order,
		Quotas:       comp.Output.Quotas,
		CurrentTurn:  0,
		ClosesAt:     closesAt,
		CreatedAt:    now,
	}

	if err := transitionOccasion(occasion, model.OccasionComputed); err != nil {
		return nil, err
	}

	logger.Info("Creating selection occasion",
		zap.String("occasion_id", occasion.ID),
		zap.String("algorithm", string(algorithm)),
		zap.Strings("order", occasion.Order))

	if err := database.InsertOccasion(ctx, occasion); err != nil {
		return nil, fmt.Errorf("failed to insert occasion: %w", err)
	}

	return &CommitOccasionResult{
		Occasion: occasion,
		Warnings: comp.Output.Warnings,
	}, nil
}
