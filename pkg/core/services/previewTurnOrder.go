package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/model"
)

// PreviewTurnOrderResult contains a computed turn order that was not persisted
type PreviewTurnOrderResult struct {
	Algorithm    model.Algorithm
	Participants []model.Member
	Pool         []model.WorkInstance
	Order        []string
	Quotas       map[string]float64
	Warnings     []string
}

// PreviewTurnOrderStore defines the database operations needed for previewing a turn order
type PreviewTurnOrderStore interface {
	ListMembers(ctx context.Context, groupID string) ([]model.Member, error)
	ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error)
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
	LatestHistory(ctx context.Context, groupID string) (*model.TurnOrderHistory, error)
}

// PreviewTurnOrder computes the turn order the given algorithm would produce
// for the pool, without creating a selection occasion. Running it twice over
// the same state yields the same order.
func PreviewTurnOrder(
	ctx context.Context,
	database PreviewTurnOrderStore,
	cfg *config.Config,
	logger *zap.Logger,
	algorithmName string,
	poolIDs []string,
	now time.Time,
) (*PreviewTurnOrderResult, error) {
	if algorithmName == "" {
		algorithmName = cfg.DefaultAlgorithm
	}
	algorithm, err := model.ParseAlgorithm(algorithmName)
	if err != nil {
		return nil, err
	}

	logger.Debug("Starting previewTurnOrder",
		zap.String("group_id", cfg.GroupID),
		zap.String("algorithm", string(algorithm)),
		zap.Int("pool_size", len(poolIDs)))

	comp, err := computeTurnOrder(ctx, database, cfg, logger, algorithm, poolIDs, now)
	if err != nil {
		return nil, err
	}

	logger.Info("Turn order previewed",
		zap.String("algorithm", string(algorithm)),
		zap.Strings("order", comp.Output.Order))

	return &PreviewTurnOrderResult{
		Algorithm:    algorithm,
		Participants: comp.Participants,
		Pool:         comp.Pool,
		Order:        comp.Output.Order,
		Quotas:       comp.Output.Quotas,
		Warnings:     comp.Output.Warnings,
	}, nil
}
