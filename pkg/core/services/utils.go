package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/fairness"
	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/core/turnorder"
	"github.com/tackroom/fairshare/pkg/db"
)

// activeMembers filters the roster to members who can currently be assigned work
func activeMembers(roster []model.Member) []model.Member {
	active := make([]model.Member, 0, len(roster))
	for _, m := range roster {
		if m.Status == model.MemberActive {
			active = append(active, m)
		}
	}
	return active
}

// memberIDList extracts member IDs from a roster (useful for logging)
func memberIDList(members []model.Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

// periodWindow returns the span covering both the calendar week and the
// calendar month containing at. Listing assigned instances over this span is
// enough to seed the per-period tallies for anything scheduled at that time.
func periodWindow(at time.Time) (time.Time, time.Time) {
	monthStart := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	// ISO weeks start on Monday
	weekday := int(at.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	weekStart := dayStart.AddDate(0, 0, -(weekday - 1))
	weekEnd := weekStart.AddDate(0, 0, 7)

	from, to := monthStart, monthEnd
	if weekStart.Before(from) {
		from = weekStart
	}
	if weekEnd.After(to) {
		to = weekEnd
	}
	return from, to
}

// transitionOccasion moves an occasion to the next lifecycle state, rejecting
// moves the state machine does not allow
func transitionOccasion(occasion *model.SelectionOccasion, next model.OccasionState) error {
	if !occasion.State.CanTransition(next) {
		return model.NewValidationError("state", fmt.Sprintf("cannot move occasion from %s to %s", occasion.State, next))
	}
	occasion.State = next
	return nil
}

// turnOrderSource is the slice of the database shared by every service that
// computes a turn order
type turnOrderSource interface {
	ListMembers(ctx context.Context, groupID string) ([]model.Member, error)
	ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error)
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
	LatestHistory(ctx context.Context, groupID string) (*model.TurnOrderHistory, error)
}

// turnOrderComputation bundles everything computing a turn order produced
type turnOrderComputation struct {
	Participants []model.Member
	Pool         []model.WorkInstance
	Output       *turnorder.Output
}

// computeTurnOrder loads the roster, ledger, pool and history for a group and
// runs the configured algorithm over them
func computeTurnOrder(
	ctx context.Context,
	database turnOrderSource,
	cfg *config.Config,
	logger *zap.Logger,
	algorithm model.Algorithm,
	poolIDs []string,
	now time.Time,
) (*turnOrderComputation, error) {
	// Step 1: DB query - Fetch roster
	logger.Debug("Fetching members", zap.String("group_id", cfg.GroupID))
	roster, err := database.ListMembers(ctx, cfg.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}

	participants := activeMembers(roster)
	logger.Debug("Active participants", zap.Int("count", len(participants)))

	// Step 2: DB query - Fetch completed points inside the fairness horizon
	horizon := cfg.Horizon()
	horizonStart := horizon.Start(now)
	entries, err := database.ListCompletedPoints(ctx, cfg.GroupID, horizonStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed points: %w", err)
	}
	ledger := fairness.NewLedger(entries, horizon, now)

	// Step 3: DB query - Resolve the instance pool
	pool := make([]model.WorkInstance, 0, len(poolIDs))
	for _, id := range poolIDs {
		inst, err := database.GetInstance(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch pool instance %s: %w", id, err)
		}
		if inst.Assigned() {
			return nil, model.NewValidationError("pool", fmt.Sprintf("instance %s is already assigned", id))
		}
		pool = append(pool, *inst)
	}

	// Step 4: DB query - Fetch the most recent turn order history
	history, err := database.LatestHistory(ctx, cfg.GroupID)
	if err != nil {
		if !errors.Is(err, db.ErrHistoryNotFound) {
			return nil, fmt.Errorf("failed to fetch turn order history: %w", err)
		}
		history = nil
	}

	// Step 5: Run the algorithm
	output, err := turnorder.Compute(algorithm, turnorder.Input{
		Participants: participants,
		Pool:         pool,
		Ledger:       ledger,
		History:      history,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute turn order: %w", err)
	}

	for _, warning := range output.Warnings {
		logger.Warn("Turn order warning", zap.String("warning", warning))
	}

	return &turnOrderComputation{
		Participants: participants,
		Pool:         pool,
		Output:       output,
	}, nil
}

type instanceGetter interface {
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
}

// resolveRemainingPool fetches the unpicked pool instances that are still
// claimable, skipping anything assigned outside the occasion
func resolveRemainingPool(ctx context.Context, database instanceGetter, logger *zap.Logger, occasion *model.SelectionOccasion) ([]model.WorkInstance, error) {
	remaining := occasion.RemainingPool()
	instances := make([]model.WorkInstance, 0, len(remaining))
	for _, id := range remaining {
		inst, err := database.GetInstance(ctx, id)
		if err != nil {
			if errors.Is(err, db.ErrInstanceNotFound) {
				logger.Warn("Pool instance no longer exists", zap.String("instance_id", id))
				continue
			}
			return nil, fmt.Errorf("failed to fetch pool instance %s: %w", id, err)
		}
		if inst.Assigned() {
			continue
		}
		instances = append(instances, *inst)
	}
	return instances, nil
}
