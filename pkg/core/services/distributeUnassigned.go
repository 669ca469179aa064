package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/distributor"
	"github.com/tackroom/fairshare/pkg/core/fairness"
	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// DistributeUnassignedResult contains the distribution results
type DistributeUnassignedResult struct {
	WindowStart    time.Time
	WindowEnd      time.Time
	Assignments    map[string]string // instance ID -> member ID, empty string when unassignable
	Unassigned     []string          // instance IDs no eligible member could take
	Conflicts      []string          // instance IDs lost to concurrent claims
	ClaimedCount   int
	FinalScores    map[string]float64
	FairnessBefore float64
	FairnessAfter  float64
	DryRun         bool
}

// DistributeStore defines the database operations needed for distributing unassigned work
type DistributeStore interface {
	ListMembers(ctx context.Context, groupID string) ([]model.Member, error)
	ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error)
	ListUnassignedBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error)
	ListInstancesBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error)
	ClaimInstance(ctx context.Context, instanceID, memberID string) error
}

// DistributeUnassigned assigns every unassigned instance inside the
// distribution window to the eligible member with the lowest running score.
// If dryRun is true, the proposed assignments are not saved to the database.
func DistributeUnassigned(
	ctx context.Context,
	database DistributeStore,
	cfg *config.Config,
	logger *zap.Logger,
	now time.Time,
	dryRun bool,
) (*DistributeUnassignedResult, error) {
	logger.Debug("Starting distributeUnassigned",
		zap.String("group_id", cfg.GroupID),
		zap.Bool("dry_run", dryRun))

	windowEnd := now.AddDate(0, 0, cfg.DistributionWindowDays)

	// Step 1: DB query - Fetch roster
	logger.Debug("Fetching members")
	roster, err := database.ListMembers(ctx, cfg.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	participants := activeMembers(roster)
	logger.Debug("Active members", zap.Int("count", len(participants)), zap.Strings("member_ids", memberIDList(participants)))

	// Step 2: DB query - Fetch completed points and build the fairness ledger
	horizon := cfg.Horizon()
	horizonStart := horizon.Start(now)
	logger.Debug("Fetching completed points", zap.Time("since", horizonStart))
	entries, err := database.ListCompletedPoints(ctx, cfg.GroupID, horizonStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed points: %w", err)
	}
	ledger := fairness.NewLedger(entries, horizon, now)
	logger.Debug("Built fairness ledger", zap.Int("entry_count", len(entries)))

	// Step 3: DB query - Fetch unassigned instances inside the window
	logger.Debug("Fetching unassigned instances",
		zap.Time("window_start", now),
		zap.Time("window_end", windowEnd))
	pending, err := database.ListUnassignedBetween(ctx, cfg.GroupID, now, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unassigned instances: %w", err)
	}
	logger.Debug("Found unassigned instances", zap.Int("count", len(pending)))

	if len(pending) == 0 {
		logger.Info("No unassigned instances in distribution window")
		idx := ledger.Index(memberIDList(participants))
		return &DistributeUnassignedResult{
			WindowStart:    now,
			WindowEnd:      windowEnd,
			Assignments:    map[string]string{},
			FinalScores:    map[string]float64{},
			FairnessBefore: idx,
			FairnessAfter:  idx,
			DryRun:         dryRun,
		}, nil
	}

	// Step 4: DB query - Fetch existing instances so per-period limit tallies
	// count assignments made outside this run
	seedFrom, _ := periodWindow(now)
	_, seedTo := periodWindow(windowEnd)
	existing, err := database.ListInstancesBetween(ctx, cfg.GroupID, seedFrom, seedTo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing instances: %w", err)
	}
	logger.Debug("Seeding limit tallies", zap.Int("existing_count", len(existing)))

	// Step 5: Run the distribution algorithm
	logger.Info("Running distribution", zap.Int("instance_count", len(pending)))
	outcome, err := distributor.Distribute(pending, participants, ledger, existing)
	if err != nil {
		return nil, fmt.Errorf("distribution failed: %w", err)
	}

	logger.Info("Distribution completed",
		zap.Int("assigned", len(pending)-len(outcome.Unassigned)),
		zap.Int("unassignable", len(outcome.Unassigned)),
		zap.Float64("fairness_before", outcome.FairnessBefore),
		zap.Float64("fairness_after", outcome.FairnessAfter))

	for _, id := range outcome.Unassigned {
		logger.Warn("No eligible member for instance", zap.String("instance_id", id))
	}

	result := &DistributeUnassignedResult{
		WindowStart:    now,
		WindowEnd:      windowEnd,
		Assignments:    outcome.Assignments,
		Unassigned:     outcome.Unassigned,
		FinalScores:    outcome.FinalScores,
		FairnessBefore: outcome.FairnessBefore,
		FairnessAfter:  outcome.FairnessAfter,
		DryRun:         dryRun,
	}

	if dryRun {
		logger.Info("Dry run mode - assignments not saved")
		return result, nil
	}

	// Step 6: Claim each assignment. Claims are conditional, so an instance
	// grabbed by a member mid-run is reported as a conflict rather than
	// overwritten.
	ordered := make([]model.WorkInstance, len(pending))
	copy(ordered, pending)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].ScheduledAt.Equal(ordered[j].ScheduledAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].ScheduledAt.Before(ordered[j].ScheduledAt)
	})

	for _, inst := range ordered {
		memberID := outcome.Assignments[inst.ID]
		if memberID == "" {
			continue
		}
		if err := database.ClaimInstance(ctx, inst.ID, memberID); err != nil {
			if errors.Is(err, db.ErrInstanceUnavailable) {
				logger.Warn("Instance no longer available, skipping",
					zap.String("instance_id", inst.ID),
					zap.String("member_id", memberID))
				result.Conflicts = append(result.Conflicts, inst.ID)
				continue
			}
			return nil, fmt.Errorf("failed to claim instance %s: %w", inst.ID, err)
		}
		result.ClaimedCount++
	}

	logger.Info("Assignments saved",
		zap.Int("claimed", result.ClaimedCount),
		zap.Int("conflicts", len(result.Conflicts)))

	return result, nil
}
