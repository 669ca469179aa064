package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/fairness"
	"github.com/tackroom/fairshare/pkg/core/model"
)

// MemberStanding is one member's share of the completed work inside the horizon
type MemberStanding struct {
	Member     model.Member
	Points     float64
	HasHistory bool
}

// FairnessReportResult contains the group's fairness standing
type FairnessReportResult struct {
	HorizonStart  time.Time // zero when the horizon is unbounded
	Standings     []MemberStanding
	FairnessIndex float64
}

// FairnessReportStore defines the database operations needed for the fairness report
type FairnessReportStore interface {
	ListMembers(ctx context.Context, groupID string) ([]model.Member, error)
	ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error)
}

// FairnessReport summarises how evenly completed work has been spread across
// the active roster inside the fairness horizon
func FairnessReport(
	ctx context.Context,
	database FairnessReportStore,
	cfg *config.Config,
	logger *zap.Logger,
	now time.Time,
) (*FairnessReportResult, error) {
	logger.Debug("Starting fairnessReport", zap.String("group_id", cfg.GroupID))

	roster, err := database.ListMembers(ctx, cfg.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	participants := activeMembers(roster)

	horizon := cfg.Horizon()
	horizonStart := horizon.Start(now)
	entries, err := database.ListCompletedPoints(ctx, cfg.GroupID, horizonStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed points: %w", err)
	}
	ledger := fairness.NewLedger(entries, horizon, now)

	standings := make([]MemberStanding, len(participants))
	for i, member := range participants {
		standings[i] = MemberStanding{
			Member:     member,
			Points:     ledger.Points(member.ID),
			HasHistory: ledger.HasHistory(member.ID),
		}
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points == standings[j].Points {
			return standings[i].Member.DisplayName < standings[j].Member.DisplayName
		}
		return standings[i].Points > standings[j].Points
	})

	index := ledger.Index(memberIDList(participants))

	logger.Info("Fairness report computed",
		zap.Int("member_count", len(participants)),
		zap.Float64("fairness_index", index))

	return &FairnessReportResult{
		HorizonStart:  horizonStart,
		Standings:     standings,
		FairnessIndex: index,
	}, nil
}
