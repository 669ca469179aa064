package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/eligibility"
	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// ClaimInstanceResult contains the instance after a successful claim
type ClaimInstanceResult struct {
	Instance *model.WorkInstance
	Member   *model.Member
}

// ClaimInstanceStore defines the database operations needed for open claiming
type ClaimInstanceStore interface {
	GetMember(ctx context.Context, groupID, memberID string) (*model.Member, error)
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
	ListInstancesBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error)
	ClaimInstance(ctx context.Context, instanceID, memberID string) error
}

// ClaimInstance books an unassigned instance for a member outside any
// selection occasion. The member's constraints are checked first, then the
// claim races conditionally; whoever loses sees the instance as no longer
// available.
func ClaimInstance(
	ctx context.Context,
	database ClaimInstanceStore,
	cfg *config.Config,
	logger *zap.Logger,
	instanceID, memberID string,
) (*ClaimInstanceResult, error) {
	logger.Debug("Starting claimInstance",
		zap.String("instance_id", instanceID),
		zap.String("member_id", memberID))

	member, err := database.GetMember(ctx, cfg.GroupID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	instance, err := database.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instance: %w", err)
	}
	if instance.GroupID != cfg.GroupID {
		return nil, db.ErrInstanceNotFound
	}
	if instance.Assigned() {
		return nil, db.ErrInstanceUnavailable
	}

	// Seed the limit tallies from instances sharing the claim's week or month
	seedFrom, seedTo := periodWindow(instance.ScheduledAt)
	existing, err := database.ListInstancesBetween(ctx, cfg.GroupID, seedFrom, seedTo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing instances: %w", err)
	}

	filter := eligibility.NewFilter([]model.Member{*member}, existing)
	if len(filter.Eligible(instance)) == 0 {
		return nil, model.NewValidationError("member", fmt.Sprintf("%s is not eligible for this instance", member.DisplayName))
	}

	if err := database.ClaimInstance(ctx, instanceID, memberID); err != nil {
		return nil, fmt.Errorf("failed to claim instance: %w", err)
	}
	instance.AssignedMemberID = memberID
	instance.Status = model.InstanceAssigned

	logger.Info("Instance claimed",
		zap.String("instance_id", instanceID),
		zap.String("member_id", memberID),
		zap.Float64("points", instance.PointValue))

	return &ClaimInstanceResult{
		Instance: instance,
		Member:   member,
	}, nil
}
