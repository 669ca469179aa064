package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// ReleaseInstanceResult contains the instance after it returned to the pool
type ReleaseInstanceResult struct {
	Instance       *model.WorkInstance
	ReleasedMember string // who held the instance, empty if nobody did
}

// ReleaseInstanceStore defines the database operations needed for releasing an instance
type ReleaseInstanceStore interface {
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
	ReleaseInstance(ctx context.Context, instanceID string) error
}

// ReleaseInstance returns an assigned instance to the unassigned pool. When
// memberID is set, only that member's own assignment can be released; an empty
// memberID is an operator release. Releasing an unassigned instance is a no-op.
func ReleaseInstance(
	ctx context.Context,
	database ReleaseInstanceStore,
	logger *zap.Logger,
	instanceID, memberID string,
) (*ReleaseInstanceResult, error) {
	logger.Debug("Starting releaseInstance",
		zap.String("instance_id", instanceID),
		zap.String("member_id", memberID))

	instance, err := database.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instance: %w", err)
	}

	if !instance.Assigned() {
		logger.Info("Instance already unassigned", zap.String("instance_id", instanceID))
		return &ReleaseInstanceResult{Instance: instance}, nil
	}

	if memberID != "" && instance.AssignedMemberID != memberID {
		return nil, model.NewValidationError("member", "instance is assigned to a different member")
	}

	holder := instance.AssignedMemberID
	if err := database.ReleaseInstance(ctx, instanceID); err != nil {
		return nil, fmt.Errorf("failed to release instance: %w", err)
	}
	instance.AssignedMemberID = ""
	instance.Status = model.InstanceUnassigned

	logger.Info("Instance released",
		zap.String("instance_id", instanceID),
		zap.String("released_member", holder))

	return &ReleaseInstanceResult{
		Instance:       instance,
		ReleasedMember: holder,
	}, nil
}
