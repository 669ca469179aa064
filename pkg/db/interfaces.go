package db

import (
	"context"
	"time"

	"github.com/tackroom/fairshare/pkg/core/model"
)

// MemberStore defines the interface for roster operations
type MemberStore interface {
	ListMembers(ctx context.Context, groupID string) ([]model.Member, error)
	GetMember(ctx context.Context, groupID, memberID string) (*model.Member, error)
	UpsertMember(ctx context.Context, member *model.Member) error
}

// InstanceStore defines the interface for work instance operations.
// ClaimInstance is the compare-and-swap boundary: it succeeds only while the
// instance is still unassigned and returns ErrInstanceUnavailable to the
// losing claimant.
type InstanceStore interface {
	GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error)
	InsertInstances(ctx context.Context, instances []model.WorkInstance) error
	ListInstancesBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error)
	ListUnassignedBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error)
	ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error)
	ClaimInstance(ctx context.Context, instanceID, memberID string) error
	ReleaseInstance(ctx context.Context, instanceID string) error
}

// OccasionStore defines the interface for selection occasion documents
type OccasionStore interface {
	InsertOccasion(ctx context.Context, occasion *model.SelectionOccasion) error
	GetOccasion(ctx context.Context, occasionID string) (*model.SelectionOccasion, error)
	UpdateOccasion(ctx context.Context, occasion *model.SelectionOccasion) error
	DeleteOccasion(ctx context.Context, occasionID string) error
	ListOccasions(ctx context.Context, groupID string) ([]model.SelectionOccasion, error)
}

// HistoryStore defines the interface for turn order history records.
// InsertHistory is idempotent on the occasion ID: inserting a record for an
// occasion that already has one is a no-op, so re-completing an occasion
// never creates a duplicate.
type HistoryStore interface {
	LatestHistory(ctx context.Context, groupID string) (*model.TurnOrderHistory, error)
	HistoryForOccasion(ctx context.Context, occasionID string) (*model.TurnOrderHistory, error)
	InsertHistory(ctx context.Context, record *model.TurnOrderHistory) error
}

// Database combines every store the application needs. Services declare the
// narrow subset they use; backends implement the whole thing.
type Database interface {
	MemberStore
	InstanceStore
	OccasionStore
	HistoryStore
}
