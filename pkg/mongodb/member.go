package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// ListMembers retrieves the group's members sorted by ID
func (d *DB) ListMembers(ctx context.Context, groupID string) ([]model.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := d.collection(collMembers).Find(ctx, bson.M{"groupId": groupID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer cursor.Close(ctx)

	members := make([]model.Member, 0)
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}

	return members, nil
}

// GetMember retrieves one member scoped to the group
func (d *DB) GetMember(ctx context.Context, groupID, memberID string) (*model.Member, error) {
	var member model.Member
	err := d.collection(collMembers).FindOne(ctx, bson.M{"_id": memberID, "groupId": groupID}).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, db.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &member, nil
}

// UpsertMember inserts a member document or replaces the existing one
func (d *DB) UpsertMember(ctx context.Context, member *model.Member) error {
	opts := options.Replace().SetUpsert(true)
	_, err := d.collection(collMembers).ReplaceOne(ctx, bson.M{"_id": member.ID}, member, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}
