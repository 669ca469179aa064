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

// LatestHistory retrieves the group's most recently completed history record
func (d *DB) LatestHistory(ctx context.Context, groupID string) (*model.TurnOrderHistory, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "completedAt", Value: -1}})

	var record model.TurnOrderHistory
	err := d.collection(collHistory).FindOne(ctx, bson.M{"groupId": groupID}, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, db.ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest history: %w", err)
	}

	return &record, nil
}

// HistoryForOccasion retrieves the record written for one occasion
func (d *DB) HistoryForOccasion(ctx context.Context, occasionID string) (*model.TurnOrderHistory, error) {
	var record model.TurnOrderHistory
	err := d.collection(collHistory).FindOne(ctx, bson.M{"occasionId": occasionID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, db.ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get occasion history: %w", err)
	}

	return &record, nil
}

// InsertHistory stores a history record unless the occasion already has one.
// The unique index on occasionId turns a duplicate insert into a no-op, which
// makes the write idempotent per occasion.
func (d *DB) InsertHistory(ctx context.Context, record *model.TurnOrderHistory) error {
	_, err := d.collection(collHistory).InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert turn order history: %w", err)
	}

	return nil
}
