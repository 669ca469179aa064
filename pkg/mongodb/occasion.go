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

// InsertOccasion stores a new selection occasion
func (d *DB) InsertOccasion(ctx context.Context, occasion *model.SelectionOccasion) error {
	if _, err := d.collection(collOccasions).InsertOne(ctx, occasion); err != nil {
		return fmt.Errorf("failed to insert occasion: %w", err)
	}

	return nil
}

// GetOccasion retrieves one selection occasion
func (d *DB) GetOccasion(ctx context.Context, occasionID string) (*model.SelectionOccasion, error) {
	var occasion model.SelectionOccasion
	err := d.collection(collOccasions).FindOne(ctx, bson.M{"_id": occasionID}).Decode(&occasion)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, db.ErrOccasionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get occasion: %w", err)
	}

	return &occasion, nil
}

// UpdateOccasion replaces a stored occasion
func (d *DB) UpdateOccasion(ctx context.Context, occasion *model.SelectionOccasion) error {
	res, err := d.collection(collOccasions).ReplaceOne(ctx, bson.M{"_id": occasion.ID}, occasion)
	if err != nil {
		return fmt.Errorf("failed to update occasion: %w", err)
	}
	if res.MatchedCount == 0 {
		return db.ErrOccasionNotFound
	}

	return nil
}

// DeleteOccasion removes a stored occasion
func (d *DB) DeleteOccasion(ctx context.Context, occasionID string) error {
	res, err := d.collection(collOccasions).DeleteOne(ctx, bson.M{"_id": occasionID})
	if err != nil {
		return fmt.Errorf("failed to delete occasion: %w", err)
	}
	if res.DeletedCount == 0 {
		return db.ErrOccasionNotFound
	}

	return nil
}

// ListOccasions retrieves the group's occasions sorted by creation time
func (d *DB) ListOccasions(ctx context.Context, groupID string) ([]model.SelectionOccasion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := d.collection(collOccasions).Find(ctx, bson.M{"groupId": groupID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query occasions: %w", err)
	}
	defer cursor.Close(ctx)

	occasions := make([]model.SelectionOccasion, 0)
	if err := cursor.All(ctx, &occasions); err != nil {
		return nil, fmt.Errorf("failed to decode occasions: %w", err)
	}

	return occasions, nil
}
