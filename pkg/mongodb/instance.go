package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// unassignedFilter matches documents with no assignee. omitempty drops the
// field from unassigned documents, and nil matches missing fields too.
func unassignedFilter() bson.M {
	return bson.M{"$in": bson.A{nil, ""}}
}

// GetInstance retrieves one work instance
func (d *DB) GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error) {
	var inst model.WorkInstance
	err := d.collection(collInstances).FindOne(ctx, bson.M{"_id": instanceID}).Decode(&inst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, db.ErrInstanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work instance: %w", err)
	}

	return &inst, nil
}

// InsertInstances inserts work instance documents in a batch
func (d *DB) InsertInstances(ctx context.Context, instances []model.WorkInstance) error {
	if len(instances) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(instances))
	for i := range instances {
		docs = append(docs, instances[i])
	}

	if _, err := d.collection(collInstances).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert work instances: %w", err)
	}

	return nil
}

// ListInstancesBetween retrieves the group's instances scheduled inside
// [from, to], sorted chronologically
func (d *DB) ListInstancesBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error) {
	filter := bson.M{
		"groupId":     groupID,
		"scheduledAt": bson.M{"$gte": from, "$lte": to},
	}
	return d.findInstances(ctx, filter)
}

// ListUnassignedBetween retrieves the group's unassigned instances scheduled
// inside [from, to], sorted chronologically
func (d *DB) ListUnassignedBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error) {
	filter := bson.M{
		"groupId":          groupID,
		"scheduledAt":      bson.M{"$gte": from, "$lte": to},
		"status":           model.InstanceUnassigned,
		"assignedMemberId": unassignedFilter(),
	}
	return d.findInstances(ctx, filter)
}

// ListCompletedPoints retrieves one points entry per completed instance in the
// group, skipping completions before since (zero since means no cutoff)
func (d *DB) ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error) {
	filter := bson.M{
		"groupId": groupID,
		"status":  model.InstanceCompleted,
	}
	if !since.IsZero() {
		filter["completedAt"] = bson.M{"$gte": since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}, {Key: "assignedMemberId", Value: 1}})
	cursor, err := d.collection(collInstances).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed points: %w", err)
	}
	defer cursor.Close(ctx)

	var instances []model.WorkInstance
	if err := cursor.All(ctx, &instances); err != nil {
		return nil, fmt.Errorf("failed to decode completed instances: %w", err)
	}

	entries := make([]model.PointsEntry, 0, len(instances))
	for _, inst := range instances {
		if inst.CompletedAt == nil || inst.AssignedMemberID == "" {
			continue
		}
		entries = append(entries, model.PointsEntry{
			MemberID:    inst.AssignedMemberID,
			Points:      inst.PointValue,
			CompletedAt: *inst.CompletedAt,
		})
	}

	return entries, nil
}

// ClaimInstance assigns the instance to the member if and only if it is still
// unassigned. The filtered update is the compare-and-swap: of two concurrent
// claimants exactly one matches the unassigned document.
func (d *DB) ClaimInstance(ctx context.Context, instanceID, memberID string) error {
	filter := bson.M{"_id": instanceID, "assignedMemberId": unassignedFilter()}
	update := bson.M{"$set": bson.M{
		"assignedMemberId": memberID,
		"status":           model.InstanceAssigned,
	}}

	res, err := d.collection(collInstances).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim work instance: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// No document matched: either the instance does not exist or someone
	// else holds it.
	count, err := d.collection(collInstances).CountDocuments(ctx, bson.M{"_id": instanceID})
	if err != nil {
		return fmt.Errorf("failed to check work instance: %w", err)
	}
	if count == 0 {
		return db.ErrInstanceNotFound
	}
	return db.ErrInstanceUnavailable
}

// ReleaseInstance returns the instance to the unassigned pool
func (d *DB) ReleaseInstance(ctx context.Context, instanceID string) error {
	update := bson.M{
		"$set":   bson.M{"status": model.InstanceUnassigned},
		"$unset": bson.M{"assignedMemberId": ""},
	}

	res, err := d.collection(collInstances).UpdateOne(ctx, bson.M{"_id": instanceID}, update)
	if err != nil {
		return fmt.Errorf("failed to release work instance: %w", err)
	}
	if res.MatchedCount == 0 {
		return db.ErrInstanceNotFound
	}

	return nil
}

func (d *DB) findInstances(ctx context.Context, filter bson.M) ([]model.WorkInstance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := d.collection(collInstances).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query work instances: %w", err)
	}
	defer cursor.Close(ctx)

	instances := make([]model.WorkInstance, 0)
	if err := cursor.All(ctx, &instances); err != nil {
		return nil, fmt.Errorf("failed to decode work instances: %w", err)
	}

	return instances, nil
}
