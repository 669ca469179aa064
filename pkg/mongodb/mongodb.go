package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collMembers   = "members"
	collInstances = "work_instances"
	collOccasions = "selection_occasions"
	collHistory   = "turn_order_history"
)

// DB provides fairness engine storage backed by MongoDB
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewDB connects to MongoDB and prepares the collections
func NewDB(ctx context.Context, uri, databaseName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	d := &DB{client: client, database: client.Database(databaseName)}
	if err := d.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	return d, nil
}

// Close disconnects the underlying client
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.database.Collection(name)
}

// ensureIndexes creates the indexes the stores rely on. The unique index on
// occasionId is what makes history inserts idempotent per occasion.
func (d *DB) ensureIndexes(ctx context.Context) error {
	_, err := d.collection(collHistory).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "occasionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create history occasion index: %w", err)
	}

	_, err = d.collection(collInstances).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "scheduledAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create instance schedule index: %w", err)
	}

	_, err = d.collection(collOccasions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create occasion group index: %w", err)
	}

	return nil
}
