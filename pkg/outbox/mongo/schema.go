package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/quiverlabs/platform-commons/pkg/persistence/mongo"
)

const (
	idxStatusPriorityCreated = "outbox_status_priority_createdAt"
	idxStatusProcessAfter    = "outbox_status_processAfter"
	idxStatusCreated         = "outbox_status_createdAt"
)

// EnsureIndexes creates the indexes backing the fetch, requeue and purge
// queries. Idempotent, safe to call on every start.
func EnsureIndexes(ctx context.Context, m mongo.Mongo) error {
	indexes := []mongodriver.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "priority", Value: 1},
				{Key: "createdAt", Value: 1},
			},
			Options: options.Index().SetName(idxStatusPriorityCreated),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "processAfter", Value: 1},
			},
			Options: options.Index().SetName(idxStatusProcessAfter),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: 1},
			},
			Options: options.Index().SetName(idxStatusCreated),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := m.GetCollection(collectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
