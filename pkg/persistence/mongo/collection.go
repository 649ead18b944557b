package mongo

import (
	"context"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is the subset of collection operations repositories use.
type Collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongodriver.SingleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error)
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongodriver.InsertOneResult, error)
	InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongodriver.InsertManyResult, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongodriver.UpdateResult, error)
	UpdateMany(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongodriver.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongodriver.SingleResult
	DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongodriver.DeleteResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
	Indexes() mongodriver.IndexView
	Name() string
}

// timeoutCollection bounds every query with the configured timeout.
type timeoutCollection struct {
	coll    *mongodriver.Collection
	timeout time.Duration
}

func newTimeoutCollection(coll *mongodriver.Collection, timeout time.Duration) Collection {
	return &timeoutCollection{coll: coll, timeout: timeout}
}

func (c *timeoutCollection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *timeoutCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongodriver.SingleResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.FindOne(ctx, filter, opts...)
}

func (c *timeoutCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.Find(ctx, filter, opts...)
}

func (c *timeoutCollection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongodriver.InsertOneResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.InsertOne(ctx, document, opts...)
}

func (c *timeoutCollection) InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongodriver.InsertManyResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.InsertMany(ctx, documents, opts...)
}

func (c *timeoutCollection) UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongodriver.UpdateResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.UpdateOne(ctx, filter, update, opts...)
}

func (c *timeoutCollection) UpdateMany(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongodriver.UpdateResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.UpdateMany(ctx, filter, update, opts...)
}

func (c *timeoutCollection) FindOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongodriver.SingleResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.FindOneAndUpdate(ctx, filter, update, opts...)
}

func (c *timeoutCollection) DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongodriver.DeleteResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.DeleteMany(ctx, filter, opts...)
}

func (c *timeoutCollection) CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.CountDocuments(ctx, filter, opts...)
}

func (c *timeoutCollection) Indexes() mongodriver.IndexView {
	return c.coll.Indexes()
}

func (c *timeoutCollection) Name() string {
	return c.coll.Name()
}
