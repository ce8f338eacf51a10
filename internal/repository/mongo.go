package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/metrics"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
)

// MongoCollection implements Collection on a MongoDB collection
type MongoCollection[T any] struct {
	coll    *mongo.Collection
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMongoCollection wraps coll. Every operation runs with the given timeout.
func NewMongoCollection[T any](coll *mongo.Collection, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *MongoCollection[T] {
	return &MongoCollection[T]{
		coll:    coll,
		timeout: timeout,
		metrics: m,
		logger:  logger.With(zap.String("collection", coll.Name())),
	}
}

func (c *MongoCollection[T]) begin(ctx context.Context, op string) (context.Context, func()) {
	start := time.Now()
	cancel := func() {}
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {
		cancel()
		c.metrics.RecordDBQuery(c.coll.Name(), op, time.Since(start))
	}
}

// Count implements query.Source
func (c *MongoCollection[T]) Count(ctx context.Context, filter query.Filter) (int64, error) {
	ctx, done := c.begin(ctx, "count")
	defer done()

	n, err := c.coll.CountDocuments(ctx, filter.BSON())
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// Find implements query.Source
func (c *MongoCollection[T]) Find(ctx context.Context, plan query.Plan) ([]T, error) {
	ctx, done := c.begin(ctx, "find")
	defer done()

	opts := options.Find()
	if sort := plan.SortBSON(); len(sort) > 0 {
		opts.SetSort(sort)
	}
	if plan.Paged() {
		opts.SetSkip(plan.Skip()).SetLimit(int64(plan.Limit))
	}
	if proj := plan.ProjectionBSON(); proj != nil {
		opts.SetProjection(proj)
	}

	cursor, err := c.coll.Find(ctx, plan.Filter.BSON(), opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return out, nil
}

// FindOne returns the first match or ErrNotFound
func (c *MongoCollection[T]) FindOne(ctx context.Context, filter query.Filter) (T, error) {
	ctx, done := c.begin(ctx, "find_one")
	defer done()

	var out T
	if err := c.coll.FindOne(ctx, filter.BSON()).Decode(&out); err != nil {
		return out, translate(err)
	}
	return out, nil
}

// Insert stores a new document
func (c *MongoCollection[T]) Insert(ctx context.Context, doc T) error {
	ctx, done := c.begin(ctx, "insert")
	defer done()

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	return nil
}

// ReplaceOne overwrites the first match with doc
func (c *MongoCollection[T]) ReplaceOne(ctx context.Context, filter query.Filter, doc T) error {
	ctx, done := c.begin(ctx, "replace")
	defer done()

	res, err := c.coll.ReplaceOne(ctx, filter.BSON(), doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOne implements Collection
func (c *MongoCollection[T]) UpdateOne(ctx context.Context, filter query.Filter, set map[string]any) (T, error) {
	ctx, done := c.begin(ctx, "update_one")
	defer done()

	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := c.coll.FindOneAndUpdate(ctx, filter.BSON(), updateDoc(set), opts).Decode(&out); err != nil {
		return out, translate(err)
	}
	return out, nil
}

// UpdateMany sets fields on every match and returns the modified count
func (c *MongoCollection[T]) UpdateMany(ctx context.Context, filter query.Filter, set map[string]any) (int64, error) {
	ctx, done := c.begin(ctx, "update_many")
	defer done()

	res, err := c.coll.UpdateMany(ctx, filter.BSON(), updateDoc(set))
	if err != nil {
		return 0, translate(err)
	}
	return res.ModifiedCount, nil
}

// DeleteOne implements Collection
func (c *MongoCollection[T]) DeleteOne(ctx context.Context, filter query.Filter) (T, error) {
	ctx, done := c.begin(ctx, "delete_one")
	defer done()

	var out T
	if err := c.coll.FindOneAndDelete(ctx, filter.BSON()).Decode(&out); err != nil {
		return out, translate(err)
	}
	return out, nil
}

// DeleteMany removes every match and returns the deleted count
func (c *MongoCollection[T]) DeleteMany(ctx context.Context, filter query.Filter) (int64, error) {
	ctx, done := c.begin(ctx, "delete_many")
	defer done()

	res, err := c.coll.DeleteMany(ctx, filter.BSON())
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

// translate maps driver errors onto the package sentinels
func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
