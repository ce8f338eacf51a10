package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/config"
	"github.com/adeshyearanty/crm-lead-service/internal/domain"
)

const (
	connectAttempts = 5
	retryBaseDelay  = time.Second
)

// Database wraps a MongoDB client bound to one database
type Database struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewDatabase connects to MongoDB and verifies the connection, retrying with
// exponential backoff while the server is unreachable.
func NewDatabase(ctx context.Context, cfg *config.MongoConfig, logger *zap.Logger) (*Database, error) {
	opts := options.Client().
		ApplyURI(cfg.ConnectionURI()).
		SetAppName("crm-lead-service").
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeoutDuration()).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeoutDuration())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err = client.Ping(ctx, readpref.Primary())
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to ping mongo after %d attempts: %w", attempt, err)
		}
		logger.Warn("MongoDB not reachable, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			_ = client.Disconnect(context.Background())
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))

	return &Database{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

// Collection returns a handle to the named collection
func (d *Database) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// Ping checks that the primary is reachable
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Indexes lists the secondary indexes the service relies on, per collection
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		domain.CollectionLeads: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "createdDate", Value: -1}}},
			{Keys: bson.D{{Key: "isArchived", Value: 1}, {Key: "createdDate", Value: -1}}},
		},
		domain.CollectionNotes: {
			{Keys: bson.D{{Key: "leadId", Value: 1}, {Key: "isPinned", Value: -1}, {Key: "createdAt", Value: -1}}},
		},
		domain.CollectionComments: {
			{Keys: bson.D{{Key: "noteId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		domain.CollectionViews: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isDefault", Value: 1}}},
		},
	}
}

// EnsureIndexes creates any missing indexes. Creating an existing index is a
// no-op on the server.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	for collection, models := range Indexes() {
		names, err := d.db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		d.logger.Debug("Indexes ensured",
			zap.String("collection", collection),
			zap.Strings("indexes", names),
		)
	}
	return nil
}

// IndexNames returns the names of the indexes present on collection
func (d *Database) IndexNames(ctx context.Context, collection string) ([]string, error) {
	specs, err := d.db.Collection(collection).Indexes().ListSpecifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes on %s: %w", collection, err)
	}
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Name)
	}
	return names, nil
}
