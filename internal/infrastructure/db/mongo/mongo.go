package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultPoolSize = 50
)

// Config holds the connection settings for the portal database.
type Config struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxPoolSize uint64
	// CredentialTTL, when set, expires session credentials this long after
	// their last write.
	CredentialTTL time.Duration
}

// Connect opens a client, pings the primary and prepares the portal
// collections before handing back the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pool := cfg.MaxPoolSize
	if pool == 0 {
		pool = defaultPoolSize
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("marketingcrm-portal").
		SetMaxPoolSize(pool).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := ensureIndexes(connectCtx, db, cfg.CredentialTTL); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, err
	}
	return client, db, nil
}

// ensureIndexes is safe to run on every start; existing indexes are kept.
func ensureIndexes(ctx context.Context, db *mongo.Database, credentialTTL time.Duration) error {
	_, err := db.Collection(authEventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo index %s: %w", authEventsCollection, err)
	}

	updated := mongo.IndexModel{Keys: bson.D{{Key: "updated_at", Value: 1}}}
	if credentialTTL > 0 {
		updated.Options = options.Index().
			SetName("updated_at_ttl").
			SetExpireAfterSeconds(int32(credentialTTL / time.Second))
	}
	_, err = db.Collection(credentialCollection).Indexes().CreateOne(ctx, updated)
	if err != nil {
		return fmt.Errorf("mongo index %s: %w", credentialCollection, err)
	}
	return nil
}
