package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketingcrm/portal/internal/core/domain"
)

const credentialCollection = "session_credentials"

// CredentialStore is the long-lived credential store. Values never expire;
// they live until the session logs out.
type CredentialStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{coll: db.Collection(credentialCollection), now: time.Now}
}

type credentialDoc struct {
	SessionID string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func (s *CredentialStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc credentialDoc
	opts := options.FindOne().SetProjection(bson.M{"values." + key: 1})
	err := s.coll.FindOne(ctx, bson.M{"_id": sessionID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find credential %s: %w", key, err)
	}
	v, ok := doc.Values[key]
	if !ok {
		return "", domain.ErrCredentialNotFound
	}
	return v, nil
}

// Set upserts key into the session document. ttl is ignored.
func (s *CredentialStore) Set(ctx context.Context, sessionID, key, value string, _ time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"values." + key: value,
		"updated_at":    s.now().UTC(),
	}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": sessionID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert credential %s: %w", key, err)
	}
	return nil
}

// Delete unsets keys. A session without a document is a no-op.
func (s *CredentialStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	unset := bson.M{}
	for _, k := range keys {
		unset["values."+k] = ""
	}
	update := bson.M{
		"$unset": unset,
		"$set":   bson.M{"updated_at": s.now().UTC()},
	}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": sessionID}, update); err != nil {
		return fmt.Errorf("unset credentials: %w", err)
	}
	return nil
}
