package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketingcrm/portal/internal/core/domain"
)

const keyPrefix = "portal:session"

// CredentialStore is the short-lived credential store. Every key carries a
// TTL so abandoned sessions disappear on their own.
// Key format: portal:session:<session_id>:<key>
type CredentialStore struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewCredentialStore wraps client. defaultTTL applies when Set gets a zero ttl.
func NewCredentialStore(client *redis.Client, defaultTTL time.Duration) *CredentialStore {
	return &CredentialStore{client: client, defaultTTL: defaultTTL}
}

func (s *CredentialStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *CredentialStore) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if err := s.client.Set(ctx, s.key(sessionID, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *CredentialStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(sessionID, k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *CredentialStore) key(sessionID, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, sessionID, key)
}
