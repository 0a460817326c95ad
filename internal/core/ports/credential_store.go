package ports

import (
	"context"
	"time"
)

// CredentialStore persists credentials for a browser session, namespaced by
// session id. Get returns domain.ErrCredentialNotFound for absent keys.
// A ttl of zero means the store's own lifetime rules apply.
type CredentialStore interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
}
