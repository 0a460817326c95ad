// Package memstore is an in-process CredentialStore for development and
// single-instance deployments.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/marketingcrm/portal/internal/core/domain"
)

type item struct {
	value     string
	expiresAt time.Time
}

// Store keeps credentials in memory. Expired entries are dropped when read
// and by Sweep.
type Store struct {
	mu         sync.Mutex
	items      map[string]item
	defaultTTL time.Duration
	now        func() time.Time
}

// New returns an empty Store. defaultTTL applies when Set is called with a
// zero ttl; zero means no expiry.
func New(defaultTTL time.Duration) *Store {
	return &Store{items: make(map[string]item), defaultTTL: defaultTTL, now: time.Now}
}

func key(sessionID, k string) string { return sessionID + ":" + k }

func (s *Store) Get(_ context.Context, sessionID, k string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key(sessionID, k)]
	if !ok {
		return "", domain.ErrCredentialNotFound
	}
	if !it.expiresAt.IsZero() && !s.now().Before(it.expiresAt) {
		delete(s.items, key(sessionID, k))
		return "", domain.ErrCredentialNotFound
	}
	return it.value, nil
}

func (s *Store) Set(_ context.Context, sessionID, k, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	it := item{value: value}
	if ttl > 0 {
		it.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.items[key(sessionID, k)] = it
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, sessionID string, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.items, key(sessionID, k))
	}
	s.mu.Unlock()
	return nil
}

// Sweep removes every expired entry and returns how many it dropped.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, it := range s.items {
		if !it.expiresAt.IsZero() && !now.Before(it.expiresAt) {
			delete(s.items, k)
			n++
		}
	}
	return n
}

// Len reports the number of held entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Start runs Sweep every interval until ctx is cancelled.
func (s *Store) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
