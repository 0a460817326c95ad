package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/core/ports"
)

const defaultIdleTTL = 30 * time.Minute

var errEmptySessionID = errors.New("session id is empty")

// RegistryOptions tunes a SessionRegistry.
type RegistryOptions struct {
	// AccessTTL is the short-lived store lifetime for access credentials.
	AccessTTL time.Duration
	// IdleTTL is how long an unused manager stays in memory.
	IdleTTL   time.Duration
	Observers []SessionObserver
	// OnSize, when set, receives the number of held managers after it changes.
	OnSize func(n int)
}

type registryEntry struct {
	manager  *SessionManager
	lastSeen time.Time
}

// SessionRegistry hands out one SessionManager per browser session id.
type SessionRegistry struct {
	backend ports.AuthBackend
	short   ports.CredentialStore
	long    ports.CredentialStore
	opts    RegistryOptions
	now     func() time.Time
	log     zerolog.Logger

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewSessionRegistry builds an empty registry.
func NewSessionRegistry(backend ports.AuthBackend, short, long ports.CredentialStore, opts RegistryOptions, log zerolog.Logger) *SessionRegistry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	return &SessionRegistry{
		backend: backend,
		short:   short,
		long:    long,
		opts:    opts,
		now:     time.Now,
		log:     log,
		entries: make(map[string]*registryEntry),
	}
}

// Open returns the manager for sessionID after restoring it from the
// persisted credentials.
func (r *SessionRegistry) Open(ctx context.Context, sessionID string) (ports.SessionManager, error) {
	if sessionID == "" {
		return nil, errEmptySessionID
	}
	m := r.manager(sessionID)
	if _, err := m.Restore(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SessionRegistry) manager(sessionID string) *SessionManager {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		e = &registryEntry{
			manager: NewSessionManager(sessionID, r.backend, r.short, r.long, r.opts.AccessTTL, r.log, r.opts.Observers...),
		}
		r.entries[sessionID] = e
		r.reportSize()
	}
	e.lastSeen = r.now()
	return e.manager
}

// reportSize must be called with mu held.
func (r *SessionRegistry) reportSize() {
	if r.opts.OnSize != nil {
		r.opts.OnSize(len(r.entries))
	}
}

// Len reports how many managers are held in memory.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts managers idle for longer than IdleTTL. Persisted credentials
// are untouched; the next Open restores from them.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.reportSize()
	}
	return evicted
}

// Start runs Sweep periodically until ctx is cancelled.
func (r *SessionRegistry) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.opts.IdleTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					r.log.Debug().Int("evicted", n).Int("open", r.Len()).Msg("idle sessions evicted")
				}
			}
		}
	}()
}
