package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
	"github.com/marketingcrm/portal/internal/core/token"
	"github.com/marketingcrm/portal/pkg/logger"
)

// SessionObserver is notified after every session transition.
type SessionObserver func(event domain.AuthEvent)

// SessionManager owns the credentials of one browser session and moves it
// between ANONYMOUS (nil session) and AUTHENTICATED.
//
// Operations are serialized by opMu so one runs to completion before the
// next starts; mu guards the in-memory state read by views.
type SessionManager struct {
	id        string
	backend   ports.AuthBackend
	short     ports.CredentialStore
	long      ports.CredentialStore
	accessTTL time.Duration
	observers []SessionObserver
	now       func() time.Time
	log       zerolog.Logger

	opMu sync.Mutex

	mu      sync.RWMutex
	session *domain.Session
	token   string
}

// NewSessionManager returns an ANONYMOUS manager for sessionID. Call Restore
// before the first guard decision.
func NewSessionManager(
	sessionID string,
	backend ports.AuthBackend,
	short, long ports.CredentialStore,
	accessTTL time.Duration,
	log zerolog.Logger,
	observers ...SessionObserver,
) *SessionManager {
	return &SessionManager{
		id:        sessionID,
		backend:   backend,
		short:     short,
		long:      long,
		accessTTL: accessTTL,
		observers: observers,
		now:       time.Now,
		log:       log.With().Str("session_id", sessionID).Logger(),
	}
}

// ID returns the browser session id.
func (m *SessionManager) ID() string { return m.id }

// Current returns a copy of the session, or nil when ANONYMOUS.
func (m *SessionManager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// AccessToken returns the bearer credential for backend calls.
func (m *SessionManager) AccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return "", domain.ErrNotAuthenticated
	}
	return m.token, nil
}

// Restore synchronises the in-memory state with the persisted access
// credential. A missing or undecodable credential yields ANONYMOUS without
// an error; only store failures are returned. No backend call is made.
func (m *SessionManager) Restore(ctx context.Context) (*domain.Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	raw, err := m.short.Get(ctx, m.id, domain.KeyToken)
	if errors.Is(err, domain.ErrCredentialNotFound) {
		if prev := m.clear(); prev != nil {
			m.notify(domain.EventExpired, prev)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	if cur, tok := m.snapshot(); cur != nil && tok == raw {
		return cur, nil
	}

	s, _, err := sessionFromToken(raw)
	if err != nil {
		m.log.Warn().Err(err).Msg("discarding undecodable persisted credential")
		if delErr := m.short.Delete(ctx, m.id, domain.KeyToken, domain.KeyRole); delErr != nil {
			m.log.Warn().Err(delErr).Msg("failed to remove undecodable credential")
		}
		m.clear()
		m.notify(domain.EventRestoreFailed, nil)
		return nil, nil
	}

	m.set(s, raw)
	m.notify(domain.EventRestore, s)
	return m.Current(), nil
}

// Login exchanges email and password for a credential pair. On failure the
// state and both stores are left as they were.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	pair, err := m.backend.Token(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s, err := m.establish(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	m.log.Info().Str("email", logger.MaskEmail(s.Email)).Str("role", string(s.Role)).Msg("session authenticated")
	m.notify(domain.EventLogin, s)
	return m.Current(), nil
}

// Register creates an account and authenticates with the issued credential.
// The role in the issued credential wins over the requested one.
func (m *SessionManager) Register(ctx context.Context, email, password string, role domain.Role) (*domain.Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	pair, err := m.backend.Register(ctx, email, password, role)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s, err := m.establish(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if s.Role != role {
		m.log.Info().Str("requested", string(role)).Str("issued", string(s.Role)).Msg("backend issued a different role")
	}
	m.notify(domain.EventRegister, s)
	return m.Current(), nil
}

// Refresh obtains a new access credential with the persisted refresh
// credential. It works from ANONYMOUS as long as the refresh credential
// survives. On failure nothing changes.
func (m *SessionManager) Refresh(ctx context.Context) (*domain.Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	rt, err := m.long.Get(ctx, m.id, domain.KeyRefreshToken)
	if errors.Is(err, domain.ErrCredentialNotFound) {
		return nil, domain.ErrNoRefreshCredential
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	access, err := m.backend.RefreshToken(ctx, rt)
	if errors.Is(err, domain.ErrUnauthorized) {
		// only the refresh credential was refused; the access credential may still be good
		return nil, fmt.Errorf("refresh: %w", domain.ErrRefreshRejected)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	s, err := m.establish(ctx, &domain.TokenPair{AccessToken: access})
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	m.notify(domain.EventRefresh, s)
	return m.Current(), nil
}

// Logout clears the session and both stores unconditionally and returns the
// route the view must navigate to. Calling it while ANONYMOUS only returns
// the route.
func (m *SessionManager) Logout(ctx context.Context) string {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	// cleanup must survive a cancelled request
	ctx = context.WithoutCancel(ctx)
	if err := m.short.Delete(ctx, m.id, domain.KeyToken, domain.KeyRole); err != nil {
		m.log.Error().Err(err).Msg("failed to clear short-lived credentials")
	}
	if err := m.long.Delete(ctx, m.id, domain.KeyRefreshToken); err != nil {
		m.log.Error().Err(err).Msg("failed to clear refresh credential")
	}

	if prev := m.clear(); prev != nil {
		m.log.Info().Str("email", logger.MaskEmail(prev.Email)).Msg("session logged out")
		m.notify(domain.EventLogout, prev)
	}
	return domain.LandingRoute
}

// establish decodes pair.AccessToken, persists the pair and transitions to
// AUTHENTICATED. An empty RefreshToken keeps the persisted one.
func (m *SessionManager) establish(ctx context.Context, pair *domain.TokenPair) (*domain.Session, error) {
	s, claims, err := sessionFromToken(pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if err := m.persist(ctx, pair, s, m.ttlFor(claims)); err != nil {
		return nil, err
	}
	m.set(s, pair.AccessToken)
	return s, nil
}

// persist writes the short-lived keys, then the refresh credential. If the
// second write fails the short-lived keys are put back as they were.
func (m *SessionManager) persist(ctx context.Context, pair *domain.TokenPair, s *domain.Session, ttl time.Duration) error {
	prev, prevTok := m.snapshot()

	if err := m.short.Set(ctx, m.id, domain.KeyToken, pair.AccessToken, ttl); err != nil {
		return fmt.Errorf("persist access credential: %w", err)
	}
	if err := m.short.Set(ctx, m.id, domain.KeyRole, string(s.Role), ttl); err != nil {
		m.rollback(ctx, prev, prevTok)
		return fmt.Errorf("persist role: %w", err)
	}
	if pair.RefreshToken == "" {
		return nil
	}
	if err := m.long.Set(ctx, m.id, domain.KeyRefreshToken, pair.RefreshToken, 0); err != nil {
		m.rollback(ctx, prev, prevTok)
		return fmt.Errorf("persist refresh credential: %w", err)
	}
	return nil
}

func (m *SessionManager) rollback(ctx context.Context, prev *domain.Session, prevTok string) {
	ctx = context.WithoutCancel(ctx)
	var err error
	if prev == nil {
		err = m.short.Delete(ctx, m.id, domain.KeyToken, domain.KeyRole)
	} else {
		err = m.short.Set(ctx, m.id, domain.KeyToken, prevTok, m.accessTTL)
		if err == nil {
			err = m.short.Set(ctx, m.id, domain.KeyRole, string(prev.Role), m.accessTTL)
		}
	}
	if err != nil {
		m.log.Error().Err(err).Msg("failed to roll back short-lived credentials")
	}
}

// ttlFor bounds the configured access lifetime by the credential's expiry.
func (m *SessionManager) ttlFor(c domain.Claims) time.Duration {
	ttl := m.accessTTL
	if c.ExpiresAt.IsZero() {
		return ttl
	}
	if until := c.ExpiresAt.Sub(m.now()); until > 0 && (ttl <= 0 || until < ttl) {
		return until
	}
	return ttl
}

func (m *SessionManager) snapshot() (*domain.Session, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, ""
	}
	s := *m.session
	return &s, m.token
}

func (m *SessionManager) set(s *domain.Session, raw string) {
	m.mu.Lock()
	m.session = s
	m.token = raw
	m.mu.Unlock()
}

// clear drops the in-memory session and returns the one it replaced.
func (m *SessionManager) clear() *domain.Session {
	m.mu.Lock()
	prev := m.session
	m.session = nil
	m.token = ""
	m.mu.Unlock()
	return prev
}

func (m *SessionManager) notify(kind domain.AuthEventKind, s *domain.Session) {
	if len(m.observers) == 0 {
		return
	}
	ev := domain.AuthEvent{SessionID: m.id, Kind: kind, At: m.now().UTC()}
	if s != nil {
		ev.Email = s.Email
		ev.Role = s.Role
	}
	for _, obs := range m.observers {
		obs(ev)
	}
}

// sessionFromToken derives a Session from an access credential.
func sessionFromToken(raw string) (*domain.Session, domain.Claims, error) {
	claims, err := token.Decode(raw)
	if err != nil {
		return nil, claims, err
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return nil, claims, fmt.Errorf("%w: %q", domain.ErrUnknownRole, claims.Role)
	}
	return &domain.Session{Email: claims.Subject, Role: role}, claims, nil
}
