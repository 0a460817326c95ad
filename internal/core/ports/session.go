package ports

import (
	"context"

	"github.com/marketingcrm/portal/internal/core/domain"
)

// SessionManager is the single mutation entry point for one browser
// session's credentials.
type SessionManager interface {
	ID() string
	Current() *domain.Session
	AccessToken() (string, error)
	Restore(ctx context.Context) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, email, password string, role domain.Role) (*domain.Session, error)
	Refresh(ctx context.Context) (*domain.Session, error)
	Logout(ctx context.Context) string
}

// SessionOpener resolves the manager for a browser session id, restoring
// persisted state before returning.
type SessionOpener interface {
	Open(ctx context.Context, sessionID string) (SessionManager, error)
}

// AuthEventPublisher receives session transitions. Publish must not block.
type AuthEventPublisher interface {
	Publish(event domain.AuthEvent)
}

// AuditRepository persists auth events.
type AuditRepository interface {
	InsertAuthEvent(ctx context.Context, event domain.AuthEvent) error
}
