package middleware

import (
	"context"

	"github.com/marketingcrm/portal/internal/core/domain"
)

type stubManager struct {
	id      string
	session *domain.Session
}

func (m *stubManager) ID() string               { return m.id }
func (m *stubManager) Current() *domain.Session { return m.session }
func (m *stubManager) AccessToken() (string, error) {
	if m.session == nil {
		return "", domain.ErrNotAuthenticated
	}
	return "tok", nil
}
func (m *stubManager) Restore(context.Context) (*domain.Session, error) { return m.session, nil }
func (m *stubManager) Login(context.Context, string, string) (*domain.Session, error) {
	return m.session, nil
}
func (m *stubManager) Register(context.Context, string, string, domain.Role) (*domain.Session, error) {
	return m.session, nil
}
func (m *stubManager) Refresh(context.Context) (*domain.Session, error) { return m.session, nil }
func (m *stubManager) Logout(context.Context) string {
	m.session = nil
	return domain.LandingRoute
}
