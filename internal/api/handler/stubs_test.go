package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/api/middleware"
	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
)

type stubManager struct {
	session    *domain.Session
	loginFn    func(email, password string) (*domain.Session, error)
	registerFn func(email, password string, role domain.Role) (*domain.Session, error)
	refreshFn  func() (*domain.Session, error)
	logouts    int
}

func (m *stubManager) ID() string               { return "sid" }
func (m *stubManager) Current() *domain.Session { return m.session }
func (m *stubManager) AccessToken() (string, error) {
	if m.session == nil {
		return "", domain.ErrNotAuthenticated
	}
	return "tok", nil
}
func (m *stubManager) Restore(context.Context) (*domain.Session, error) { return m.session, nil }
func (m *stubManager) Login(_ context.Context, email, password string) (*domain.Session, error) {
	s, err := m.loginFn(email, password)
	if err == nil {
		m.session = s
	}
	return s, err
}
func (m *stubManager) Register(_ context.Context, email, password string, role domain.Role) (*domain.Session, error) {
	s, err := m.registerFn(email, password, role)
	if err == nil {
		m.session = s
	}
	return s, err
}
func (m *stubManager) Refresh(context.Context) (*domain.Session, error) {
	s, err := m.refreshFn()
	if err == nil {
		m.session = s
	}
	return s, err
}
func (m *stubManager) Logout(context.Context) string {
	m.logouts++
	m.session = nil
	return domain.LandingRoute
}

var (
	userSession  = &domain.Session{Email: "ana@example.com", Role: domain.RoleUser}
	adminSession = &domain.Session{Email: "boss@example.com", Role: domain.RoleAdmin}
)

// newContext builds an echo context carrying mgr, with the portal validator.
func newContext(method, target string, body io.Reader, contentType string, mgr ports.SessionManager) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if mgr != nil {
		c.Set(middleware.ContextKeySession, mgr)
	}
	return c, rec
}
