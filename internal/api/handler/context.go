package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/api/middleware"
	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/guard"
	"github.com/marketingcrm/portal/internal/core/ports"
)

// sessionManager returns the manager the Session middleware attached.
func sessionManager(c echo.Context) (ports.SessionManager, error) {
	mgr := middleware.SessionFrom(c)
	if mgr == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return mgr, nil
}

// bearer returns the access credential for backend calls, failing fast when
// the session is anonymous.
func bearer(c echo.Context) (string, *domain.Session, error) {
	mgr, err := sessionManager(c)
	if err != nil {
		return "", nil, err
	}
	s := mgr.Current()
	tok, err := mgr.AccessToken()
	if err != nil || s == nil {
		return "", nil, domain.ErrNotAuthenticated
	}
	return tok, s, nil
}

func navFrom(c echo.Context) []guard.NavItem {
	nav, _ := c.Get(middleware.ContextKeyNav).([]guard.NavItem)
	return nav
}
