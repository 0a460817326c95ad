package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
)

// Context keys shared with the handlers.
const (
	ContextKeySession = "session"
	ContextKeyNav     = "nav"
)

const (
	cookieMaxAge       = 30 * 24 * time.Hour
	contextKeyRotation = "session_rotation"
)

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	CookieName string
	Secure     bool
	Opener     ports.SessionOpener
}

// Session resolves the browser session id from its cookie, issuing a new
// one when it is missing or not a UUID, and stores the restored manager
// under ContextKeySession.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				if id, err := uuid.Parse(ck.Value); err == nil {
					sid = id.String()
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				setSessionCookie(c, cfg, sid)
			}

			mgr, err := cfg.Opener.Open(c.Request().Context(), sid)
			if err != nil {
				return err
			}
			c.Set(ContextKeySession, mgr)
			c.Set(contextKeyRotation, cfg)
			return next(c)
		}
	}
}

// SessionFrom returns the manager stored by Session, or nil.
func SessionFrom(c echo.Context) ports.SessionManager {
	mgr, _ := c.Get(ContextKeySession).(ports.SessionManager)
	return mgr
}

// RotateSession runs op on a manager opened under a fresh session id. When
// op succeeds the previous id is logged out, the cookie is reissued and the
// fresh manager replaces the previous one in the context. When op fails the
// previous session is left as it was. Outside the Session middleware op runs
// on the current manager.
func RotateSession(c echo.Context, op func(ports.SessionManager) error) (ports.SessionManager, error) {
	prev := SessionFrom(c)
	cfg, ok := c.Get(contextKeyRotation).(SessionConfig)
	if !ok {
		if prev == nil {
			return nil, domain.ErrNotAuthenticated
		}
		return prev, op(prev)
	}

	ctx := c.Request().Context()
	fresh, err := cfg.Opener.Open(ctx, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if err := op(fresh); err != nil {
		return nil, err
	}

	if prev != nil {
		prev.Logout(ctx)
	}
	setSessionCookie(c, cfg, fresh.ID())
	c.Set(ContextKeySession, fresh)
	return fresh, nil
}

// setSessionCookie issues sid, replacing any session cookie already set on
// this response.
func setSessionCookie(c echo.Context, cfg SessionConfig, sid string) {
	h := c.Response().Header()
	if prev := h.Values(echo.HeaderSetCookie); len(prev) > 0 {
		h.Del(echo.HeaderSetCookie)
		for _, v := range prev {
			if !strings.HasPrefix(v, cfg.CookieName+"=") {
				h.Add(echo.HeaderSetCookie, v)
			}
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
