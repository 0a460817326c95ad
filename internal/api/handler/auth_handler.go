package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/api/metrics"
	"github.com/marketingcrm/portal/internal/api/middleware"
	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/guard"
	"github.com/marketingcrm/portal/internal/core/ports"
)

// AuthHandler exposes the session operations of the current browser session.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Landing shows the session, if any.
//
// @Summary      Landing
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       / [get]
func (h *AuthHandler) Landing(c echo.Context) error {
	mgr, err := sessionManager(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authenticated(mgr.Current(), ""))
}

// Login authenticates the browser session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	var s *domain.Session
	_, err := middleware.RotateSession(c, func(mgr ports.SessionManager) (err error) {
		s, err = mgr.Login(c.Request().Context(), req.Email, req.Password)
		return err
	})
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("login", failureReason(err)).Inc()
		return err
	}
	return c.JSON(http.StatusOK, authenticated(s, s.HomeRoute()))
}

// Register creates an account and authenticates the browser session with it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	var s *domain.Session
	_, err := middleware.RotateSession(c, func(mgr ports.SessionManager) (err error) {
		s, err = mgr.Register(c.Request().Context(), req.Email, req.Password, req.Role)
		return err
	})
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("register", failureReason(err)).Inc()
		return err
	}
	return c.JSON(http.StatusCreated, authenticated(s, s.HomeRoute()))
}

// Logout clears the session. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	mgr, err := sessionManager(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, redirectResponse{Redirect: mgr.Logout(c.Request().Context())})
}

// Refresh renews the access credential with the stored refresh credential.
//
// @Summary      Refresh the access credential
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /session/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	mgr, err := sessionManager(c)
	if err != nil {
		return err
	}
	s, err := mgr.Refresh(c.Request().Context())
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("refresh", failureReason(err)).Inc()
		return err
	}
	return c.JSON(http.StatusOK, authenticated(s, ""))
}

func authenticated(s *domain.Session, redirect string) sessionResponse {
	if s == nil {
		return sessionResponse{}
	}
	return sessionResponse{
		Authenticated: true,
		Session:       s,
		Redirect:      redirect,
		Nav:           guard.Navigation(s.Role),
	}
}

func failureReason(err error) string {
	var be *domain.BackendError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUserExists):
		return "user_exists"
	case errors.Is(err, domain.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, domain.ErrUnknownRole):
		return "unknown_role"
	case errors.Is(err, domain.ErrNoRefreshCredential):
		return "no_refresh_credential"
	case errors.Is(err, domain.ErrRefreshRejected), errors.Is(err, domain.ErrUnauthorized):
		return "rejected"
	case errors.Is(err, domain.ErrBackendUnavailable), errors.As(err, &be):
		return "backend"
	default:
		return "store"
	}
}
