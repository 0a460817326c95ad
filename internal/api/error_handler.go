package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/api/middleware"
	"github.com/marketingcrm/portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs the session out when the backend rejects its credential.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	var be *domain.BackendError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Error: ve.Message}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists"}
	case errors.Is(err, domain.ErrUnauthorized):
		// The backend no longer accepts the stored credential.
		route := domain.LandingRoute
		if mgr := middleware.SessionFrom(c); mgr != nil {
			route = mgr.Logout(c.Request().Context())
		}
		return http.StatusUnauthorized, errorResponse{Error: "session expired", Redirect: route}
	case errors.Is(err, domain.ErrRefreshRejected):
		return http.StatusUnauthorized, errorResponse{Error: "refresh credential rejected"}
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrNoRefreshCredential):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required", Redirect: domain.LandingRoute}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "resource not found"}
	case errors.Is(err, domain.ErrProfileLocked):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrMalformedToken), errors.Is(err, domain.ErrUnknownRole):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend issued an unusable credential")
		return http.StatusBadGateway, errorResponse{Error: "backend issued an unusable credential"}
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: "backend unavailable"}
	case errors.As(err, &be):
		log.Error().Int("backend_status", be.Status).Str("detail", be.Detail).Str("path", c.Path()).Msg("backend error")
		msg := "backend error"
		if be.Status < http.StatusInternalServerError && be.Detail != "" {
			msg = be.Detail
		}
		return http.StatusBadGateway, errorResponse{Error: msg}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
