package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/core/guard"
)

type deniedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// Protected lets the request through only when the session is
// authenticated. Denied requests get 401 with the redirect target. Allowed
// requests carry the navigation chrome under ContextKeyNav when showNav is set.
func Protected(showNav bool) echo.MiddlewareFunc {
	route := guard.Route{RequiresAuth: true, ShowNav: showNav}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mgr := SessionFrom(c)
			if mgr == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session middleware not installed")
			}

			out := guard.Evaluate(mgr.Current(), route)
			if out.Decision == guard.Deny {
				return c.JSON(http.StatusUnauthorized, deniedResponse{
					Error:    "authentication required",
					Redirect: out.Redirect,
				})
			}
			if out.Nav != nil {
				c.Set(ContextKeyNav, out.Nav)
			}
			return next(c)
		}
	}
}
