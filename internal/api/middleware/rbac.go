package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/core/domain"
)

// RBAC enforces role-based access control on the session's role. Install it
// after Protected. Denials return domain.ErrForbidden for the error handler.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var role domain.Role
			if mgr := SessionFrom(c); mgr != nil {
				if s := mgr.Current(); s != nil {
					role = s.Role
				}
			}
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
