package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autoparts/catalog-api/internal/core/domain"
	"github.com/autoparts/catalog-api/internal/core/ports"
)

// RequireRole enforces a role requirement. It must run after Auth.
func RequireRole(guard ports.TokenGuard, role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims").
					SetInternal(domain.ErrUnauthenticated)
			}
			if err := guard.RequireRole(identity, role); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden").SetInternal(err)
			}
			return next(c)
		}
	}
}
