package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/autoparts/catalog-api/internal/core/domain"
	"github.com/autoparts/catalog-api/internal/core/ports"
)

const identityKey = "identity"

// Auth verifies the bearer token and injects the caller identity into context.
func Auth(guard ports.TokenGuard) echo.MiddlewareFunc {
	return authenticate(guard, false)
}

// OptionalAuth injects the caller identity when a valid bearer token is
// presented. A missing, malformed or expired token leaves the request anonymous.
func OptionalAuth(guard ports.TokenGuard) echo.MiddlewareFunc {
	return authenticate(guard, true)
}

func authenticate(guard ports.TokenGuard, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if optional {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header").
					SetInternal(domain.ErrUnauthenticated)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				if optional {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header").
					SetInternal(domain.ErrUnauthenticated)
			}

			identity, err := guard.Authenticate(strings.TrimSpace(parts[1]))
			if err != nil {
				if optional {
					return next(c)
				}
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "missing token").SetInternal(err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// SetIdentity attaches a verified identity to the request context.
func SetIdentity(c echo.Context, identity domain.IdentityContext) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the identity injected by Auth, if any.
func IdentityFrom(c echo.Context) (domain.IdentityContext, bool) {
	identity, ok := c.Get(identityKey).(domain.IdentityContext)
	return identity, ok
}
