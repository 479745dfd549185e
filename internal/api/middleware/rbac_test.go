package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

func runWithIdentity(t *testing.T, identity *domain.IdentityContext, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		SetIdentity(c, *identity)
	}

	if err := RequireRole(&stubGuard{}, domain.RoleAdmin)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRequireRole_Allows(t *testing.T) {
	called := false
	rec := runWithIdentity(t, &domain.IdentityContext{Role: domain.RoleAdmin}, func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	rec := runWithIdentity(t, &domain.IdentityContext{Role: domain.RoleStandard}, func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	rec := runWithIdentity(t, nil, func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
