package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

type stubGuard struct {
	identity domain.IdentityContext
	err      error
	lastTok  string
}

func (g *stubGuard) Authenticate(token string) (domain.IdentityContext, error) {
	g.lastTok = token
	if token == "" {
		return domain.IdentityContext{}, domain.ErrUnauthenticated
	}
	return g.identity, g.err
}

func (g *stubGuard) RequireRole(identity domain.IdentityContext, role domain.Role) error {
	if identity.Role != role {
		return domain.ErrForbidden
	}
	return nil
}

func run(t *testing.T, mw echo.MiddlewareFunc, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := mw(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	guard := &stubGuard{identity: domain.IdentityContext{IdentityID: 7, Username: "alice", Role: domain.RoleAdmin}}

	called := false
	rec := run(t, Auth(guard), "Bearer abc.def.ghi", func(c echo.Context) error {
		called = true
		identity, ok := IdentityFrom(c)
		if !ok || identity.Username != "alice" || identity.Role != domain.RoleAdmin || identity.IdentityID != 7 {
			t.Fatalf("identity not set: %+v", identity)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if guard.lastTok != "abc.def.ghi" {
		t.Fatalf("unexpected token passed to guard: %q", guard.lastTok)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cases := map[string]struct {
		header string
		guard  *stubGuard
	}{
		"missing header": {"", &stubGuard{}},
		"wrong scheme":   {"Token abc", &stubGuard{}},
		"empty bearer":   {"Bearer ", &stubGuard{}},
		"guard rejects":  {"Bearer not-a-token", &stubGuard{err: domain.ErrInvalidToken}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := run(t, Auth(tc.guard), tc.header, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	guard := &stubGuard{identity: domain.IdentityContext{Username: "bob", Role: domain.RoleStandard}}

	rec := run(t, OptionalAuth(guard), "", func(c echo.Context) error {
		if _, ok := IdentityFrom(c); ok {
			t.Fatalf("anonymous request must not carry an identity")
		}
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous, got %d", rec.Code)
	}

	rec = run(t, OptionalAuth(guard), "Bearer tok", func(c echo.Context) error {
		if identity, ok := IdentityFrom(c); !ok || identity.Username != "bob" {
			t.Fatalf("identity not set")
		}
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	bad := &stubGuard{err: errors.New("token is expired")}
	for _, header := range []string{"Bearer tok", "Basic abc"} {
		rec = run(t, OptionalAuth(bad), header, func(c echo.Context) error {
			if _, ok := IdentityFrom(c); ok {
				t.Fatalf("rejected token must not carry an identity")
			}
			return c.NoContent(http.StatusOK)
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: expected anonymous 200, got %d", header, rec.Code)
		}
	}
}
