package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/autoparts/catalog-api/internal/api/middleware"
	"github.com/autoparts/catalog-api/internal/core/domain"
)

type stubAuthService struct {
	registerFn   func(ctx context.Context, username, secret string) (*domain.Identity, error)
	privilegedFn func(ctx context.Context, username, secret string, requester domain.IdentityContext) (*domain.Identity, error)
	loginFn      func(ctx context.Context, username, secret string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, secret string) (*domain.Identity, error) {
	return s.registerFn(ctx, username, secret)
}

func (s *stubAuthService) RegisterPrivileged(ctx context.Context, username, secret string, requester domain.IdentityContext) (*domain.Identity, error) {
	return s.privilegedFn(ctx, username, secret, requester)
}

func (s *stubAuthService) Login(ctx context.Context, username, secret string) (string, error) {
	return s.loginFn(ctx, username, secret)
}

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, secret string) (*domain.Identity, error) {
			if username != "alice" || secret != "pw" {
				t.Fatalf("unexpected args: %s %s", username, secret)
			}
			return &domain.Identity{ID: 1, Username: username, Role: domain.RoleStandard, PasswordHash: "hash"}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/auth/register", `{"username":"alice","secret":"pw","role":"admin"}`)

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["role"] != "standard" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["PasswordHash"]; leaked || strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash must never be serialised: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, secret string) (*domain.Identity, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newJSONContext(http.MethodPost, "/auth/register", `{"username":"bob","secret":"pw"}`)

	if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, secret string) (*domain.Identity, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	for _, body := range []string{"not-json", `{"username":"bob"}`, `{"secret":"pw"}`} {
		c, _ := newJSONContext(http.MethodPost, "/auth/register", body)
		if code := httpCode(t, NewAuthHandler(stub).Register(c)); code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_RegisterAdmin(t *testing.T) {
	stub := &stubAuthService{
		privilegedFn: func(ctx context.Context, username, secret string, requester domain.IdentityContext) (*domain.Identity, error) {
			if requester.Username != "root" {
				t.Fatalf("requester not forwarded: %+v", requester)
			}
			return &domain.Identity{ID: 2, Username: username, Role: domain.RoleAdmin}, nil
		},
	}

	c, _ := newJSONContext(http.MethodPost, "/auth/register-admin", `{"username":"eve","secret":"pw"}`)
	if err := NewAuthHandler(stub).RegisterAdmin(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without identity, got %v", err)
	}

	c, rec := newJSONContext(http.MethodPost, "/auth/register-admin", `{"username":"eve","secret":"pw"}`)
	middleware.SetIdentity(c, domain.IdentityContext{Username: "root", Role: domain.RoleAdmin})
	if err := NewAuthHandler(stub).RegisterAdmin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"role":"admin"`) {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, secret string) (string, error) {
			if username != "alice" || secret != "pw" {
				t.Fatalf("unexpected args: %s %s", username, secret)
			}
			return "token123", nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"username":"alice","secret":"pw"}`)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["message"] == "" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrUserNotFound} {
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, username, secret string) (string, error) {
				return "", want
			},
		}
		c, _ := newJSONContext(http.MethodPost, "/auth/login", `{"username":"alice","secret":"bad"}`)

		if err := NewAuthHandler(stub).Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, secret string) (string, error) {
			t.Fatalf("should not be called")
			return "", nil
		},
	}
	c, _ := newJSONContext(http.MethodPost, "/auth/login", "{")

	if code := httpCode(t, NewAuthHandler(stub).Login(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
