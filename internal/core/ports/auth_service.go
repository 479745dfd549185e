package ports

import (
	"context"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, secret string) (*domain.Identity, error)
	RegisterPrivileged(ctx context.Context, username, secret string, requester domain.IdentityContext) (*domain.Identity, error)
	Login(ctx context.Context, username, secret string) (string, error)
}

// TokenGuard verifies presented tokens and checks role requirements.
type TokenGuard interface {
	Authenticate(token string) (domain.IdentityContext, error)
	RequireRole(identity domain.IdentityContext, role domain.Role) error
}
