package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

// Guard verifies credential tokens and enforces role requirements.
// It never consults the identity store: the verified claims are the identity.
type Guard struct {
	secret []byte
	now    func() time.Time
}

func NewGuard(jwtSecret string) *Guard {
	return &Guard{secret: []byte(jwtSecret), now: time.Now}
}

// Authenticate verifies signature and expiry of a presented token.
func (g *Guard) Authenticate(token string) (domain.IdentityContext, error) {
	if token == "" {
		return domain.IdentityContext{}, domain.ErrUnauthenticated
	}

	if len(g.secret) == 0 {
		return domain.IdentityContext{}, fmt.Errorf("%w: no signing key configured", domain.ErrInvalidToken)
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return domain.IdentityContext{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.IdentityContext{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	return domain.IdentityContext{
		IdentityID: claims.IdentityID,
		Username:   claims.Username,
		Role:       role,
	}, nil
}

// RequireRole satisfies ports.TokenGuard.
func (g *Guard) RequireRole(identity domain.IdentityContext, role domain.Role) error {
	return RequireRole(identity, role)
}

// RequireRole fails with domain.ErrForbidden unless identity holds role.
func RequireRole(identity domain.IdentityContext, role domain.Role) error {
	if identity.Role != role {
		return domain.ErrForbidden
	}
	return nil
}
