package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/autoparts/catalog-api/internal/core/domain"
	"github.com/autoparts/catalog-api/internal/core/ports"
)

// AuthService implements registration, login and token issuance.
type AuthService struct {
	repo     ports.AuthRepository
	secret   []byte
	tokenTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(repo ports.AuthRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		repo:     repo,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		log:      log,
		now:      time.Now,
	}
}

// Register creates a standard identity. Self-registration can never yield an admin.
func (s *AuthService) Register(ctx context.Context, username, secret string) (*domain.Identity, error) {
	return s.create(ctx, username, secret, domain.RoleStandard)
}

// RegisterPrivileged creates an admin identity on behalf of an authenticated admin.
func (s *AuthService) RegisterPrivileged(ctx context.Context, username, secret string, requester domain.IdentityContext) (*domain.Identity, error) {
	if err := RequireRole(requester, domain.RoleAdmin); err != nil {
		return nil, err
	}
	identity, err := s.create(ctx, username, secret, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("username", identity.Username).Str("created_by", requester.Username).Msg("admin registered")
	return identity, nil
}

func (s *AuthService) create(ctx context.Context, username, secret string, role domain.Role) (*domain.Identity, error) {
	if err := validateCredentials(username, secret); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: secret must be at most 72 bytes", domain.ErrValidation)
		}
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.Identity{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies the credentials and mints a signed token carrying the stored role.
// An unknown username yields domain.ErrUserNotFound, a wrong secret domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, secret string) (string, error) {
	if err := validateCredentials(username, secret); err != nil {
		return "", err
	}

	identity, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(secret)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(identity)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *AuthService) generateToken(identity *domain.Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("no signing key configured")
	}
	now := s.now().UTC()
	claims := tokenClaims{
		IdentityID: identity.ID,
		Username:   identity.Username,
		Role:       string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func validateCredentials(username, secret string) error {
	if strings.TrimSpace(username) == "" || secret == "" {
		return fmt.Errorf("%w: username and secret are required", domain.ErrValidation)
	}
	return nil
}

// Bootstrap creates an identity with an arbitrary role without a requester.
// It exists for startup seeding only and is not reachable over HTTP.
func (s *AuthService) Bootstrap(ctx context.Context, username, secret string, role domain.Role) (*domain.Identity, error) {
	return s.create(ctx, username, secret, role)
}
