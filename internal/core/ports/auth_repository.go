package ports

import (
	"context"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

// AuthRepository defines persistence for identity records.
type AuthRepository interface {
	// Create persists a new identity and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the username is taken.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	// FindByUsername returns domain.ErrUserNotFound when no identity matches.
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
}
