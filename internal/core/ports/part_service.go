package ports

import (
	"context"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

// PartService defines the catalog lifecycle use cases.
type PartService interface {
	ListActive(ctx context.Context) ([]*domain.Part, error)
	ListDisabled(ctx context.Context, requester domain.IdentityContext) ([]*domain.Part, error)
	// Get returns a part by ID. A nil requester is an anonymous caller.
	Get(ctx context.Context, id int64, requester *domain.IdentityContext) (*domain.Part, error)
	Create(ctx context.Context, fields domain.PartFields, requester domain.IdentityContext) (*domain.Part, error)
	Update(ctx context.Context, id int64, fields domain.PartFields, requester domain.IdentityContext) (*domain.Part, error)
	ToggleActive(ctx context.Context, id int64, requester domain.IdentityContext) (*domain.Part, string, error)
}
