package ports

import (
	"context"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

// PartRepository defines persistence operations for catalog parts.
// Every mutation is a single atomic statement against the store.
type PartRepository interface {
	// Insert assigns an ID and persists p.
	Insert(ctx context.Context, p *domain.Part) (*domain.Part, error)
	// FindByID returns domain.ErrPartNotFound when absent.
	FindByID(ctx context.Context, id int64) (*domain.Part, error)
	// UpdateFields sets only the supplied fields and returns the resulting record.
	UpdateFields(ctx context.Context, id int64, fields domain.PartFields) (*domain.Part, error)
	// ToggleActive flips the active flag in one indivisible update.
	ToggleActive(ctx context.Context, id int64) (*domain.Part, error)
	// ListByActive returns parts whose active flag equals active, ordered by ascending ID.
	ListByActive(ctx context.Context, active bool) ([]*domain.Part, error)
}
