package ports

import (
	"context"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

// CatalogCache caches the public listing of active parts.
//
// Writers bump a generation counter on every mutation. A listing read from the
// store may only be cached under the generation observed before that read, so
// a mutation racing the read always wins.
type CatalogCache interface {
	// GetActive reports ok=false on a miss.
	GetActive(ctx context.Context) (parts []*domain.Part, ok bool, err error)
	// Generation returns the current invalidation counter.
	Generation(ctx context.Context) (int64, error)
	// SetActive stores parts only if the generation still equals gen.
	// stored=false means a mutation happened in between and nothing was written.
	SetActive(ctx context.Context, gen int64, parts []*domain.Part) (stored bool, err error)
	// Invalidate bumps the generation and drops the cached listing.
	Invalidate(ctx context.Context) error
}
