package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/autoparts/catalog-api/internal/core/domain"
	"github.com/autoparts/catalog-api/internal/core/ports"
)

// PartService owns the catalog lifecycle: creation, merge updates, the
// active/inactive toggle and role-filtered reads.
type PartService struct {
	repo  ports.PartRepository
	cache ports.CatalogCache
	log   zerolog.Logger

	// mutations counts committed writes made through this service.
	mutations atomic.Int64
	// cacheDirty is set when an invalidation failed; the cache is bypassed
	// until a later invalidation succeeds.
	cacheDirty atomic.Bool
}

// NewPartService returns a PartService. cache may be nil.
func NewPartService(repo ports.PartRepository, cache ports.CatalogCache, log zerolog.Logger) *PartService {
	return &PartService{repo: repo, cache: cache, log: log}
}

// ListActive returns every visible part. Served from the cache when possible.
func (s *PartService) ListActive(ctx context.Context) ([]*domain.Part, error) {
	if s.cache == nil || !s.cacheUsable(ctx) {
		return s.listActive(ctx)
	}

	parts, ok, err := s.cache.GetActive(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog cache read failed, falling back to store")
	} else if ok {
		return parts, nil
	}

	seen := s.mutations.Load()
	gen, genErr := s.cache.Generation(ctx)

	parts, err = s.listActive(ctx)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		s.log.Warn().Err(genErr).Msg("catalog cache generation read failed")
		return parts, nil
	}
	if s.mutations.Load() != seen {
		return parts, nil
	}
	if _, err := s.cache.SetActive(ctx, gen, parts); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache write failed")
	}
	return parts, nil
}

func (s *PartService) listActive(ctx context.Context) ([]*domain.Part, error) {
	parts, err := s.repo.ListByActive(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list active parts: %w", err)
	}
	if parts == nil {
		parts = []*domain.Part{}
	}
	return parts, nil
}

// cacheUsable retries a pending invalidation. It reports false while the
// cache may still hold a listing older than the last mutation.
func (s *PartService) cacheUsable(ctx context.Context) bool {
	if !s.cacheDirty.Load() {
		return true
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache still unavailable, reading from store")
		return false
	}
	s.cacheDirty.Store(false)
	return true
}

// ListDisabled returns the inactive parts ordered by ascending ID. Admin only.
func (s *PartService) ListDisabled(ctx context.Context, requester domain.IdentityContext) ([]*domain.Part, error) {
	if err := RequireRole(requester, domain.RoleAdmin); err != nil {
		return nil, err
	}

	parts, err := s.repo.ListByActive(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list disabled parts: %w", err)
	}
	if parts == nil {
		parts = []*domain.Part{}
	}
	return parts, nil
}

// Get returns a part by ID. Inactive parts are reported as not found to anyone
// but an admin so their existence does not leak.
func (s *PartService) Get(ctx context.Context, id int64, requester *domain.IdentityContext) (*domain.Part, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active && (requester == nil || !requester.IsAdmin()) {
		return nil, domain.ErrPartNotFound
	}
	return p, nil
}

// Create persists a new part. Unset fields stay absent and the part always starts active.
func (s *PartService) Create(ctx context.Context, fields domain.PartFields, requester domain.IdentityContext) (*domain.Part, error) {
	if err := RequireRole(requester, domain.RoleAdmin); err != nil {
		return nil, err
	}

	p := &domain.Part{Active: true}
	fields.Normalize().Apply(p)

	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create part")
		return nil, fmt.Errorf("create part: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info().Int64("part_id", created.ID).Str("by", requester.Username).Msg("part created")
	return created, nil
}

// Update merges the supplied fields onto the stored part. Fields that were not
// supplied keep their stored value. There is no version check: concurrent
// writes to the same field resolve as last writer wins.
func (s *PartService) Update(ctx context.Context, id int64, fields domain.PartFields, requester domain.IdentityContext) (*domain.Part, error) {
	if err := RequireRole(requester, domain.RoleAdmin); err != nil {
		return nil, err
	}

	fields = fields.Normalize()
	if fields.IsEmpty() {
		return s.repo.FindByID(ctx, id)
	}

	updated, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info().Int64("part_id", id).Str("by", requester.Username).Msg("part updated")
	return updated, nil
}

// ToggleActive flips the visibility of a part and returns it with a status message.
func (s *PartService) ToggleActive(ctx context.Context, id int64, requester domain.IdentityContext) (*domain.Part, string, error) {
	if err := RequireRole(requester, domain.RoleAdmin); err != nil {
		return nil, "", err
	}

	p, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return nil, "", err
	}

	s.invalidate(ctx)
	s.log.Info().Int64("part_id", id).Bool("active", p.Active).Str("by", requester.Username).Msg("part toggled")
	return p, p.StatusMessage(), nil
}

func (s *PartService) invalidate(ctx context.Context) {
	s.mutations.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.cacheDirty.Store(true)
		s.log.Error().Err(err).Msg("catalog cache invalidation failed")
	}
}
