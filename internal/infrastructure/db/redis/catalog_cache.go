package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

const (
	activeCatalogKey     = "catalog:parts:active"
	catalogGenerationKey = "catalog:parts:generation"
	defaultCacheTTL      = 5 * time.Minute
)

var errGenerationMoved = errors.New("catalog generation moved")

// CatalogCache stores the public listing of active parts as a JSON blob,
// guarded by a generation counter that every mutation increments.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a CatalogCache wrapping the given Redis client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// GetActive returns the cached listing, or ok=false on a miss.
func (c *CatalogCache) GetActive(ctx context.Context) ([]*domain.Part, bool, error) {
	raw, err := c.client.Get(ctx, activeCatalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("catalog cache get: %w", err)
	}

	var parts []*domain.Part
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, false, fmt.Errorf("catalog cache decode: %w", err)
	}
	return parts, true, nil
}

func (c *CatalogCache) Generation(ctx context.Context) (int64, error) {
	return generation(ctx, c.client)
}

// SetActive writes the listing inside a WATCH on the generation key, so an
// Invalidate landing between the check and the write aborts the transaction.
func (c *CatalogCache) SetActive(ctx context.Context, gen int64, parts []*domain.Part) (bool, error) {
	raw, err := json.Marshal(parts)
	if err != nil {
		return false, fmt.Errorf("catalog cache encode: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, activeCatalogKey, raw, c.ttl)
			return nil
		})
		return err
	}, catalogGenerationKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("catalog cache set: %w", err)
	}
}

// Invalidate bumps the generation and drops the cached listing atomically.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, catalogGenerationKey)
		pipe.Del(ctx, activeCatalogKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("catalog cache invalidate: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers within ctx. Used by the readiness probe.
func (c *CatalogCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func generation(ctx context.Context, cmd redis.Cmdable) (int64, error) {
	gen, err := cmd.Get(ctx, catalogGenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("catalog cache generation: %w", err)
	}
	return gen, nil
}
