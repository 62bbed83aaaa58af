package market

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zilix-space/adapix-backend/internal/providers"
)

// CachedSource fronts a live quote source with a short-TTL Redis cache
// so estimate bursts don't hammer the ticker API. Cache failures fall
// through to the live source.
type CachedSource struct {
	src providers.MarketQuoteSource
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedSource(src providers.MarketQuoteSource, rdb *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, rdb: rdb, ttl: ttl}
}

func cacheKey(base, quote string) string {
	return "spot:" + base + ":" + quote
}

func (c *CachedSource) Quote(ctx context.Context, base, quote string) (float64, error) {
	key := cacheKey(base, quote)
	if v, err := c.rdb.Get(ctx, key).Float64(); err == nil {
		return v, nil
	} else if err != redis.Nil {
		slog.Debug("quote cache read failed", "key", key, "err", err)
	}

	price, err := c.src.Quote(ctx, base, quote)
	if err != nil {
		return 0, err
	}
	if err := c.rdb.Set(ctx, key, price, c.ttl).Err(); err != nil {
		slog.Debug("quote cache write failed", "key", key, "err", err)
	}
	return price, nil
}
