package quote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"PortfolioGuard/internal/model"

	"github.com/patrickmn/go-cache"
)

// CachedProvider keeps successful quotes for a short TTL so back-to-back
// checks don't burn the upstream rate limit. Failures are never cached.
// Entries are scoped to the credential that fetched them.
type CachedProvider struct {
	next  Provider
	cache *cache.Cache
}

// NewCachedProvider wraps next. A ttl <= 0 returns next unchanged.
func NewCachedProvider(next Provider, ttl time.Duration) Provider {
	if ttl <= 0 {
		return next
	}
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) Name() string { return c.next.Name() + "+cache" }

func (c *CachedProvider) Quote(ctx context.Context, symbol, credential string) (model.Quote, error) {
	key := cacheKey(symbol, credential)
	if v, ok := c.cache.Get(key); ok {
		return v.(model.Quote), nil
	}
	q, err := c.next.Quote(ctx, symbol, credential)
	if err != nil {
		return model.Quote{}, err
	}
	c.cache.SetDefault(key, q)
	return q, nil
}

// Wait paces only cache misses; a hit never reaches the upstream.
func (c *CachedProvider) Wait(ctx context.Context, symbol, credential string) error {
	if _, ok := c.cache.Get(cacheKey(symbol, credential)); ok {
		return nil
	}
	if p, ok := c.next.(Pacer); ok {
		return p.Wait(ctx, symbol, credential)
	}
	return nil
}

// cacheKey hashes the credential so keys are never held in clear.
func cacheKey(symbol, credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:8]) + ":" + symbol
}
