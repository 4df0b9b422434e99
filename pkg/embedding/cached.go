package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoises query embeddings. Repeated follow-up questions in a
// session tend to be identical, and the embedding call is a network hop.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *cache.Cache
}

func NewCachedProvider(inner EmbeddingProvider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedProvider{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	if v, found := c.cache.Get(text); found {
		return v.([]float32), nil
	}
	vec, err := c.inner.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec, cache.DefaultExpiration)
	return vec, nil
}
