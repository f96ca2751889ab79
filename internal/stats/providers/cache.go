package providers

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/i474232898/coronaboard-data/internal/logger"
	"github.com/i474232898/coronaboard-data/internal/stats"
)

// CachingProvider reuses the last successful fetch of the wrapped provider
// until it expires. Failed fetches are never cached.
type CachingProvider struct {
	next  stats.Provider
	cache *expirable.LRU[string, []stats.DailyStatRecord]
}

func NewCachingProvider(next stats.Provider, ttl time.Duration) *CachingProvider {
	return &CachingProvider{
		next:  next,
		cache: expirable.NewLRU[string, []stats.DailyStatRecord](1, nil, ttl),
	}
}

func (p *CachingProvider) Name() string {
	return p.next.Name()
}

func (p *CachingProvider) FetchAll(ctx context.Context) ([]stats.DailyStatRecord, error) {
	key := p.next.Name()
	if records, ok := p.cache.Get(key); ok {
		logger.Debug("provider %s: serving %d cached records", key, len(records))
		return records, nil
	}

	records, err := p.next.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, records)
	return records, nil
}

// Purge drops the cached fetch so the next call goes upstream.
func (p *CachingProvider) Purge() {
	p.cache.Purge()
}
