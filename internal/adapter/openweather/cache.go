package openweather

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
	"github.com/couchcryptid/crop-advisor-service/internal/observability"
)

// CachedProvider wraps a WeatherProvider with an in-memory TTL cache keyed by
// location. Weather goes stale, so entries expire rather than being evicted
// by size; the working set is however many locations one interactive session
// asks about.
type CachedProvider struct {
	inner   domain.WeatherProvider
	ttl     time.Duration
	metrics *observability.Metrics

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	reading   domain.WeatherReading
	expiresAt time.Time
}

// NewCachedProvider creates a cache decorator around a provider. A zero or
// negative TTL disables caching and returns the provider unchanged.
func NewCachedProvider(inner domain.WeatherProvider, ttl time.Duration, metrics *observability.Metrics) domain.WeatherProvider {
	if ttl <= 0 {
		return inner
	}
	return &CachedProvider{
		inner:   inner,
		ttl:     ttl,
		metrics: metrics,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedProvider) Fetch(ctx context.Context, location string) (domain.WeatherReading, error) {
	key := strings.ToLower(strings.TrimSpace(location))

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && domain.Clock().Now().Before(e.expiresAt) {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return e.reading, nil
	}

	c.metrics.WeatherCache.WithLabelValues("miss").Inc()
	reading, err := c.inner.Fetch(ctx, location)
	if err != nil {
		return reading, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{reading: reading, expiresAt: domain.Clock().Now().Add(c.ttl)}
	c.mu.Unlock()
	return reading, nil
}
