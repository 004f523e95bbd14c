package swpc

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ionoscope/storm-eval-service/internal/observability"
)

// FeedClient is the SWPC fetch surface the cache decorates.
type FeedClient interface {
	FetchKpIndex(ctx context.Context) ([]KpReading, error)
	FetchSolarWind(ctx context.Context) ([]SolarWindReading, error)
}

// CachedClient wraps a FeedClient with a TTL cache. SWPC refreshes the
// K-index feed every minute and the plasma feed every few minutes, so
// re-fetching inside the TTL only burns the request budget.
type CachedClient struct {
	inner   FeedClient
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu        sync.Mutex
	kp        cachedTable[KpReading]
	solarWind cachedTable[SolarWindReading]
}

type cachedTable[T any] struct {
	rows      []T
	fetchedAt time.Time
}

func (t cachedTable[T]) fresh(now time.Time, ttl time.Duration) bool {
	return !t.fetchedAt.IsZero() && now.Sub(t.fetchedAt) < ttl
}

// NewCachedClient creates a cache decorator around a feed client.
func NewCachedClient(inner FeedClient, ttl time.Duration, metrics *observability.Metrics) *CachedClient {
	return &CachedClient{
		inner:   inner,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
	}
}

func (c *CachedClient) FetchKpIndex(ctx context.Context) ([]KpReading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kp.fresh(c.clock.Now(), c.ttl) {
		c.metrics.SWPCCache.WithLabelValues("kp", "hit").Inc()
		return c.kp.rows, nil
	}
	c.metrics.SWPCCache.WithLabelValues("kp", "miss").Inc()

	rows, err := c.inner.FetchKpIndex(ctx)
	if err != nil {
		c.metrics.SWPCRequests.WithLabelValues("kp", "error").Inc()
		return nil, err
	}
	c.metrics.SWPCRequests.WithLabelValues("kp", "success").Inc()
	c.kp = cachedTable[KpReading]{rows: rows, fetchedAt: c.clock.Now()}
	return rows, nil
}

func (c *CachedClient) FetchSolarWind(ctx context.Context) ([]SolarWindReading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.solarWind.fresh(c.clock.Now(), c.ttl) {
		c.metrics.SWPCCache.WithLabelValues("solar_wind", "hit").Inc()
		return c.solarWind.rows, nil
	}
	c.metrics.SWPCCache.WithLabelValues("solar_wind", "miss").Inc()

	rows, err := c.inner.FetchSolarWind(ctx)
	if err != nil {
		c.metrics.SWPCRequests.WithLabelValues("solar_wind", "error").Inc()
		return nil, err
	}
	c.metrics.SWPCRequests.WithLabelValues("solar_wind", "success").Inc()
	c.solarWind = cachedTable[SolarWindReading]{rows: rows, fetchedAt: c.clock.Now()}
	return rows, nil
}
