package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/metrics"
)

// MemoryFeedStore is the in-process FeedStore: a TTL+LRU cache plus a
// per-tenant generation counter for O(1) tenant-wide eviction.
type MemoryFeedStore struct {
	cache *TTL[string, *domain.CachedFeed]
	gens  sync.Map // tenantID -> *atomic.Int64
}

func NewMemoryFeedStore(maxSize int, ttl time.Duration) *MemoryFeedStore {
	return &MemoryFeedStore{
		cache: NewTTL[string, *domain.CachedFeed](maxSize, ttl),
	}
}

func (s *MemoryFeedStore) GetFeed(_ context.Context, tenantID int64, userID string) (*domain.CachedFeed, bool, error) {
	feed, ok := s.cache.Get(feedKey(tenantID, s.generation(tenantID), userID))
	if !ok {
		metrics.CacheMisses.WithLabelValues("feed").Inc()
		return nil, false, nil
	}
	metrics.CacheHits.WithLabelValues("feed").Inc()
	return feed, true, nil
}

func (s *MemoryFeedStore) PutFeed(_ context.Context, tenantID int64, userID string, feed *domain.CachedFeed) error {
	s.cache.Set(feedKey(tenantID, s.generation(tenantID), userID), feed)
	return nil
}

func (s *MemoryFeedStore) EvictFeed(_ context.Context, tenantID int64, userID string) error {
	s.cache.Delete(feedKey(tenantID, s.generation(tenantID), userID))
	return nil
}

// EvictTenantFeeds bumps the tenant's generation; entries written under the
// old generation expire out of the LRU on their own.
func (s *MemoryFeedStore) EvictTenantFeeds(_ context.Context, tenantID int64) error {
	s.gen(tenantID).Add(1)
	return nil
}

func (s *MemoryFeedStore) generation(tenantID int64) int64 {
	return s.gen(tenantID).Load()
}

func (s *MemoryFeedStore) gen(tenantID int64) *atomic.Int64 {
	if g, ok := s.gens.Load(tenantID); ok {
		return g.(*atomic.Int64)
	}
	g, _ := s.gens.LoadOrStore(tenantID, &atomic.Int64{})
	return g.(*atomic.Int64)
}
