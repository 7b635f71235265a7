package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/metrics"
)

// RedisFeedStore is the networked FeedStore. The per-tenant generation lives
// in its own Redis key so tenant-wide eviction is a single INCR; orphaned
// feed entries fall out via TTL.
type RedisFeedStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFeedStore(client *redis.Client, ttl time.Duration) *RedisFeedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisFeedStore{client: client, ttl: ttl}
}

func genKey(tenantID int64) string {
	return fmt.Sprintf("feed:tenant:%d:gen", tenantID)
}

func (s *RedisFeedStore) GetFeed(ctx context.Context, tenantID int64, userID string) (*domain.CachedFeed, bool, error) {
	gen, err := s.generation(ctx, tenantID)
	if err != nil {
		return nil, false, err
	}

	val, err := s.client.Get(ctx, feedKey(tenantID, gen, userID)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues("feed").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get feed for tenant %d user %s: %w", tenantID, userID, err)
	}

	var feed domain.CachedFeed
	if err := json.Unmarshal([]byte(val), &feed); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached feed: %w", err)
	}
	metrics.CacheHits.WithLabelValues("feed").Inc()
	return &feed, true, nil
}

func (s *RedisFeedStore) PutFeed(ctx context.Context, tenantID int64, userID string, feed *domain.CachedFeed) error {
	gen, err := s.generation(ctx, tenantID)
	if err != nil {
		return err
	}
	val, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("marshal cached feed: %w", err)
	}
	if err := s.client.Set(ctx, feedKey(tenantID, gen, userID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("set feed for tenant %d user %s: %w", tenantID, userID, err)
	}
	return nil
}

func (s *RedisFeedStore) EvictFeed(ctx context.Context, tenantID int64, userID string) error {
	gen, err := s.generation(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, feedKey(tenantID, gen, userID)).Err(); err != nil {
		return fmt.Errorf("evict feed for tenant %d user %s: %w", tenantID, userID, err)
	}
	return nil
}

func (s *RedisFeedStore) EvictTenantFeeds(ctx context.Context, tenantID int64) error {
	if err := s.client.Incr(ctx, genKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("bump feed generation for tenant %d: %w", tenantID, err)
	}
	return nil
}

func (s *RedisFeedStore) generation(ctx context.Context, tenantID int64) (int64, error) {
	gen, err := s.client.Get(ctx, genKey(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get feed generation for tenant %d: %w", tenantID, err)
	}
	return gen, nil
}

// Ping verifies connectivity at startup.
func (s *RedisFeedStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
