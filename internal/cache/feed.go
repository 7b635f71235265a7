package cache

import (
	"context"
	"fmt"

	"github.com/xay/video-feed-service/internal/domain"
)

// FeedStore caches one fully ranked feed per (tenant, user). The orchestrator
// never depends on which implementation is wired; cache failures degrade to
// misses and are logged by the caller, never surfaced to the request.
//
// Tenant-wide eviction is implemented with a per-tenant generation counter
// baked into the key: bumping the generation makes every existing entry for
// the tenant unreachable without scanning keys.
type FeedStore interface {
	GetFeed(ctx context.Context, tenantID int64, userID string) (*domain.CachedFeed, bool, error)
	PutFeed(ctx context.Context, tenantID int64, userID string, feed *domain.CachedFeed) error
	EvictFeed(ctx context.Context, tenantID int64, userID string) error
	EvictTenantFeeds(ctx context.Context, tenantID int64) error
}

func feedKey(tenantID, generation int64, userID string) string {
	return fmt.Sprintf("tenant:%d:gen:%d:user:%s:feed", tenantID, generation, userID)
}
