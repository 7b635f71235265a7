// Package service composes the feed-generation pipeline: tenant flags,
// candidate index, user signals, ranking, and the per-user feed cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/cache"
	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/metrics"
	"github.com/xay/video-feed-service/internal/ranking"
)

// ErrNotModified signals that the client's conditional validator still
// matches; the transport maps it to 304 with no body.
var ErrNotModified = errors.New("feed not modified")

const (
	defaultLimit = 5
	maxLimit     = 50
)

// Options tune the orchestrator; zero values get sensible defaults.
type Options struct {
	// Timeout is the advisory deadline checked before the ranking call.
	Timeout time.Duration
	// TTLHintSeconds is surfaced in response metadata.
	TTLHintSeconds int
	// ThumbnailBaseURL prefixes generated thumbnail links.
	ThumbnailBaseURL string
}

type FeedService struct {
	tenants *TenantResolver
	index   *CandidateIndex
	signals *SignalResolver
	engine  *ranking.Engine
	feeds   cache.FeedStore
	catalog CatalogStore
	log     zerolog.Logger

	timeout       time.Duration
	ttlHint       int
	thumbnailBase string

	now func() time.Time
}

func NewFeedService(
	tenants *TenantResolver,
	index *CandidateIndex,
	signals *SignalResolver,
	engine *ranking.Engine,
	feeds cache.FeedStore,
	catalog CatalogStore,
	opts Options,
	log zerolog.Logger,
) *FeedService {
	if opts.Timeout <= 0 {
		opts.Timeout = 600 * time.Millisecond
	}
	if opts.TTLHintSeconds <= 0 {
		opts.TTLHintSeconds = 30
	}
	if opts.ThumbnailBaseURL == "" {
		opts.ThumbnailBaseURL = "https://cdn.example.com/thumb"
	}
	return &FeedService{
		tenants:       tenants,
		index:         index,
		signals:       signals,
		engine:        engine,
		feeds:         feeds,
		catalog:       catalog,
		log:           log.With().Str("component", "feed_service").Logger(),
		timeout:       opts.Timeout,
		ttlHint:       opts.TTLHintSeconds,
		thumbnailBase: opts.ThumbnailBaseURL,
		now:           time.Now,
	}
}

// Feed runs the feed-generation protocol for one request. It returns
// ErrNotModified when ifNoneMatch equals the computed validator, and
// domain.ErrTenantNotFound for unknown tenants; every other degraded
// condition resolves to a fallback feed, not an error.
func (s *FeedService) Feed(ctx context.Context, tenantID int64, userID string, limit int, cursor, ifNoneMatch string) (*domain.FeedPage, error) {
	start := s.now()
	offset := DecodeCursor(cursor)

	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	// 1. Feature flag and rollout gate.
	enabled, err := s.tenants.PersonalizationEnabled(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	inRollout := false
	if enabled {
		if inRollout, err = s.tenants.UserInRollout(ctx, tenantID, userID); err != nil {
			return nil, err
		}
	}
	if !enabled || !inRollout {
		return s.fallbackFeed(ctx, tenantID, limit, offset, domain.FeedFallback)
	}

	// 2. Cached feed with conditional-response handling.
	candidatesVersion := s.index.Version(tenantID)
	cached, ok, err := s.feeds.GetFeed(ctx, tenantID, userID)
	if err != nil {
		s.log.Warn().Int64("tenant_id", tenantID).Str("user_id", userID).Err(err).Msg("feed cache get failed")
	}
	if ok {
		etag := ComposeETag(candidatesVersion, cached.Version, offset)
		if ifNoneMatch != "" && ifNoneMatch == etag {
			metrics.FeedNotModified.Inc()
			return nil, ErrNotModified
		}
		return s.paginate(cached.Items, limit, offset, cached.FeedType, etag), nil
	}

	// 3. Cold-start detection.
	signals, err := s.signals.Signals(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if signals.ColdStart() {
		return s.fallbackFeed(ctx, tenantID, limit, offset, domain.FeedColdStart)
	}

	// 4. Candidate set.
	set := s.index.Candidates(ctx, tenantID)
	if set.Empty() {
		return s.emptyFeed(), nil
	}

	// 5. Advisory deadline, checked before the expensive ranking call.
	// Ranking itself is not preemptible; this is backpressure, not
	// cancellation.
	if s.now().Sub(start) > s.timeout {
		s.log.Warn().Int64("tenant_id", tenantID).Str("user_id", userID).Msg("feed generation deadline exceeded")
		return s.fallbackFeed(ctx, tenantID, limit, offset, domain.FeedTimeoutFallback)
	}

	// 6. Personalized ranking over the entire set, so the cached feed
	// supports deep pagination without re-ranking.
	cfg, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rankStart := time.Now()
	ranked := s.engine.Rank(set.Candidates, signals, cfg.Weights, len(set.Candidates))
	metrics.RankingDuration.Observe(time.Since(rankStart).Seconds())

	items, err := s.resolveItems(ctx, ranked)
	if err != nil {
		return nil, fmt.Errorf("resolve feed items: %w", err)
	}

	feed := &domain.CachedFeed{
		Version:     set.Version,
		GeneratedAt: s.now(),
		FeedType:    domain.FeedPersonalized,
		Items:       items,
	}
	if err := s.feeds.PutFeed(ctx, tenantID, userID, feed); err != nil {
		s.log.Warn().Int64("tenant_id", tenantID).Str("user_id", userID).Err(err).Msg("feed cache put failed")
	}

	etag := ComposeETag(candidatesVersion, feed.Version, offset)
	return s.paginate(items, limit, offset, domain.FeedPersonalized, etag), nil
}

// CandidatesVersion exposes the version used for response headers.
func (s *FeedService) CandidatesVersion(tenantID int64) int64 {
	return s.index.Version(tenantID)
}

// fallbackFeed is the shared non-personalized path: trending order over the
// current candidate set, never cached per-user, feed version pinned to 0 in
// the validator.
func (s *FeedService) fallbackFeed(ctx context.Context, tenantID int64, limit, offset int, feedType string) (*domain.FeedPage, error) {
	set := s.index.Candidates(ctx, tenantID)
	if set.Empty() {
		return s.emptyFeed(), nil
	}

	ranked := s.engine.RankTrending(set.Candidates, len(set.Candidates))
	items, err := s.resolveItems(ctx, ranked)
	if err != nil {
		return nil, fmt.Errorf("resolve fallback items: %w", err)
	}

	etag := ComposeETag(set.Version, 0, offset)
	return s.paginate(items, limit, offset, feedType, etag), nil
}

func (s *FeedService) emptyFeed() *domain.FeedPage {
	metrics.FeedRequests.WithLabelValues(domain.FeedNoContent).Inc()
	return &domain.FeedPage{
		Items: []domain.FeedItem{},
		Meta: domain.FeedMeta{
			FeedType:       domain.FeedNoContent,
			GeneratedAt:    s.now(),
			TTLHintSeconds: s.ttlHint,
		},
	}
}

// paginate applies the shared pagination rule: clamp the window into the
// item list, flag hasMore, and hand out a cursor for the next page.
func (s *FeedService) paginate(items []domain.FeedItem, limit, offset int, feedType, etag string) *domain.FeedPage {
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	page := &domain.FeedPage{
		Items: items[offset:end],
		Pagination: domain.Pagination{
			HasMore: end < len(items),
		},
		Meta: domain.FeedMeta{
			FeedType:       feedType,
			GeneratedAt:    s.now(),
			TTLHintSeconds: s.ttlHint,
		},
		ETag: etag,
	}
	if page.Pagination.HasMore {
		page.Pagination.NextCursor = EncodeCursor(end)
	}

	metrics.FeedRequests.WithLabelValues(feedType).Inc()
	return page
}

// resolveItems joins ranked ids back to display metadata. Videos that
// vanished from the catalog since the candidate build are skipped.
func (s *FeedService) resolveItems(ctx context.Context, ranked []ranking.RankedVideo) ([]domain.FeedItem, error) {
	ids := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.VideoID)
	}

	videos, err := s.catalog.FindVideosByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	items := make([]domain.FeedItem, 0, len(ranked))
	for _, r := range ranked {
		v, ok := byID[r.VideoID]
		if !ok {
			continue
		}
		items = append(items, domain.FeedItem{
			ID:              fmt.Sprintf("%d", v.ID),
			ExternalID:      v.ExternalID,
			Title:           v.Title,
			ThumbnailURL:    fmt.Sprintf("%s/%s.jpg", s.thumbnailBase, v.ExternalID),
			DurationSeconds: v.DurationSeconds,
			Category:        v.Category,
			Score:           r.Score,
			Reason:          string(r.Reason),
		})
	}
	return items, nil
}
