package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/xay/video-feed-service/internal/cache"
	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/metrics"
)

// CatalogStore is the durable video lookup consumed by the index and the
// orchestrator.
type CatalogStore interface {
	FindActiveVideos(ctx context.Context, tenantID int64) ([]domain.Video, error)
	FindVideosByIDs(ctx context.Context, ids []int64) ([]domain.Video, error)
}

const (
	// freshnessHalfLifeHours is the decay constant: one week.
	freshnessHalfLifeHours = 168.0
	minFreshness           = 0.1
	unknownPublishFresh    = 0.5

	engagementWeight = 0.6
	freshnessWeight  = 0.4
)

// CandidateIndex builds and caches the scored catalog per tenant. The cache
// TTL bounds staleness against the catalog; the version counter changes only
// on explicit Rebuild and is the backbone of the conditional validator.
type CandidateIndex struct {
	store CatalogStore
	cache *cache.TTL[int64, *domain.CandidateSet]
	log   zerolog.Logger

	versions sync.Map // tenantID -> *atomic.Int64, initialized to 1
	group    singleflight.Group

	now func() time.Time
}

func NewCandidateIndex(store CatalogStore, ttl time.Duration, log zerolog.Logger) *CandidateIndex {
	return &CandidateIndex{
		store: store,
		cache: cache.NewTTL[int64, *domain.CandidateSet](256, ttl),
		log:   log.With().Str("component", "candidate_index").Logger(),
		now:   time.Now,
	}
}

// Candidates returns the cached set or builds it from the active catalog.
// Concurrent builds for the same tenant are collapsed into one; a build
// failure degrades to an empty set rather than failing the request.
func (ix *CandidateIndex) Candidates(ctx context.Context, tenantID int64) *domain.CandidateSet {
	if set, ok := ix.cache.Get(tenantID); ok {
		metrics.CacheHits.WithLabelValues("candidates").Inc()
		return set
	}
	metrics.CacheMisses.WithLabelValues("candidates").Inc()

	v, _, _ := ix.group.Do(strconv.FormatInt(tenantID, 10), func() (any, error) {
		set := ix.build(ctx, tenantID)
		ix.cache.Set(tenantID, set)
		return set, nil
	})
	return v.(*domain.CandidateSet)
}

// Rebuild evicts the cached set and advances the tenant's version. This is
// the only writer of the counter; concurrent calls each get their own
// increment.
func (ix *CandidateIndex) Rebuild(tenantID int64) {
	ix.cache.Delete(tenantID)
	ix.version(tenantID).Add(1)
}

// Version reports the tenant's candidate-set version, 1 if never rebuilt.
func (ix *CandidateIndex) Version(tenantID int64) int64 {
	return ix.version(tenantID).Load()
}

func (ix *CandidateIndex) version(tenantID int64) *atomic.Int64 {
	if v, ok := ix.versions.Load(tenantID); ok {
		return v.(*atomic.Int64)
	}
	fresh := &atomic.Int64{}
	fresh.Store(1)
	v, _ := ix.versions.LoadOrStore(tenantID, fresh)
	return v.(*atomic.Int64)
}

func (ix *CandidateIndex) build(ctx context.Context, tenantID int64) *domain.CandidateSet {
	now := ix.now()
	set := &domain.CandidateSet{
		TenantID: tenantID,
		Version:  ix.Version(tenantID),
		BuiltAt:  now,
	}

	videos, err := ix.store.FindActiveVideos(ctx, tenantID)
	if err != nil {
		// Treated as "no content" for this tenant; the request still
		// succeeds with an empty feed.
		ix.log.Error().Int64("tenant_id", tenantID).Err(err).Msg("candidate build failed")
		metrics.CandidateBuilds.WithLabelValues("error").Inc()
		return set
	}
	if len(videos) == 0 {
		metrics.CandidateBuilds.WithLabelValues("empty").Inc()
		return set
	}

	candidates := make([]domain.ContentCandidate, 0, len(videos))
	for _, v := range videos {
		candidates = append(candidates, candidateFromVideo(v, now))
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].BaseScore != candidates[j].BaseScore {
			return candidates[i].BaseScore > candidates[j].BaseScore
		}
		return candidates[i].VideoID < candidates[j].VideoID
	})

	set.Candidates = candidates
	metrics.CandidateBuilds.WithLabelValues("ok").Inc()
	return set
}

func candidateFromVideo(v domain.Video, now time.Time) domain.ContentCandidate {
	freshness := freshnessScore(v.PublishedAt, now)
	engagement := engagementScore(v)

	boost := v.EditorialBoost
	if boost == 0 {
		boost = 1.0
	}

	return domain.ContentCandidate{
		VideoID:         v.ID,
		ExternalID:      v.ExternalID,
		Category:        v.Category,
		Tags:            v.Tags,
		BaseScore:       engagement*engagementWeight + freshness*freshnessWeight,
		FreshnessScore:  freshness,
		EngagementScore: engagement,
		EditorialBoost:  boost,
		MaturityRating:  v.MaturityRating,
	}
}

// freshnessScore decays exponentially with hours since publish, floored at
// 0.1. An unpublished video scores neutral 0.5.
func freshnessScore(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return unknownPublishFresh
	}
	hours := now.Sub(*publishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Max(minFreshness, math.Exp(-hours/freshnessHalfLifeHours))
}

// engagementScore normalizes interaction counts into [0,1].
func engagementScore(v domain.Video) float64 {
	raw := (float64(v.LikeCount)*2 + float64(v.ShareCount)*3 + v.AvgWatchPercentage*100) /
		float64(v.ViewCount+1)
	return math.Min(1.0, raw)
}
