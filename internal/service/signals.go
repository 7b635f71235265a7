package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/cache"
	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/metrics"
)

// ProfileStore is the durable profile lookup consumed by the resolver.
type ProfileStore interface {
	FindProfile(ctx context.Context, tenantID int64, userID string) (*domain.UserProfile, error)
}

// SignalResolver caches resolved user signals. A user without a profile row
// resolves to empty signals, which is the cold-start representation, not an
// error.
type SignalResolver struct {
	store ProfileStore
	cache *cache.TTL[string, *domain.UserSignals]
	log   zerolog.Logger
}

func NewSignalResolver(store ProfileStore, maxSize int, ttl time.Duration, log zerolog.Logger) *SignalResolver {
	return &SignalResolver{
		store: store,
		cache: cache.NewTTL[string, *domain.UserSignals](maxSize, ttl),
		log:   log.With().Str("component", "signal_resolver").Logger(),
	}
}

func (r *SignalResolver) Signals(ctx context.Context, tenantID int64, userID string) (*domain.UserSignals, error) {
	key := signalsKey(tenantID, userID)
	if signals, ok := r.cache.Get(key); ok {
		metrics.CacheHits.WithLabelValues("signals").Inc()
		return signals, nil
	}
	metrics.CacheMisses.WithLabelValues("signals").Inc()

	profile, err := r.store.FindProfile(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			signals := domain.EmptySignals(tenantID, userID)
			r.cache.Set(key, signals)
			return signals, nil
		}
		return nil, err
	}

	signals := &domain.UserSignals{
		TenantID:           tenantID,
		UserID:             userID,
		WatchCount:         profile.WatchCount,
		TotalWatchTimeMs:   profile.TotalWatchTimeMs,
		AvgWatchPercentage: profile.AvgWatchPercentage,
		LikeCount:          profile.LikeCount,
		ShareCount:         profile.ShareCount,
		CategoryAffinities: r.parseAffinities(tenantID, userID, profile.CategoryAffinities),
		LastWatchedIDs:     r.parseWatchedIDs(tenantID, userID, profile.LastWatchedIDs),
	}
	r.cache.Set(key, signals)
	return signals, nil
}

// Invalidate drops a user's cached signals, e.g. after the aggregation
// worker updates the profile.
func (r *SignalResolver) Invalidate(tenantID int64, userID string) {
	r.cache.Delete(signalsKey(tenantID, userID))
}

func signalsKey(tenantID int64, userID string) string {
	return fmt.Sprintf("%d:%s", tenantID, userID)
}

func (r *SignalResolver) parseAffinities(tenantID int64, userID, raw string) map[string]float64 {
	if raw == "" || raw == "{}" {
		return map[string]float64{}
	}
	var affinities map[string]float64
	if err := json.Unmarshal([]byte(raw), &affinities); err != nil {
		r.log.Warn().Int64("tenant_id", tenantID).Str("user_id", userID).Err(err).
			Msg("malformed category affinities, treating as empty")
		metrics.SignalParseFailures.WithLabelValues("category_affinities").Inc()
		return map[string]float64{}
	}
	return affinities
}

func (r *SignalResolver) parseWatchedIDs(tenantID int64, userID, raw string) map[string]struct{} {
	if raw == "" || raw == "[]" {
		return map[string]struct{}{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		r.log.Warn().Int64("tenant_id", tenantID).Str("user_id", userID).Err(err).
			Msg("malformed last watched ids, treating as empty")
		metrics.SignalParseFailures.WithLabelValues("last_watched_ids").Inc()
		return map[string]struct{}{}
	}
	watched := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		watched[id] = struct{}{}
	}
	return watched
}
