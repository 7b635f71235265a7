package service

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/cache"
	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/metrics"
)

// TenantStore is the durable tenant lookup consumed by the resolver.
type TenantStore interface {
	FindTenant(ctx context.Context, tenantID int64) (*domain.Tenant, error)
}

// TenantResolver caches immutable TenantConfig snapshots. A snapshot is
// refreshed only by TTL expiry or explicit Invalidate after an external
// config update.
type TenantResolver struct {
	store TenantStore
	cache *cache.TTL[int64, *domain.TenantConfig]
	log   zerolog.Logger
}

func NewTenantResolver(store TenantStore, maxSize int, ttl time.Duration, log zerolog.Logger) *TenantResolver {
	return &TenantResolver{
		store: store,
		cache: cache.NewTTL[int64, *domain.TenantConfig](maxSize, ttl),
		log:   log.With().Str("component", "tenant_resolver").Logger(),
	}
}

func (r *TenantResolver) Get(ctx context.Context, tenantID int64) (*domain.TenantConfig, error) {
	if cfg, ok := r.cache.Get(tenantID); ok {
		metrics.CacheHits.WithLabelValues("tenant").Inc()
		return cfg, nil
	}
	metrics.CacheMisses.WithLabelValues("tenant").Inc()

	tenant, err := r.store.FindTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	cfg := &domain.TenantConfig{
		TenantID:               tenant.ID,
		Name:                   tenant.Name,
		PersonalizationEnabled: tenant.PersonalizationEnabled,
		RolloutPercentage:      tenant.RolloutPercentage,
		Weights:                r.parseWeights(tenant.ID, tenant.RankingWeights),
		MaturityFilter:         tenant.MaturityFilter,
		ConfigVersion:          tenant.ConfigVersion,
	}
	r.cache.Set(tenantID, cfg)
	return cfg, nil
}

func (r *TenantResolver) PersonalizationEnabled(ctx context.Context, tenantID int64) (bool, error) {
	cfg, err := r.Get(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return cfg.PersonalizationEnabled, nil
}

// UserInRollout maps the user to a stable bucket in [0,100). The hash must
// survive process restarts, so it is xxhash of the user id, never anything
// identity-based.
func (r *TenantResolver) UserInRollout(ctx context.Context, tenantID int64, userID string) (bool, error) {
	cfg, err := r.Get(ctx, tenantID)
	if err != nil {
		return false, err
	}
	switch {
	case cfg.RolloutPercentage >= 100:
		return true, nil
	case cfg.RolloutPercentage <= 0:
		return false, nil
	}
	return rolloutBucket(userID) < cfg.RolloutPercentage, nil
}

func (r *TenantResolver) Invalidate(tenantID int64) {
	r.cache.Delete(tenantID)
}

func rolloutBucket(userID string) int {
	return int(xxhash.Sum64String(userID) % 100)
}

// parseWeights resolves the ranking_weights JSON column. Malformed blobs and
// missing keys fall back to the defaults; corruption is counted, not
// propagated.
func (r *TenantResolver) parseWeights(tenantID int64, raw string) domain.RankingWeights {
	weights := domain.DefaultRankingWeights()
	if raw == "" || raw == "{}" {
		return weights
	}

	var parsed map[string]float64
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		r.log.Warn().Int64("tenant_id", tenantID).Err(err).Msg("malformed ranking weights, using defaults")
		metrics.SignalParseFailures.WithLabelValues("ranking_weights").Inc()
		return weights
	}

	if w, ok := parsed["recency"]; ok {
		weights.Recency = w
	}
	if w, ok := parsed["engagement"]; ok {
		weights.Engagement = w
	}
	if w, ok := parsed["affinity"]; ok {
		weights.Affinity = w
	}
	return weights
}
