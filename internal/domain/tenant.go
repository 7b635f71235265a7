package domain

import "time"

// Tenant is the raw tenant row as stored in Postgres. RankingWeights is the
// unparsed JSON column; see TenantConfig for the resolved view.
type Tenant struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	RankingWeights         string    `json:"ranking_weights"`
	MaturityFilter         string    `json:"maturity_filter"`
	PersonalizationEnabled bool      `json:"personalization_enabled"`
	RolloutPercentage      int       `json:"rollout_percentage"`
	ConfigVersion          int       `json:"config_version"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// RankingWeights are the per-tenant scoring weights. Any weight missing from
// the stored JSON falls back to the defaults.
type RankingWeights struct {
	Recency    float64 `json:"recency"`
	Engagement float64 `json:"engagement"`
	Affinity   float64 `json:"affinity"`
}

const (
	DefaultRecencyWeight    = 0.3
	DefaultEngagementWeight = 0.4
	DefaultAffinityWeight   = 0.3
)

func DefaultRankingWeights() RankingWeights {
	return RankingWeights{
		Recency:    DefaultRecencyWeight,
		Engagement: DefaultEngagementWeight,
		Affinity:   DefaultAffinityWeight,
	}
}

// TenantConfig is an immutable snapshot of a tenant's feed configuration,
// cached by the tenant resolver and refreshed only by explicit invalidation.
type TenantConfig struct {
	TenantID               int64
	Name                   string
	PersonalizationEnabled bool
	RolloutPercentage      int
	Weights                RankingWeights
	MaturityFilter         string
	ConfigVersion          int
}
