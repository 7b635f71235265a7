// Package ranking scores content candidates against user signals. The engine
// is a pure computation: identical inputs always produce the identical
// ordered output.
package ranking

import (
	"sort"
	"strconv"

	"github.com/xay/video-feed-service/internal/domain"
)

// Reason explains why a video was ranked where it was. Closed set; the zero
// value is invalid.
type Reason string

const (
	ReasonCategoryAffinity Reason = "category_affinity"
	ReasonNewContent       Reason = "new_content"
	ReasonPopular          Reason = "popular"
	ReasonRecommended      Reason = "recommended"
	ReasonTrending         Reason = "trending"
)

const (
	neutralAffinity = 0.5
	watchedPenalty  = 0.1
)

type RankedVideo struct {
	VideoID    int64
	ExternalID string
	Score      float64
	Reason     Reason
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Rank scores every candidate with the personalized formula and returns the
// top limit videos, ordered by score descending. Equal scores are broken by
// ascending video id so the order is total and reproducible.
func (e *Engine) Rank(candidates []domain.ContentCandidate, signals *domain.UserSignals, weights domain.RankingWeights, limit int) []RankedVideo {
	if weights == (domain.RankingWeights{}) {
		weights = domain.DefaultRankingWeights()
	}

	ranked := make([]RankedVideo, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scoreCandidate(c, signals, weights))
	}
	sortRanked(ranked)
	return truncate(ranked, limit)
}

// RankTrending is the non-personalized path: base score times editorial
// boost, reason always "trending".
func (e *Engine) RankTrending(candidates []domain.ContentCandidate, limit int) []RankedVideo {
	ranked := make([]RankedVideo, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedVideo{
			VideoID:    c.VideoID,
			ExternalID: c.ExternalID,
			Score:      c.BaseScore * c.EditorialBoost,
			Reason:     ReasonTrending,
		})
	}
	sortRanked(ranked)
	return truncate(ranked, limit)
}

func scoreCandidate(c domain.ContentCandidate, signals *domain.UserSignals, w domain.RankingWeights) RankedVideo {
	affinity := affinityScore(c, signals)

	penalty := 1.0
	// Profiles store external ids in the recent-watch set, but tolerate
	// numeric ids from older writers.
	if signals.Watched(c.ExternalID) || signals.Watched(strconv.FormatInt(c.VideoID, 10)) {
		penalty = watchedPenalty
	}

	score := (w.Recency*c.FreshnessScore +
		w.Engagement*c.EngagementScore +
		w.Affinity*affinity) * c.EditorialBoost * penalty

	return RankedVideo{
		VideoID:    c.VideoID,
		ExternalID: c.ExternalID,
		Score:      score,
		Reason:     reasonFor(affinity, c.FreshnessScore, c.EngagementScore, w.Affinity),
	}
}

func affinityScore(c domain.ContentCandidate, signals *domain.UserSignals) float64 {
	if c.Category == "" || signals == nil || len(signals.CategoryAffinities) == 0 {
		return neutralAffinity
	}
	if a, ok := signals.CategoryAffinities[c.Category]; ok {
		return a
	}
	return neutralAffinity
}

// reasonFor picks the first matching reason tag.
func reasonFor(affinity, freshness, engagement, affinityWeight float64) Reason {
	switch {
	case affinityWeight > 0.2 && affinity > 0.6:
		return ReasonCategoryAffinity
	case freshness > 0.8:
		return ReasonNewContent
	case engagement > 0.7:
		return ReasonPopular
	default:
		return ReasonRecommended
	}
}

func sortRanked(ranked []RankedVideo) {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].VideoID < ranked[j].VideoID
	})
}

func truncate(ranked []RankedVideo, limit int) []RankedVideo {
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
