package domain

import "time"

// UserProfile is the stored behavioral profile row. CategoryAffinities and
// LastWatchedIDs are raw JSON text columns; the signal resolver parses them
// and tolerates corruption.
type UserProfile struct {
	ID                 int64      `json:"id"`
	TenantID           int64      `json:"tenant_id"`
	HashedUserID       string     `json:"hashed_user_id"`
	WatchCount         int        `json:"watch_count"`
	TotalWatchTimeMs   int64      `json:"total_watch_time_ms"`
	AvgWatchPercentage float64    `json:"avg_watch_percentage"`
	LikeCount          int        `json:"like_count"`
	ShareCount         int        `json:"share_count"`
	CategoryAffinities string     `json:"category_affinities"`
	LastWatchedIDs     string     `json:"last_watched_ids"`
	LastActiveAt       *time.Time `json:"last_active_at,omitempty"`
}

// UserSignals is the resolved, typed view of a profile used by the ranking
// engine. A zero-valued UserSignals (WatchCount 0) is the canonical cold-start
// representation, whether or not a profile row exists.
type UserSignals struct {
	TenantID           int64
	UserID             string
	WatchCount         int
	TotalWatchTimeMs   int64
	AvgWatchPercentage float64
	LikeCount          int
	ShareCount         int
	CategoryAffinities map[string]float64
	LastWatchedIDs     map[string]struct{}
}

func (s *UserSignals) ColdStart() bool {
	return s == nil || s.WatchCount == 0
}

// Watched reports whether the external video id is in the recent-watch set.
func (s *UserSignals) Watched(externalID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.LastWatchedIDs[externalID]
	return ok
}

// EmptySignals returns the cold-start signals object for a user with no
// stored profile.
func EmptySignals(tenantID int64, userID string) *UserSignals {
	return &UserSignals{
		TenantID:           tenantID,
		UserID:             userID,
		CategoryAffinities: map[string]float64{},
		LastWatchedIDs:     map[string]struct{}{},
	}
}

// ProfileDelta is an aggregate profile update produced by the event
// aggregation worker from a drained batch.
type ProfileDelta struct {
	WatchCount       int
	LikeCount        int
	ShareCount       int
	TotalWatchTimeMs int64
}

func (d ProfileDelta) Zero() bool {
	return d == ProfileDelta{}
}
