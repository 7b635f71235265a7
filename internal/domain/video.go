package domain

import "time"

// Video is a catalog row. PublishedAt is nil when the video was never
// published; candidate scoring treats that as neutral freshness.
type Video struct {
	ID                 int64      `json:"id"`
	TenantID           int64      `json:"tenant_id"`
	ExternalID         string     `json:"external_id"`
	Title              string     `json:"title"`
	Category           string     `json:"category"`
	Tags               []string   `json:"tags"`
	DurationSeconds    int        `json:"duration_seconds"`
	MaturityRating     string     `json:"maturity_rating"`
	ViewCount          int64      `json:"view_count"`
	LikeCount          int64      `json:"like_count"`
	ShareCount         int64      `json:"share_count"`
	AvgWatchPercentage float64    `json:"avg_watch_percentage"`
	EditorialBoost     float64    `json:"editorial_boost"`
	Status             string     `json:"status"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
