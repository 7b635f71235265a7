package domain

import "time"

// Feed types returned in response metadata. The orchestrator picks exactly
// one per request.
const (
	FeedPersonalized    = "personalized"
	FeedFallback        = "fallback"
	FeedColdStart       = "cold_start"
	FeedNoContent       = "no_content"
	FeedTimeoutFallback = "timeout_fallback"
)

// FeedItem is a ranked video resolved to display metadata.
type FeedItem struct {
	ID              string  `json:"id"`
	ExternalID      string  `json:"external_id"`
	Title           string  `json:"title"`
	ThumbnailURL    string  `json:"thumbnail_url"`
	DurationSeconds int     `json:"duration_seconds"`
	Category        string  `json:"category"`
	Score           float64 `json:"score"`
	Reason          string  `json:"reason"`
}

// CachedFeed is a fully ordered feed stored per (tenant, user). Version is a
// copy of the candidate-set version used to build it. Created on cache miss,
// read-only afterward, replaced wholesale on regeneration.
type CachedFeed struct {
	Version     int64      `json:"version"`
	GeneratedAt time.Time  `json:"generated_at"`
	FeedType    string     `json:"feed_type"`
	Items       []FeedItem `json:"items"`
}

type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

type FeedMeta struct {
	FeedType       string    `json:"feed_type"`
	GeneratedAt    time.Time `json:"generated_at"`
	TTLHintSeconds int       `json:"ttl_hint_seconds"`
}

// FeedPage is one page of a feed plus response metadata. ETag is surfaced as
// a header, not in the body.
type FeedPage struct {
	Items      []FeedItem `json:"items"`
	Pagination Pagination `json:"pagination"`
	Meta       FeedMeta   `json:"meta"`
	ETag       string     `json:"-"`
}
