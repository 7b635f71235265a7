package domain

import "time"

type EventType string

const (
	EventVideoWatch EventType = "video_watch"
	EventVideoLike  EventType = "video_like"
	EventVideoShare EventType = "video_share"
)

// Event is a single user interaction, enriched with tenant and user context
// at enqueue time.
type Event struct {
	TenantID  int64          `json:"tenant_id"`
	UserID    string         `json:"user_id"`
	Type      EventType      `json:"type"`
	VideoID   string         `json:"video_id"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// WatchDurationMs extracts the watch duration from the event payload, if the
// client sent one. JSON numbers decode as float64.
func (e Event) WatchDurationMs() int64 {
	if v, ok := e.Data["watch_duration_ms"].(float64); ok && v > 0 {
		return int64(v)
	}
	return 0
}
