package events

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/domain"
)

func watchEvent(videoID string, durationMs float64) domain.Event {
	return domain.Event{
		Type:      domain.EventVideoWatch,
		VideoID:   videoID,
		Timestamp: time.Now(),
		Data:      map[string]any{"watch_duration_ms": durationMs},
	}
}

func TestEnqueueStampsContext(t *testing.T) {
	q := NewQueue(10, zerolog.Nop())

	accepted := q.Enqueue(7, "user-a", []domain.Event{watchEvent("v_001", 1000)})
	if accepted != 1 {
		t.Fatalf("expected 1 accepted, got %d", accepted)
	}

	batch := q.Drain(10)
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if batch[0].TenantID != 7 || batch[0].UserID != "user-a" {
		t.Errorf("event not stamped: %+v", batch[0])
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2, zerolog.Nop())

	events := []domain.Event{
		watchEvent("v_001", 100),
		watchEvent("v_002", 100),
		watchEvent("v_003", 100),
	}
	accepted := q.Enqueue(1, "user-a", events)

	if accepted != 2 {
		t.Errorf("expected 2 accepted, got %d", accepted)
	}
	if q.Len() != 2 {
		t.Errorf("expected queue length 2, got %d", q.Len())
	}
}

func TestDrainBatchSize(t *testing.T) {
	q := NewQueue(10, zerolog.Nop())
	q.Enqueue(1, "user-a", []domain.Event{
		watchEvent("v_001", 100),
		watchEvent("v_002", 100),
		watchEvent("v_003", 100),
	})

	batch := q.Drain(2)
	if len(batch) != 2 {
		t.Errorf("expected batch of 2, got %d", len(batch))
	}
	if q.Len() != 1 {
		t.Errorf("expected 1 event left, got %d", q.Len())
	}

	rest := q.Drain(10)
	if len(rest) != 1 {
		t.Errorf("expected final event, got %d", len(rest))
	}
}

func TestDrainEmptyQueue(t *testing.T) {
	q := NewQueue(10, zerolog.Nop())

	if batch := q.Drain(5); len(batch) != 0 {
		t.Errorf("expected empty batch, got %d", len(batch))
	}
}
