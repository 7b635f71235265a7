// Package events implements the fire-and-forget event intake: a bounded
// in-process queue, a periodic aggregation worker, and the archive sink.
package events

import (
	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/metrics"
)

// Queue is a bounded buffer between the ingestion endpoint and the
// aggregation worker. Enqueue never blocks the request path: when the buffer
// is full, events are dropped and counted.
type Queue struct {
	ch  chan domain.Event
	log zerolog.Logger
}

func NewQueue(size int, log zerolog.Logger) *Queue {
	if size <= 0 {
		size = 1000
	}
	return &Queue{
		ch:  make(chan domain.Event, size),
		log: log.With().Str("component", "event_queue").Logger(),
	}
}

// Enqueue stamps tenant and user context onto each event and offers it to
// the buffer. Returns how many events were accepted.
func (q *Queue) Enqueue(tenantID int64, userID string, events []domain.Event) int {
	accepted := 0
	for _, e := range events {
		e.TenantID = tenantID
		e.UserID = userID
		select {
		case q.ch <- e:
			accepted++
		default:
			metrics.EventsDropped.Inc()
		}
	}
	if dropped := len(events) - accepted; dropped > 0 {
		q.log.Warn().Int64("tenant_id", tenantID).Int("dropped", dropped).Msg("event queue full")
	}
	metrics.EventsAccepted.Add(float64(accepted))
	metrics.EventQueueDepth.Set(float64(len(q.ch)))
	return accepted
}

// Drain removes up to max buffered events without blocking.
func (q *Queue) Drain(max int) []domain.Event {
	if max <= 0 {
		return nil
	}
	batch := make([]domain.Event, 0, max)
	for len(batch) < max {
		select {
		case e := <-q.ch:
			batch = append(batch, e)
		default:
			metrics.EventQueueDepth.Set(float64(len(q.ch)))
			return batch
		}
	}
	metrics.EventQueueDepth.Set(float64(len(q.ch)))
	return batch
}

func (q *Queue) Len() int {
	return len(q.ch)
}
