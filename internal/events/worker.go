package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/metrics"
)

// ArchiveSink receives drained batches for long-term storage.
type ArchiveSink interface {
	ArchiveEvents(ctx context.Context, tenantID int64, events []domain.Event) error
}

// AggregateStore applies per-user aggregate updates derived from events.
type AggregateStore interface {
	ApplyProfileDelta(ctx context.Context, tenantID int64, userID string, delta domain.ProfileDelta) error
}

// SignalInvalidator drops cached signals after a profile update.
type SignalInvalidator interface {
	Invalidate(tenantID int64, userID string)
}

// Worker drains the queue on a fixed interval, folds each user's events into
// their profile aggregates, and archives the raw batch. Delivery is
// at-least-once; a failed apply or archive only loses that batch's updates.
type Worker struct {
	queue     *Queue
	profiles  AggregateStore
	sink      ArchiveSink
	signals   SignalInvalidator
	batchSize int
	interval  time.Duration
	log       zerolog.Logger
}

func NewWorker(queue *Queue, profiles AggregateStore, sink ArchiveSink, signals SignalInvalidator, batchSize int, interval time.Duration, log zerolog.Logger) *Worker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Worker{
		queue:     queue,
		profiles:  profiles,
		sink:      sink,
		signals:   signals,
		batchSize: batchSize,
		interval:  interval,
		log:       log.With().Str("component", "event_worker").Logger(),
	}
}

// Run processes batches until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final drain so accepted events are not silently lost on
			// shutdown.
			w.processBatch(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	batch := w.queue.Drain(w.batchSize)
	if len(batch) == 0 {
		return
	}

	w.aggregate(ctx, batch)
	w.archive(ctx, batch)
}

type userKey struct {
	tenantID int64
	userID   string
}

func (w *Worker) aggregate(ctx context.Context, batch []domain.Event) {
	deltas := make(map[userKey]domain.ProfileDelta)
	for _, e := range batch {
		k := userKey{e.TenantID, e.UserID}
		d := deltas[k]
		switch e.Type {
		case domain.EventVideoWatch:
			d.WatchCount++
			d.TotalWatchTimeMs += e.WatchDurationMs()
		case domain.EventVideoLike:
			d.LikeCount++
		case domain.EventVideoShare:
			d.ShareCount++
		}
		deltas[k] = d
	}

	for k, d := range deltas {
		if d.Zero() {
			continue
		}
		if err := w.profiles.ApplyProfileDelta(ctx, k.tenantID, k.userID, d); err != nil {
			w.log.Error().Int64("tenant_id", k.tenantID).Str("user_id", k.userID).Err(err).
				Msg("profile aggregate update failed")
			continue
		}
		if w.signals != nil {
			w.signals.Invalidate(k.tenantID, k.userID)
		}
	}
}

func (w *Worker) archive(ctx context.Context, batch []domain.Event) {
	byTenant := make(map[int64][]domain.Event)
	for _, e := range batch {
		byTenant[e.TenantID] = append(byTenant[e.TenantID], e)
	}

	for tenantID, events := range byTenant {
		if err := w.sink.ArchiveEvents(ctx, tenantID, events); err != nil {
			w.log.Error().Int64("tenant_id", tenantID).Err(err).Msg("event archive failed")
			continue
		}
		metrics.EventsArchived.Add(float64(len(events)))
	}
}
