package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/xay/video-feed-service/internal/domain"
)

// ArchiveEvents lands a drained batch in the raw_events table. The archive is
// append-only; duplicates from retried batches are acceptable (at-least-once).
func (r *Repository) ArchiveEvents(ctx context.Context, tenantID int64, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		payload, err := json.Marshal(e.Data)
		if err != nil {
			payload = []byte("{}")
		}
		batch.Queue(
			`INSERT INTO raw_events (tenant_id, hashed_user_id, event_type, video_id, occurred_at, payload, archived_at)
			 VALUES ($1, $2, $3, $4, $5, $6, now())`,
			tenantID, e.UserID, string(e.Type), e.VideoID, e.Timestamp, payload,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("archive events for tenant %d: %w", tenantID, err)
		}
	}
	return nil
}
