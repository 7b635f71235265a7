package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xay/video-feed-service/internal/domain"
)

func (r *Repository) FindProfile(ctx context.Context, tenantID int64, userID string) (*domain.UserProfile, error) {
	p := &domain.UserProfile{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, hashed_user_id, watch_count, total_watch_time_ms,
		        avg_watch_percentage, like_count, share_count,
		        COALESCE(category_affinities, ''), COALESCE(last_watched_ids, ''), last_active_at
		 FROM user_profiles
		 WHERE tenant_id = $1 AND hashed_user_id = $2`,
		tenantID, userID,
	).Scan(&p.ID, &p.TenantID, &p.HashedUserID, &p.WatchCount, &p.TotalWatchTimeMs,
		&p.AvgWatchPercentage, &p.LikeCount, &p.ShareCount,
		&p.CategoryAffinities, &p.LastWatchedIDs, &p.LastActiveAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("query profile tenant=%d user=%s: %w", tenantID, userID, err)
	}

	return p, nil
}

// ApplyProfileDelta folds aggregated event counts into a profile, creating
// the row if the user has none yet.
func (r *Repository) ApplyProfileDelta(ctx context.Context, tenantID int64, userID string, delta domain.ProfileDelta) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_profiles
		   (tenant_id, hashed_user_id, watch_count, total_watch_time_ms, like_count, share_count, last_active_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now(), now())
		 ON CONFLICT (tenant_id, hashed_user_id) DO UPDATE SET
		   watch_count         = user_profiles.watch_count + EXCLUDED.watch_count,
		   total_watch_time_ms = user_profiles.total_watch_time_ms + EXCLUDED.total_watch_time_ms,
		   like_count          = user_profiles.like_count + EXCLUDED.like_count,
		   share_count         = user_profiles.share_count + EXCLUDED.share_count,
		   last_active_at      = now(),
		   updated_at          = now()`,
		tenantID, userID, delta.WatchCount, delta.TotalWatchTimeMs, delta.LikeCount, delta.ShareCount,
	)
	if err != nil {
		return fmt.Errorf("apply profile delta tenant=%d user=%s: %w", tenantID, userID, err)
	}
	return nil
}
