package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/xay/video-feed-service/internal/domain"
)

const videoColumns = `id, tenant_id, external_id, title, COALESCE(category, ''), COALESCE(tags, '[]'),
	COALESCE(duration_seconds, 0), COALESCE(maturity_rating, 'G'),
	view_count, like_count, share_count, avg_watch_percentage, editorial_boost,
	status, published_at, created_at`

// FindActiveVideos returns the tenant's active catalog for candidate builds.
func (r *Repository) FindActiveVideos(ctx context.Context, tenantID int64) ([]domain.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+`
		 FROM videos
		 WHERE tenant_id = $1 AND status = 'active'
		 ORDER BY id`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("query active videos for tenant %d: %w", tenantID, err)
	}
	defer rows.Close()

	return scanVideos(rows)
}

// FindVideosByIDs resolves ranked ids back to display metadata.
func (r *Repository) FindVideosByIDs(ctx context.Context, ids []int64) ([]domain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+`
		 FROM videos
		 WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query videos by ids: %w", err)
	}
	defer rows.Close()

	return scanVideos(rows)
}

func scanVideos(rows pgx.Rows) ([]domain.Video, error) {
	var videos []domain.Video
	for rows.Next() {
		var v domain.Video
		var tags string
		err := rows.Scan(&v.ID, &v.TenantID, &v.ExternalID, &v.Title, &v.Category, &tags,
			&v.DurationSeconds, &v.MaturityRating,
			&v.ViewCount, &v.LikeCount, &v.ShareCount, &v.AvgWatchPercentage, &v.EditorialBoost,
			&v.Status, &v.PublishedAt, &v.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		// Tags are stored as a JSON array; a corrupt blob just means no tags.
		_ = json.Unmarshal([]byte(tags), &v.Tags)
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}
