package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xay/video-feed-service/internal/domain"
)

func (r *Repository) FindTenant(ctx context.Context, tenantID int64) (*domain.Tenant, error) {
	t := &domain.Tenant{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(ranking_weights, ''), COALESCE(maturity_filter, ''),
		        personalization_enabled, rollout_percentage, config_version, created_at, updated_at
		 FROM tenants WHERE id = $1`,
		tenantID,
	).Scan(&t.ID, &t.Name, &t.RankingWeights, &t.MaturityFilter,
		&t.PersonalizationEnabled, &t.RolloutPercentage, &t.ConfigVersion, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("query tenant id=%d: %w", tenantID, err)
	}

	return t, nil
}
