package seeds

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Setup loads a small demo dataset: three tenants with different rollout
// settings, a ten-video catalog per personalized tenant and four user
// profiles per tenant covering the main personalization states.
func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	// Truncate existing data before insert
	log.Println("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE raw_events, user_profiles, videos, tenants RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Println("[seed] inserting tenants")
	tenantIDs, err := seedTenants(ctx, pool)
	if err != nil {
		return fmt.Errorf("seed tenants: %w", err)
	}

	// The disabled tenant keeps an empty catalog on purpose; its feed is
	// always the fallback.
	for _, tenantID := range tenantIDs[:2] {
		log.Printf("[seed] inserting videos for tenant %d", tenantID)
		if err := seedVideos(ctx, pool, tenantID); err != nil {
			return fmt.Errorf("seed videos for tenant %d: %w", tenantID, err)
		}

		log.Printf("[seed] inserting profiles for tenant %d", tenantID)
		if err := seedProfiles(ctx, pool, tenantID); err != nil {
			return fmt.Errorf("seed profiles for tenant %d: %w", tenantID, err)
		}
	}

	log.Println("[seed] seeding complete")
	return nil
}

func seedTenants(ctx context.Context, pool *pgxpool.Pool) ([]int64, error) {
	type tenant struct {
		name    string
		enabled bool
		rollout int
	}
	tenants := []tenant{
		{"Acme Corp", true, 100},
		{"Beta Inc", true, 50},
		{"Gamma LLC", false, 0},
	}

	weights := `{"recency": 0.3, "engagement": 0.4, "affinity": 0.3}`

	ids := make([]int64, 0, len(tenants))
	for _, t := range tenants {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO tenants (name, ranking_weights, maturity_filter, personalization_enabled, rollout_percentage, config_version)
			 VALUES ($1, $2, 'PG-13', $3, $4, 1)
			 RETURNING id`,
			t.name, weights, t.enabled, t.rollout,
		).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedVideos(ctx context.Context, pool *pgxpool.Pool, tenantID int64) error {
	type video struct {
		externalID  string
		title       string
		category    string
		duration    int
		views       int64
		likes       int64
		shares      int64
		avgWatch    float64
		boost       float64
		daysAgo     int
	}
	videos := []video{
		{"sports_001", "Top 10 Goals of the Week", "sports", 180, 10000, 500, 50, 0.75, 1.0, 0},
		{"sports_002", "NBA Highlights: Lakers vs Celtics", "sports", 240, 8000, 400, 30, 0.70, 1.0, 1},
		{"sports_003", "F1 Race Recap: Monaco GP", "sports", 300, 15000, 800, 100, 0.80, 1.5, 2},
		{"comedy_001", "Office Prank Gone Wrong", "comedy", 95, 50000, 2000, 500, 0.85, 1.0, 3},
		{"comedy_002", "Stand-up: Weekend Special", "comedy", 600, 30000, 1500, 200, 0.65, 1.0, 5},
		{"comedy_003", "Funny Cat Compilation", "comedy", 120, 100000, 5000, 1000, 0.90, 1.2, 1},
		{"news_001", "Tech News Roundup", "news", 180, 5000, 100, 20, 0.50, 1.0, 0},
		{"news_002", "Market Update: Stocks Rally", "news", 120, 3000, 50, 10, 0.45, 1.0, 2},
		{"music_001", "Summer Hits 2025", "music", 210, 200000, 10000, 3000, 0.95, 2.0, 0},
		{"music_002", "Acoustic Sessions: Indie Vibes", "music", 300, 20000, 1000, 150, 0.80, 1.0, 4},
	}

	rows := []string{}
	args := []any{}
	for i, v := range videos {
		tags := fmt.Sprintf(`["%s", "trending"]`, v.category)
		publishedAt := time.Now().AddDate(0, 0, -v.daysAgo)

		base := i * 13
		placeholders := make([]string, 13)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		rows = append(rows, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, tenantID, v.externalID, v.title, v.category, tags,
			v.duration, v.views, v.likes, v.shares, v.avgWatch, v.boost, "PG", publishedAt)
	}

	query := `INSERT INTO videos
		(tenant_id, external_id, title, category, tags, duration_seconds,
		 view_count, like_count, share_count, avg_watch_percentage, editorial_boost,
		 maturity_rating, published_at)
		VALUES ` + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedProfiles(ctx context.Context, pool *pgxpool.Pool, tenantID int64) error {
	type profile struct {
		hashedUserID string
		watchCount   int64
		watchTimeMs  int64
		avgWatch     float64
		likes        int64
		shares       int64
		affinities   string
		watchedIDs   string
	}
	profiles := []profile{
		{"a4f2e8c1b9d3e7f6", 50, 180000, 0.75, 20, 5,
			`{"sports": 0.9, "news": 0.3, "comedy": 0.2}`, `["sports_001", "sports_002"]`},
		{"b7c3d9a2e5f1g8h4", 30, 90000, 0.80, 15, 3,
			`{"comedy": 0.85, "music": 0.4, "sports": 0.1}`, `["comedy_001", "comedy_003"]`},
		// Cold start: no watch history yet.
		{"c1d5e9f3a7b2c6d8", 0, 0, 0, 0, 0, `{}`, `[]`},
		{"d8e2f6a4b1c9d3e7", 100, 300000, 0.70, 40, 10,
			`{"sports": 0.5, "comedy": 0.5, "music": 0.6, "news": 0.3}`, `["music_001", "sports_003", "comedy_002"]`},
	}

	rows := []string{}
	args := []any{}
	for i, p := range profiles {
		base := i * 9
		placeholders := make([]string, 9)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		rows = append(rows, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, tenantID, p.hashedUserID, p.watchCount, p.watchTimeMs,
			p.avgWatch, p.likes, p.shares, p.affinities, p.watchedIDs)
	}

	query := `INSERT INTO user_profiles
		(tenant_id, hashed_user_id, watch_count, total_watch_time_ms,
		 avg_watch_percentage, like_count, share_count, category_affinities, last_watched_ids)
		VALUES ` + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}
