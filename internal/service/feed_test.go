package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/cache"
	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/ranking"
)

type feedFixture struct {
	svc     *FeedService
	tenants *fakeTenantStore
	catalog *fakeCatalogStore
	store   cache.FeedStore
}

func newFeedFixture(t *testing.T, tenant *domain.Tenant, videos []domain.Video, profiles map[string]*domain.UserProfile) *feedFixture {
	t.Helper()

	tenantStore := &fakeTenantStore{tenants: map[int64]*domain.Tenant{tenant.ID: tenant}}
	catalogStore := &fakeCatalogStore{videos: map[int64][]domain.Video{tenant.ID: videos}}
	profileStore := &fakeProfileStore{profiles: profiles}
	feedStore := cache.NewMemoryFeedStore(64, time.Minute)

	log := zerolog.Nop()
	svc := NewFeedService(
		NewTenantResolver(tenantStore, 16, time.Minute, log),
		NewCandidateIndex(catalogStore, time.Minute, log),
		NewSignalResolver(profileStore, 16, time.Minute, log),
		ranking.NewEngine(),
		feedStore,
		catalogStore,
		Options{},
		log,
	)

	return &feedFixture{svc: svc, tenants: tenantStore, catalog: catalogStore, store: feedStore}
}

func enabledTenant() *domain.Tenant {
	return &domain.Tenant{
		ID:                     1,
		Name:                   "Acme Corp",
		PersonalizationEnabled: true,
		RolloutPercentage:      100,
		ConfigVersion:          1,
	}
}

func tenVideos() []domain.Video {
	now := time.Now()
	videos := make([]domain.Video, 0, 10)
	categories := []string{"sports", "comedy", "news", "music", "sports", "comedy", "news", "music", "sports", "comedy"}
	externals := []string{"v_001", "v_002", "v_003", "v_004", "v_005", "v_006", "v_007", "v_008", "v_009", "v_010"}
	for i := 0; i < 10; i++ {
		published := now.AddDate(0, 0, -i)
		videos = append(videos, activeVideo(int64(i+1), externals[i], categories[i],
			int64(1000*(i+1)), int64(50*(i+1)), int64(5*(i+1)), 0.5+float64(i)*0.04, 1.0, &published))
	}
	return videos
}

func activeProfile(tenantID int64, userID string) map[string]*domain.UserProfile {
	return map[string]*domain.UserProfile{
		profileKey(tenantID, userID): {
			TenantID:           tenantID,
			HashedUserID:       userID,
			WatchCount:         25,
			CategoryAffinities: `{"sports": 0.9}`,
			LastWatchedIDs:     `["v_001"]`,
		},
	}
}

func TestFeedPersonalized(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))
	ctx := context.Background()

	page, err := fx.svc.Feed(ctx, 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}

	if page.Meta.FeedType != domain.FeedPersonalized {
		t.Errorf("expected personalized feed, got %s", page.Meta.FeedType)
	}
	if len(page.Items) != 5 {
		t.Errorf("expected 5 items, got %d", len(page.Items))
	}
	if !page.Pagination.HasMore {
		t.Error("expected more pages for a 10-video catalog")
	}
	if got := DecodeCursor(page.Pagination.NextCursor); got != 5 {
		t.Errorf("expected next cursor at offset 5, got %d", got)
	}
	if page.ETag == "" {
		t.Error("expected a validator on the page")
	}
	for _, item := range page.Items {
		if item.Reason == "" {
			t.Errorf("item %s missing reason", item.ID)
		}
	}
}

func TestFeedSecondPage(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))
	ctx := context.Background()

	first, err := fx.svc.Feed(ctx, 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}

	second, err := fx.svc.Feed(ctx, 1, "user-a", 5, first.Pagination.NextCursor, "")
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(second.Items) != 5 {
		t.Errorf("expected 5 items on second page, got %d", len(second.Items))
	}
	if second.Pagination.HasMore {
		t.Error("expected final page")
	}
	if second.ETag == first.ETag {
		t.Error("pages at different offsets must carry different validators")
	}

	seen := map[string]bool{}
	for _, item := range first.Items {
		seen[item.ID] = true
	}
	for _, item := range second.Items {
		if seen[item.ID] {
			t.Errorf("item %s appeared on both pages", item.ID)
		}
	}
}

func TestFeedCachedBetweenRequests(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))
	ctx := context.Background()

	first, err := fx.svc.Feed(ctx, 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	second, err := fx.svc.Feed(ctx, 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}

	if first.ETag != second.ETag {
		t.Errorf("cached feed changed validator: %s vs %s", first.ETag, second.ETag)
	}
	// Only the first request builds candidates.
	if got := fx.catalog.calls.Load(); got != 1 {
		t.Errorf("expected 1 candidate build, got %d", got)
	}
}

func TestFeedNotModified(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))
	ctx := context.Background()

	first, err := fx.svc.Feed(ctx, 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	_, err = fx.svc.Feed(ctx, 1, "user-a", 5, "", first.ETag)
	if !errors.Is(err, ErrNotModified) {
		t.Errorf("expected ErrNotModified, got %v", err)
	}

	// The same validator at a different offset is a full response.
	page, err := fx.svc.Feed(ctx, 1, "user-a", 5, EncodeCursor(5), first.ETag)
	if err != nil {
		t.Fatalf("offset request failed: %v", err)
	}
	if len(page.Items) == 0 {
		t.Error("expected items at offset 5")
	}
}

func TestFeedDisabledTenantFallsBack(t *testing.T) {
	tenant := enabledTenant()
	tenant.PersonalizationEnabled = false
	fx := newFeedFixture(t, tenant, tenVideos(), nil)

	page, err := fx.svc.Feed(context.Background(), 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if page.Meta.FeedType != domain.FeedFallback {
		t.Errorf("expected fallback feed, got %s", page.Meta.FeedType)
	}
	if len(page.Items) != 5 {
		t.Errorf("expected 5 items, got %d", len(page.Items))
	}
}

func TestFeedUserOutOfRolloutFallsBack(t *testing.T) {
	tenant := enabledTenant()
	tenant.RolloutPercentage = 0
	fx := newFeedFixture(t, tenant, tenVideos(), activeProfile(1, "user-a"))

	page, err := fx.svc.Feed(context.Background(), 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if page.Meta.FeedType != domain.FeedFallback {
		t.Errorf("expected fallback feed, got %s", page.Meta.FeedType)
	}
}

func TestFeedColdStart(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), nil)

	page, err := fx.svc.Feed(context.Background(), 1, "new-user", 5, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if page.Meta.FeedType != domain.FeedColdStart {
		t.Errorf("expected cold start feed, got %s", page.Meta.FeedType)
	}
	if len(page.Items) == 0 {
		t.Error("cold start still serves trending content")
	}
}

func TestFeedNoContent(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), nil, activeProfile(1, "user-a"))

	page, err := fx.svc.Feed(context.Background(), 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if page.Meta.FeedType != domain.FeedNoContent {
		t.Errorf("expected no content feed, got %s", page.Meta.FeedType)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected no items, got %d", len(page.Items))
	}
	if page.Pagination.HasMore {
		t.Error("empty feed cannot have more pages")
	}
}

func TestFeedUnknownTenant(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), nil, nil)

	_, err := fx.svc.Feed(context.Background(), 42, "user-a", 5, "", "")
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Errorf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestFeedDeadlineFallsBack(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))

	// Every clock read after the first advances past the deadline, so the
	// pre-ranking check trips.
	base := time.Now()
	calls := 0
	fx.svc.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(time.Second)
	}

	page, err := fx.svc.Feed(context.Background(), 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if page.Meta.FeedType != domain.FeedTimeoutFallback {
		t.Errorf("expected timeout fallback, got %s", page.Meta.FeedType)
	}
	if len(page.Items) == 0 {
		t.Error("timeout fallback still serves trending content")
	}
}

func TestFeedInvalidCursorStartsOver(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))

	fromStart, err := fx.svc.Feed(context.Background(), 1, "user-a", 5, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	fromBadCursor, err := fx.svc.Feed(context.Background(), 1, "user-a", 5, "!!garbage!!", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}

	if fromStart.Items[0].ID != fromBadCursor.Items[0].ID {
		t.Error("invalid cursor should behave like the first page")
	}
}

func TestFeedLimitDefaults(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))

	page, err := fx.svc.Feed(context.Background(), 1, "user-a", 0, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(page.Items) != defaultLimit {
		t.Errorf("expected default limit %d, got %d", defaultLimit, len(page.Items))
	}
}

func TestFeedOffsetPastEnd(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))

	page, err := fx.svc.Feed(context.Background(), 1, "user-a", 5, EncodeCursor(500), "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected empty window past the end, got %d items", len(page.Items))
	}
	if page.Pagination.HasMore {
		t.Error("window past the end cannot have more pages")
	}
}

func TestFeedWatchedVideoDemoted(t *testing.T) {
	fx := newFeedFixture(t, enabledTenant(), tenVideos(), activeProfile(1, "user-a"))

	page, err := fx.svc.Feed(context.Background(), 1, "user-a", 10, "", "")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}

	// v_001 is in the user's recent-watch set; the penalty pushes it to
	// the back despite being the freshest video.
	if len(page.Items) == 0 {
		t.Fatal("expected items")
	}
	last := page.Items[len(page.Items)-1]
	if last.ExternalID != "v_001" {
		t.Errorf("expected watched video last, got %s", last.ExternalID)
	}
}
