package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/xay/video-feed-service/internal/domain"
)

type fakeTenantStore struct {
	tenants map[int64]*domain.Tenant
	calls   atomic.Int64
}

func (f *fakeTenantStore) FindTenant(_ context.Context, tenantID int64) (*domain.Tenant, error) {
	f.calls.Add(1)
	t, ok := f.tenants[tenantID]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return t, nil
}

type fakeCatalogStore struct {
	videos map[int64][]domain.Video
	err    error
	calls  atomic.Int64
}

func (f *fakeCatalogStore) FindActiveVideos(_ context.Context, tenantID int64) ([]domain.Video, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.videos[tenantID], nil
}

func (f *fakeCatalogStore) FindVideosByIDs(_ context.Context, ids []int64) ([]domain.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	byID := make(map[int64]domain.Video)
	for _, vs := range f.videos {
		for _, v := range vs {
			byID[v.ID] = v
		}
	}
	out := make([]domain.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeProfileStore struct {
	profiles map[string]*domain.UserProfile
	calls    atomic.Int64
}

func profileKey(tenantID int64, userID string) string {
	return signalsKey(tenantID, userID)
}

func (f *fakeProfileStore) FindProfile(_ context.Context, tenantID int64, userID string) (*domain.UserProfile, error) {
	f.calls.Add(1)
	p, ok := f.profiles[profileKey(tenantID, userID)]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func activeVideo(id int64, externalID, category string, views, likes, shares int64, avgWatch, boost float64, publishedAt *time.Time) domain.Video {
	return domain.Video{
		ID:                 id,
		TenantID:           1,
		ExternalID:         externalID,
		Title:              externalID,
		Category:           category,
		ViewCount:          views,
		LikeCount:          likes,
		ShareCount:         shares,
		AvgWatchPercentage: avgWatch,
		EditorialBoost:     boost,
		Status:             "active",
		PublishedAt:        publishedAt,
	}
}
