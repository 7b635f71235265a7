package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/domain"
)

func newTestCandidateIndex(store *fakeCatalogStore) *CandidateIndex {
	return NewCandidateIndex(store, time.Minute, zerolog.Nop())
}

func TestCandidatesBuildAndCache(t *testing.T) {
	now := time.Now()
	store := &fakeCatalogStore{videos: map[int64][]domain.Video{
		1: {
			activeVideo(1, "sports_001", "sports", 10000, 500, 50, 0.75, 1.0, timePtr(now)),
			activeVideo(2, "music_001", "music", 200000, 10000, 3000, 0.95, 2.0, timePtr(now)),
		},
	}}
	index := newTestCandidateIndex(store)
	ctx := context.Background()

	set := index.Candidates(ctx, 1)
	if len(set.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(set.Candidates))
	}
	if set.Version != 1 {
		t.Errorf("expected initial version 1, got %d", set.Version)
	}

	index.Candidates(ctx, 1)
	if got := store.calls.Load(); got != 1 {
		t.Errorf("expected 1 catalog query, got %d", got)
	}
}

func TestCandidatesSortedByBaseScore(t *testing.T) {
	now := time.Now()
	store := &fakeCatalogStore{videos: map[int64][]domain.Video{
		1: {
			activeVideo(1, "news_002", "news", 3000, 50, 10, 0.45, 1.0, timePtr(now.AddDate(0, 0, -30))),
			activeVideo(2, "music_001", "music", 200000, 10000, 3000, 0.95, 2.0, timePtr(now)),
		},
	}}
	index := newTestCandidateIndex(store)

	set := index.Candidates(context.Background(), 1)

	for i := 1; i < len(set.Candidates); i++ {
		if set.Candidates[i-1].BaseScore < set.Candidates[i].BaseScore {
			t.Errorf("candidates not sorted at %d", i)
		}
	}
	if set.Candidates[0].ExternalID != "music_001" {
		t.Errorf("expected music_001 first, got %s", set.Candidates[0].ExternalID)
	}
}

func TestCandidatesBuildErrorDegradesToEmpty(t *testing.T) {
	store := &fakeCatalogStore{err: errors.New("db down")}
	index := newTestCandidateIndex(store)

	set := index.Candidates(context.Background(), 1)

	if !set.Empty() {
		t.Error("expected empty set on build failure")
	}
	if set.TenantID != 1 {
		t.Errorf("expected tenant 1, got %d", set.TenantID)
	}
}

func TestRebuildAdvancesVersion(t *testing.T) {
	store := &fakeCatalogStore{videos: map[int64][]domain.Video{
		1: {activeVideo(1, "sports_001", "sports", 100, 10, 1, 0.5, 1.0, nil)},
	}}
	index := newTestCandidateIndex(store)
	ctx := context.Background()

	if v := index.Version(1); v != 1 {
		t.Errorf("expected version 1 before rebuild, got %d", v)
	}

	index.Candidates(ctx, 1)
	index.Rebuild(1)

	if v := index.Version(1); v != 2 {
		t.Errorf("expected version 2 after rebuild, got %d", v)
	}

	// Eviction forces a fresh build carrying the new version.
	set := index.Candidates(ctx, 1)
	if set.Version != 2 {
		t.Errorf("expected rebuilt set version 2, got %d", set.Version)
	}
	if got := store.calls.Load(); got != 2 {
		t.Errorf("expected 2 catalog queries, got %d", got)
	}
}

func TestRebuildConcurrent(t *testing.T) {
	index := newTestCandidateIndex(&fakeCatalogStore{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			index.Rebuild(1)
		}()
	}
	wg.Wait()

	if v := index.Version(1); v != 21 {
		t.Errorf("expected version 21 after 20 concurrent rebuilds, got %d", v)
	}
}

func TestFreshnessScore(t *testing.T) {
	now := time.Now()

	if got := freshnessScore(nil, now); got != unknownPublishFresh {
		t.Errorf("nil published: expected %f, got %f", unknownPublishFresh, got)
	}

	fresh := now.Add(-time.Hour)
	old := now.AddDate(-1, 0, 0)
	if got := freshnessScore(&fresh, now); got <= freshnessScore(&old, now) {
		t.Error("newer video should score higher")
	}
	if got := freshnessScore(&old, now); got != minFreshness {
		t.Errorf("ancient video: expected floor %f, got %f", minFreshness, got)
	}

	future := now.Add(time.Hour)
	if got := freshnessScore(&future, now); got != 1.0 {
		t.Errorf("future publish clamps to 1.0, got %f", got)
	}
}

func TestEngagementScoreClamped(t *testing.T) {
	viral := domain.Video{ViewCount: 10, LikeCount: 1000, ShareCount: 1000, AvgWatchPercentage: 0.99}
	if got := engagementScore(viral); got != 1.0 {
		t.Errorf("expected clamp at 1.0, got %f", got)
	}

	dead := domain.Video{ViewCount: 100000}
	if got := engagementScore(dead); got < 0 || got > 0.01 {
		t.Errorf("expected near-zero engagement, got %f", got)
	}
}

func TestCandidateFromVideoDefaultBoost(t *testing.T) {
	c := candidateFromVideo(domain.Video{ID: 1, ExternalID: "x"}, time.Now())
	if c.EditorialBoost != 1.0 {
		t.Errorf("zero boost should default to 1.0, got %f", c.EditorialBoost)
	}
}
