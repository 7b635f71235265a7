// Package metrics defines the Prometheus instruments for the feed pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Feed requests served, by resulting feed type",
		},
		[]string{"feed_type"},
	)

	FeedNotModified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_not_modified_total",
			Help: "Feed requests answered 304 via conditional validator match",
		},
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_ranking_duration_seconds",
			Help:    "Wall time of the ranking computation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	CandidateBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_candidate_builds_total",
			Help: "Candidate set builds, by outcome",
		},
		[]string{"outcome"}, // ok, empty, error
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_misses_total",
			Help: "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	// SignalParseFailures counts silently-defaulted JSON blobs. The
	// fallback keeps requests succeeding, so this counter is the only
	// visibility into persistent profile or tenant-config corruption.
	SignalParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_signal_parse_failures_total",
			Help: "Malformed stored JSON blobs replaced by defaults",
		},
		[]string{"field"}, // ranking_weights, category_affinities, last_watched_ids
	)

	EventQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_queue_depth",
			Help: "Events currently buffered in the intake queue",
		},
	)

	EventsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_accepted_total",
			Help: "Events accepted into the intake queue",
		},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Events dropped because the intake queue was full",
		},
	)

	EventsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_archived_total",
			Help: "Events written to the archive sink",
		},
	)
)
