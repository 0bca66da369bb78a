package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters exposed on /metrics. Registered once at package
// load through the default registry.
var (
	PostsSynced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusevents",
		Subsystem: "sync",
		Name:      "posts_upserted_total",
		Help:      "Posts inserted or revived during source syncs.",
	})

	PostsRetired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusevents",
		Subsystem: "sync",
		Name:      "posts_retired_total",
		Help:      "Posts removed after vanishing from the source snapshot.",
	})

	SyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusevents",
		Subsystem: "sync",
		Name:      "failures_total",
		Help:      "Source syncs aborted by a snapshot fetch failure.",
	})

	EventsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusevents",
		Subsystem: "extract",
		Name:      "events_total",
		Help:      "Calendar events committed by the extraction worker.",
	})

	ExtractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusevents",
		Subsystem: "extract",
		Name:      "failures_total",
		Help:      "Posts whose extraction failed and was scheduled for retry.",
	})

	DuplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusevents",
		Subsystem: "extract",
		Name:      "duplicates_skipped_total",
		Help:      "Candidates dropped by the cross-post duplicate guard.",
	})

	PendingPosts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "campusevents",
		Name:      "pending_posts",
		Help:      "Posts awaiting extraction after the last pipeline run.",
	})
)
