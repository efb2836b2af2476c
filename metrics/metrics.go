// Package metrics defines the Prometheus instrumentation for recipeviz.
//
// Metrics are registered through promauto at package load; the server
// exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts search attempts by outcome (started, fetch_failed, invalid, complete, superseded)
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipeviz_searches_total",
			Help: "Total number of searches by outcome",
		},
		[]string{"outcome"},
	)

	// DatasetFetchDuration measures how long the search backend took to answer
	DatasetFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipeviz_dataset_fetch_duration_seconds",
			Help:    "Duration of dataset requests to the search backend",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// NodesRevealed counts nodes committed to a reveal state
	NodesRevealed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipeviz_nodes_revealed_total",
			Help: "Total number of nodes revealed",
		},
	)

	// AssetFailures counts node assets that failed to resolve (revealed with a placeholder)
	AssetFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipeviz_asset_failures_total",
			Help: "Total number of node assets that failed to resolve",
		},
	)

	// StaleAborts counts schedulers that stopped because a newer search began
	StaleAborts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipeviz_scheduler_stale_aborts_total",
			Help: "Total number of reveal schedulers superseded by a newer generation",
		},
	)

	// CullRecomputes counts visibility filter recomputations (memoization misses)
	CullRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipeviz_cull_recomputes_total",
			Help: "Total number of visible-set recomputations",
		},
	)

	// ActiveSessions tracks connected WebSocket canvas sessions
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipeviz_active_sessions",
			Help: "Number of connected canvas sessions",
		},
	)

	// FramesSent counts frames pushed to clients
	FramesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipeviz_frames_sent_total",
			Help: "Total number of scene frames sent to clients",
		},
	)
)
