package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	picksCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livedraft_picks_committed_total",
			Help: "Committed picks by origin",
		},
		[]string{"origin"},
	)

	autoPickFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "livedraft_autopick_fallbacks_total",
			Help: "Auto-picks that used the projection fallback",
		},
	)

	persistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livedraft_persistence_failures_total",
			Help: "Store writes that exhausted their synchronous retries",
		},
		[]string{"operation"},
	)

	reconcilerBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "livedraft_reconciler_backlog",
			Help: "Store writes waiting for background retry",
		},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "livedraft_active_sessions",
			Help: "Draft sessions held in memory",
		},
	)

	pickCommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "livedraft_pick_commit_seconds",
			Help:    "Time spent in the pick commit path",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)

	draftsHalted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "livedraft_drafts_halted_total",
			Help: "Drafts halted because a pick was due with an empty pool",
		},
	)
)
