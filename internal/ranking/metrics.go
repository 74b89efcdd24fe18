package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rafraîchissements de compteurs par période
	rankingUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pikmin_ranking_updates_total",
		Help: "Ranking rows whose counters were recomputed, by period",
	}, []string{"period"})

	// rangs réécrits par période
	rowsRewritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pikmin_ranking_rank_writes_total",
		Help: "Ranking rows whose rank changed during a re-sort, by period",
	}, []string{"period"})

	recalcDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pikmin_ranking_recalculate_duration_seconds",
		Help:    "Duration of a full rank re-sort across all periods",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	recalcFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pikmin_ranking_recalculate_failures_total",
		Help: "Scheduled re-sorts that returned an error",
	})
)
