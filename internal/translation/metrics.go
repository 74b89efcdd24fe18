package translation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deeplCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pikmin_deepl_requests_total",
		Help: "DeepL requests by outcome (ok, retry, error)",
	}, []string{"outcome"})

	deeplLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pikmin_deepl_request_duration_seconds",
		Help:    "DeepL request latency",
		Buckets: prometheus.DefBuckets,
	})

	// cacheLookups counts translation reads by layer that answered
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pikmin_translation_lookups_total",
		Help: "Translation lookups by source (redis, postgres, original)",
	}, []string{"source"})
)
