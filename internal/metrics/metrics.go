// Package metrics holds the Prometheus instrumentation for the scoring
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder bundles the service's Prometheus collectors. One Recorder is
// created at startup and shared by the handler and scoring layers.
type Recorder struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ScoreCacheHits  prometheus.Counter
	ScoreCacheMiss  prometheus.Counter
	StoreErrors     prometheus.Counter
}

// NewRecorder registers the service collectors with reg. Passing a fresh
// registry in tests keeps them independent.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scoring_api_requests_total",
			Help: "API requests by method and response code.",
		}, []string{"method", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoring_api_request_duration_seconds",
			Help:    "API request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		ScoreCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "scoring_api_score_cache_hits_total",
			Help: "Score lookups served from cache.",
		}),
		ScoreCacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Name: "scoring_api_score_cache_misses_total",
			Help: "Score lookups that had to be computed.",
		}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "scoring_api_store_errors_total",
			Help: "Authoritative store reads that failed after retries.",
		}),
	}
}
