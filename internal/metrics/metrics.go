package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecopack_recommend_duration_seconds",
		Help:    "Latency of a full recommendation run",
		Buckets: prometheus.DefBuckets,
	})

	RecommendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecopack_recommend_total",
		Help: "Recommendation runs by outcome status",
	}, []string{"status"})

	EligibleCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecopack_eligible_candidates",
		Help:    "Eligible materials per run after filtering",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	RelaxedRulesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecopack_relaxed_rules_total",
		Help: "Filter rules skipped because they would have emptied the eligible set",
	}, []string{"rule"})

	PredictorFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecopack_predictor_fallback_total",
		Help: "Candidate predictions replaced by the catalog fallback",
	}, []string{"metric"})

	PersistFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecopack_persist_failures_total",
		Help: "Runs that could not be written to the result store",
	})

	PublishFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecopack_publish_failures_total",
		Help: "Events that could not be published to hermes",
	})
)

var once sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RecommendDuration,
			RecommendTotal,
			EligibleCandidates,
			RelaxedRulesTotal,
			PredictorFallbackTotal,
			PersistFailuresTotal,
			PublishFailuresTotal,
		)
	})
}
