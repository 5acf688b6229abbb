package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Count of recommendation requests by outcome.",
		},
		[]string{"outcome"},
	)

	RecommendResultSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of recommendations returned per request.",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
	)

	FeedbackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_feedback_events_total",
			Help: "Count of feedback events by interaction_type and status (accepted, rejected, dropped, applied, failed).",
		},
		[]string{"interaction_type", "status"},
	)
)

func init() {
	prometheus.MustRegister(RecommendRequestsTotal, RecommendResultSize, FeedbackEventsTotal)
}
