package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation HTTP handlers, by route
	RecommendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommend_http_latency_seconds",
		Help:    "Latency of recommendation HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// HTTP responses by route and status code
	RecommendResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_http_responses_total",
		Help: "Total recommendation HTTP responses by route and status",
	}, []string{"route", "status"})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendResponses,
	)
}
