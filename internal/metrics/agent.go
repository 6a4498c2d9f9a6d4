package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation and upstream-API Prometheus metrics.
var (
	GenerationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idigbio_agent",
			Name:      "generation_attempts_total",
			Help:      "Total number of language model generation attempts",
		},
		[]string{"operation", "outcome"},
	)

	GenerationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idigbio_agent",
			Name:      "generation_failures_total",
			Help:      "Total number of failed parameter generations",
		},
		[]string{"operation", "kind"},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "idigbio_agent",
			Name:      "generation_duration_seconds",
			Help:      "Parameter generation duration in seconds, per attempt",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"operation"},
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idigbio_agent",
			Name:      "upstream_requests_total",
			Help:      "Total number of iDigBio API requests",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "idigbio_agent",
			Name:      "upstream_request_duration_seconds",
			Help:      "iDigBio API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
)

// Generation failure kinds.
const (
	FailureTerminal  = "terminal"
	FailureExhausted = "exhausted"
	FailureAPI       = "api_error"
)

var agentMetricsRegistered bool

// RegisterAgentMetrics registers the Prometheus collectors. Must be called
// once from main.
func RegisterAgentMetrics() {
	if agentMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationAttemptsTotal)
	prometheus.MustRegister(GenerationFailuresTotal)
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	agentMetricsRegistered = true
}
