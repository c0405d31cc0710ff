package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_provider_calls_total",
			Help: "Total number of upstream provider calls",
		},
		[]string{"provider", "endpoint", "status"}, // status: success|error
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cassandra_provider_latency_seconds",
			Help:    "Upstream provider call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "endpoint"},
	)

	// Classifier metrics
	ClassifierCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_classifier_calls_total",
			Help: "Total number of classifier calls",
		},
		[]string{"status"}, // status: success|error
	)

	ClassifierLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cassandra_classifier_latency_seconds",
			Help:    "Classifier call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
	)

	// Analysis metrics
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_analysis_runs_total",
			Help: "Total number of analysis requests",
		},
		[]string{"source"}, // source: live|partial|synthetic|error
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cassandra_analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cassandra_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)
)

// Register registers all collectors with the default registry
func Register() {
	prometheus.MustRegister(
		ProviderCalls,
		ProviderLatency,
		ClassifierCalls,
		ClassifierLatency,
		AnalysisRuns,
		AnalysisDuration,
		WorkerExecutions,
		WorkerDuration,
	)
}

// Serve starts the metrics HTTP endpoint
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go srv.ListenAndServe()
	return srv
}
