package metrics

import "github.com/prometheus/client_golang/prometheus"

// Background job Prometheus metrics.
var (
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topicboard",
			Name:      "job_runs_total",
			Help:      "Total number of job runs",
		},
		[]string{"job", "status"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "topicboard",
			Name:      "job_duration_seconds",
			Help:      "Job run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	JobItemsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topicboard",
			Name:      "job_items_processed_total",
			Help:      "Total items processed by jobs",
		},
		[]string{"job"},
	)
)

var jobMetricsRegistered bool

// RegisterJobMetrics registers Prometheus job metrics. Must be called once from main.
func RegisterJobMetrics() {
	if jobMetricsRegistered {
		return
	}
	prometheus.MustRegister(JobRunsTotal)
	prometheus.MustRegister(JobDuration)
	prometheus.MustRegister(JobItemsProcessed)
	jobMetricsRegistered = true
}
