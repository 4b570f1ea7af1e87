package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestDuration measures request latency per matched route.
	// Labels: route (ServeMux pattern), method, status.
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sales_dashboard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	// pipelineRuns counts filter/aggregation pipeline executions.
	pipelineRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sales_dashboard",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total filter and aggregation pipeline executions",
	})

	// pipelineDuration measures one full pipeline pass.
	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sales_dashboard",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Time to filter and aggregate one criteria state",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	// pipelineMatched tracks how many orders each criteria state matched.
	pipelineMatched = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sales_dashboard",
		Subsystem: "pipeline",
		Name:      "matched_orders",
		Help:      "Orders matched by the filter per pipeline run",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	// datasetRecords reports the size of the loaded dataset.
	datasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sales_dashboard",
		Subsystem: "dataset",
		Name:      "records",
		Help:      "Records in the loaded dataset",
	})
)

func ObservePipeline(d time.Duration, matched int) {
	pipelineRuns.Inc()
	pipelineDuration.Observe(d.Seconds())
	pipelineMatched.Observe(float64(matched))
}

func SetDatasetRecords(n int) {
	datasetRecords.Set(float64(n))
}

func ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}
