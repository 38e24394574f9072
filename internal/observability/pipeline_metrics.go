package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	analyzeRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retailsight_analyze_requests_total",
			Help: "Total number of analyze pipeline runs.",
		},
	)
	analyzeRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retailsight_analyze_rejected_total",
			Help: "Total number of analyze requests rejected by validation.",
		},
	)
	analyzeRefusalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retailsight_analyze_refusals_total",
			Help: "Total number of out-of-scope questions refused by the model.",
		},
	)
	completionLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retailsight_completion_latency_seconds",
			Help:    "Completion service latency per pipeline phase.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"phase"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retailsight_query_duration_seconds",
			Help:    "Generated SQL execution duration against the store.",
			Buckets: prometheus.DefBuckets,
		},
	)
	chartTypeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retailsight_chart_type_total",
			Help: "Suggested chart types by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		analyzeRequestsTotal,
		analyzeRejectedTotal,
		analyzeRefusalsTotal,
		completionLatencySeconds,
		queryDurationSeconds,
		chartTypeTotal,
	)
}

func IncrementAnalyzeRequest() {
	analyzeRequestsTotal.Inc()
}

func IncrementAnalyzeRejected() {
	analyzeRejectedTotal.Inc()
}

func IncrementAnalyzeRefusal() {
	analyzeRefusalsTotal.Inc()
}

func ObserveCompletion(phase string, elapsed time.Duration) {
	completionLatencySeconds.WithLabelValues(phase).Observe(elapsed.Seconds())
}

func ObserveQueryDuration(elapsed time.Duration) {
	queryDurationSeconds.Observe(elapsed.Seconds())
}

func IncrementChartType(kind string) {
	chartTypeTotal.WithLabelValues(kind).Inc()
}
