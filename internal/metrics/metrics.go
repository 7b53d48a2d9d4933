package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels analyses that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels analyses that failed validation or data fetch.
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "telemetry_engine",
			Name:      "analyses_total",
			Help:      "Total number of analyses performed, partitioned by analysis kind and outcome.",
		},
		[]string{"analysis", "outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "telemetry_engine",
			Name:      "analysis_seconds",
			Help:      "Analysis latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"analysis"},
	)

	benchmarkRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "telemetry_engine",
			Name:      "benchmark_requests_total",
			Help:      "Benchmark operation invocations, partitioned by variant and outcome.",
		},
		[]string{"variant", "outcome"},
	)

	benchmarkRunSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "telemetry_engine",
			Name:      "benchmark_run_seconds",
			Help:      "Wall-clock duration of benchmark runs in seconds.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
)

// Register attaches telemetry-engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		benchmarkRequestsTotal,
		benchmarkRunSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records one analysis call with its duration and outcome.
func ObserveAnalysis(analysis string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(analysis, label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.WithLabelValues(analysis).Observe(duration.Seconds())
}

// ObserveBenchmarkRun records the per-invocation outcomes and wall-clock
// duration of one benchmark run.
func ObserveBenchmarkRun(variant string, successCount, errorCount int, elapsed time.Duration) {
	benchmarkRequestsTotal.WithLabelValues(variant, OutcomeSuccess).Add(float64(successCount))
	benchmarkRequestsTotal.WithLabelValues(variant, OutcomeError).Add(float64(errorCount))
	if elapsed < 0 {
		elapsed = 0
	}
	benchmarkRunSeconds.Observe(elapsed.Seconds())
}
