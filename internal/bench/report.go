package bench

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

// ReportWriter renders benchmark results as Markdown-like plain text. It is
// a pure serializer: field order and the two-decimal float formatting are
// fixed so reports diff cleanly between runs.
type ReportWriter struct{}

// NewReportWriter constructs a report writer.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteEndpointReport writes a summary table followed by one detail section
// per endpoint, ordered by (method, path).
func (rw *ReportWriter) WriteEndpointReport(w io.Writer, title string, results []models.BenchmarkResult) error {
	ordered := append([]models.BenchmarkResult(nil), results...)
	sort.Slice(ordered, func(i, j int) bool {
		return endpointKey(ordered[i].Method, ordered[i].Path) < endpointKey(ordered[j].Method, ordered[j].Path)
	})

	if _, err := fmt.Fprintf(w, "# %s\n\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "| Method | Path | Throughput (req/s) | Avg Latency (ms) | P95 Latency (ms) | Error Rate (%) |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|--------|------|--------------------|------------------|------------------|----------------|"); err != nil {
		return err
	}
	for _, result := range ordered {
		if _, err := fmt.Fprintf(w, "| %s | %s | %.2f | %.2f | %.2f | %.2f |\n",
			result.Method,
			result.Path,
			result.Throughput,
			durationMillis(result.AvgLatency),
			durationMillis(result.P95Latency),
			result.ErrorRate(),
		); err != nil {
			return err
		}
	}

	for _, result := range ordered {
		if err := rw.writeDetail(w, result); err != nil {
			return err
		}
	}
	return nil
}

// WriteComparisonReport renders a variant comparison with the winner first.
func (rw *ReportWriter) WriteComparisonReport(w io.Writer, report models.ComparisonReport) error {
	if _, err := fmt.Fprintf(w, "# Variant Comparison %s\n\nBest variant: **%s**\n\n", report.RunID, report.Best); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "| Variant | Throughput (req/s) | Avg Latency (ms) | P95 Latency (ms) | Error Rate (%) |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---------|--------------------|------------------|------------------|----------------|"); err != nil {
		return err
	}
	for _, result := range report.Variants {
		if _, err := fmt.Fprintf(w, "| %s | %.2f | %.2f | %.2f | %.2f |\n",
			result.Name,
			result.Throughput,
			durationMillis(result.AvgLatency),
			durationMillis(result.P95Latency),
			result.ErrorRate(),
		); err != nil {
			return err
		}
	}
	return nil
}

// WriteCrossEnvReport renders baseline-versus-comparison percent diffs.
func (rw *ReportWriter) WriteCrossEnvReport(w io.Writer, report models.CrossEnvReport) error {
	if _, err := fmt.Fprintf(w, "# Environment Comparison %s\n\nBaseline: %s (error rate %.2f%%)\nComparison: %s (error rate %.2f%%)\n\n",
		report.RunID, report.BaselineName, report.BaselineErrorRate, report.ComparisonName, report.ComparisonErrorRate); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "| Method | Path | Throughput Diff (%) | Avg Latency Diff (%) | P95 Latency Diff (%) |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|--------|------|---------------------|----------------------|----------------------|"); err != nil {
		return err
	}
	for _, pair := range report.Pairs {
		if _, err := fmt.Fprintf(w, "| %s | %s | %.2f | %.2f | %.2f |\n",
			pair.Method,
			pair.Path,
			pair.ThroughputDiffPercent,
			pair.AvgLatencyDiffPercent,
			pair.P95LatencyDiffPercent,
		); err != nil {
			return err
		}
	}

	if len(report.BaselineOnly) > 0 {
		if _, err := fmt.Fprintf(w, "\nBaseline only: %v\n", report.BaselineOnly); err != nil {
			return err
		}
	}
	if len(report.ComparisonOnly) > 0 {
		if _, err := fmt.Fprintf(w, "\nComparison only: %v\n", report.ComparisonOnly); err != nil {
			return err
		}
	}
	return nil
}

func (rw *ReportWriter) writeDetail(w io.Writer, result models.BenchmarkResult) error {
	_, err := fmt.Fprintf(w, "\n## %s %s\n\n- Requests: %d (success %d, errors %d)\n- Throughput: %.2f req/s\n- Latency min/avg/max: %.2f / %.2f / %.2f ms\n- Percentiles p50/p90/p95/p99: %.2f / %.2f / %.2f / %.2f ms\n",
		result.Method,
		result.Path,
		result.TotalRequests,
		result.SuccessCount,
		result.ErrorCount,
		result.Throughput,
		durationMillis(result.MinLatency),
		durationMillis(result.AvgLatency),
		durationMillis(result.MaxLatency),
		durationMillis(result.P50Latency),
		durationMillis(result.P90Latency),
		durationMillis(result.P95Latency),
		durationMillis(result.P99Latency),
	)
	return err
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
