// Package bench executes repeatable load benchmarks over opaque operations
// and HTTP endpoint sets, and renders the results as Markdown reports.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vantagestack/telemetry-engine/internal/metrics"
	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/stats"
)

// Operation is an opaque benchmark target. A non-nil error counts as a
// failed invocation; the runner has no knowledge of HTTP, SQL, or any
// other protocol behind it.
type Operation func() error

// Variant names one of several alternative implementations of the same
// operation being compared under identical load.
type Variant struct {
	Name string
	Op   Operation
}

// LoadParams configures a benchmark run. Iterations selects the sequential
// mode; Users plus Duration selects the concurrent mode.
type LoadParams struct {
	Iterations int
	Users      int
	Duration   time.Duration
}

// Runner executes named operations and aggregates latency distributions.
type Runner struct {
	logger *slog.Logger
}

// NewRunner constructs a benchmark runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// RunSequential invokes op iterations times back to back. Failed
// invocations are counted and excluded from latency statistics but never
// abort the remaining iterations.
func (r *Runner) RunSequential(name string, iterations int, op Operation) (models.BenchmarkResult, error) {
	if name == "" {
		return models.BenchmarkResult{}, fmt.Errorf("benchmark name cannot be empty")
	}
	if iterations <= 0 {
		return models.BenchmarkResult{}, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	if op == nil {
		return models.BenchmarkResult{}, fmt.Errorf("benchmark %s: operation cannot be nil", name)
	}

	latencies := make([]time.Duration, 0, iterations)
	errorCount := 0
	started := time.Now()
	for i := 0; i < iterations; i++ {
		invokeStart := time.Now()
		if err := op(); err != nil {
			errorCount++
			continue
		}
		latencies = append(latencies, time.Since(invokeStart))
	}
	elapsed := time.Since(started)

	result := buildResult(name, latencies, errorCount, elapsed)
	result.Iterations = iterations
	metrics.ObserveBenchmarkRun(name, result.SuccessCount, result.ErrorCount, elapsed)
	return result, nil
}

// RunConcurrent simulates users concurrent callers, each invoking op in a
// loop until duration elapses. A shared stop flag is checked before each
// iteration; in-flight invocations are allowed to complete, so a hung
// operation extends the wall-clock time beyond the requested duration.
// Each worker records into its own buffer; buffers are merged at the end.
func (r *Runner) RunConcurrent(ctx context.Context, name string, users int, duration time.Duration, op Operation) (models.BenchmarkResult, error) {
	if name == "" {
		return models.BenchmarkResult{}, fmt.Errorf("benchmark name cannot be empty")
	}
	if users <= 0 {
		return models.BenchmarkResult{}, fmt.Errorf("users must be positive, got %d", users)
	}
	if duration <= 0 {
		return models.BenchmarkResult{}, fmt.Errorf("duration must be positive, got %s", duration)
	}
	if op == nil {
		return models.BenchmarkResult{}, fmt.Errorf("benchmark %s: operation cannot be nil", name)
	}

	var stop atomic.Bool
	timer := time.AfterFunc(duration, func() { stop.Store(true) })
	defer timer.Stop()
	cancelWatch := context.AfterFunc(ctx, func() { stop.Store(true) })
	defer cancelWatch()

	type workerBuffer struct {
		latencies []time.Duration
		errors    int
	}

	buffers := make([]workerBuffer, users)
	var wg sync.WaitGroup
	started := time.Now()
	for w := 0; w < users; w++ {
		wg.Add(1)
		go func(buf *workerBuffer) {
			defer wg.Done()
			for !stop.Load() {
				invokeStart := time.Now()
				if err := op(); err != nil {
					buf.errors++
					continue
				}
				buf.latencies = append(buf.latencies, time.Since(invokeStart))
			}
		}(&buffers[w])
	}
	wg.Wait()
	elapsed := time.Since(started)

	var latencies []time.Duration
	errorCount := 0
	for _, buf := range buffers {
		latencies = append(latencies, buf.latencies...)
		errorCount += buf.errors
	}

	result := buildResult(name, latencies, errorCount, elapsed)
	result.Duration = elapsed
	r.logger.Debug("concurrent benchmark finished",
		slog.String("name", name),
		slog.Int("users", users),
		slog.Int("requests", result.TotalRequests),
		slog.Duration("elapsed", elapsed))
	metrics.ObserveBenchmarkRun(name, result.SuccessCount, result.ErrorCount, elapsed)
	return result, nil
}

// Compare runs every variant under the same load parameters and ranks them
// by average latency. The variant with the strictly lowest average wins;
// exact ties keep the earlier variant in input order.
func (r *Runner) Compare(ctx context.Context, variants []Variant, params LoadParams) (models.ComparisonReport, error) {
	if len(variants) == 0 {
		return models.ComparisonReport{}, fmt.Errorf("no variants to compare")
	}
	seen := make(map[string]struct{}, len(variants))
	for _, variant := range variants {
		if variant.Name == "" {
			return models.ComparisonReport{}, fmt.Errorf("variant name cannot be empty")
		}
		if _, dup := seen[variant.Name]; dup {
			return models.ComparisonReport{}, fmt.Errorf("duplicate variant name %q", variant.Name)
		}
		seen[variant.Name] = struct{}{}
	}
	if params.Iterations <= 0 && (params.Users <= 0 || params.Duration <= 0) {
		return models.ComparisonReport{}, fmt.Errorf("load parameters must set iterations or users+duration")
	}

	report := models.ComparisonReport{RunID: uuid.NewString()}
	bestAvg := time.Duration(-1)
	for _, variant := range variants {
		var (
			result models.BenchmarkResult
			err    error
		)
		if params.Iterations > 0 {
			result, err = r.RunSequential(variant.Name, params.Iterations, variant.Op)
		} else {
			result, err = r.RunConcurrent(ctx, variant.Name, params.Users, params.Duration, variant.Op)
		}
		if err != nil {
			return models.ComparisonReport{}, fmt.Errorf("variant %s: %w", variant.Name, err)
		}
		report.Variants = append(report.Variants, result)
		if bestAvg < 0 || result.AvgLatency < bestAvg {
			bestAvg = result.AvgLatency
			report.Best = variant.Name
		}
	}
	return report, nil
}

func buildResult(name string, latencies []time.Duration, errorCount int, elapsed time.Duration) models.BenchmarkResult {
	result := models.BenchmarkResult{
		Name:          name,
		TotalRequests: len(latencies) + errorCount,
		SuccessCount:  len(latencies),
		ErrorCount:    errorCount,
	}
	if seconds := elapsed.Seconds(); seconds > 0 {
		result.Throughput = float64(result.SuccessCount) / seconds
	}
	if len(latencies) == 0 {
		return result
	}

	values := make([]float64, len(latencies))
	var sum time.Duration
	min, max := latencies[0], latencies[0]
	for i, latency := range latencies {
		values[i] = float64(latency)
		sum += latency
		if latency < min {
			min = latency
		}
		if latency > max {
			max = latency
		}
	}

	result.MinLatency = min
	result.MaxLatency = max
	result.AvgLatency = sum / time.Duration(len(latencies))
	result.P50Latency = time.Duration(stats.Percentile(values, 50))
	result.P90Latency = time.Duration(stats.Percentile(values, 90))
	result.P95Latency = time.Duration(stats.Percentile(values, 95))
	result.P99Latency = time.Duration(stats.Percentile(values, 99))
	return result
}
