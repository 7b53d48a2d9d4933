package bench

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/stats"
)

// CompareEnvironments runs the baseline and comparison endpoint sets under
// identical load parameters, pairs results by (method, path), and computes
// percent differences in throughput and latency per pair plus an error rate
// per side. Endpoints present in only one environment are listed, not
// treated as errors.
func (b *HTTPBenchmarker) CompareEnvironments(ctx context.Context, baseline, comparison EnvironmentSet, params HTTPLoadParams) (models.CrossEnvReport, error) {
	started := time.Now()

	baseResults, err := b.RunEndpoints(ctx, baseline, params)
	if err != nil {
		return models.CrossEnvReport{}, fmt.Errorf("baseline %s: %w", baseline.Name, err)
	}
	compResults, err := b.RunEndpoints(ctx, comparison, params)
	if err != nil {
		return models.CrossEnvReport{}, fmt.Errorf("comparison %s: %w", comparison.Name, err)
	}

	report := models.CrossEnvReport{
		RunID:          uuid.NewString(),
		BaselineName:   baseline.Name,
		ComparisonName: comparison.Name,
		StartedAt:      started.UTC(),
		Elapsed:        time.Since(started),
	}

	compByKey := make(map[string]models.BenchmarkResult, len(compResults))
	for _, result := range compResults {
		compByKey[endpointKey(result.Method, result.Path)] = result
	}

	matched := make(map[string]struct{})
	for _, base := range baseResults {
		key := endpointKey(base.Method, base.Path)
		comp, ok := compByKey[key]
		if !ok {
			report.BaselineOnly = append(report.BaselineOnly, key)
			continue
		}
		matched[key] = struct{}{}
		report.Pairs = append(report.Pairs, models.EndpointDiff{
			Method:                base.Method,
			Path:                  base.Path,
			Baseline:              base,
			Comparison:            comp,
			ThroughputDiffPercent: stats.PercentChange(base.Throughput, comp.Throughput),
			AvgLatencyDiffPercent: stats.PercentChange(float64(base.AvgLatency), float64(comp.AvgLatency)),
			P95LatencyDiffPercent: stats.PercentChange(float64(base.P95Latency), float64(comp.P95Latency)),
		})
	}
	for _, comp := range compResults {
		key := endpointKey(comp.Method, comp.Path)
		if _, ok := matched[key]; !ok {
			report.ComparisonOnly = append(report.ComparisonOnly, key)
		}
	}
	sort.Slice(report.Pairs, func(i, j int) bool {
		return endpointKey(report.Pairs[i].Method, report.Pairs[i].Path) < endpointKey(report.Pairs[j].Method, report.Pairs[j].Path)
	})

	report.BaselineErrorRate = sideErrorRate(baseResults)
	report.ComparisonErrorRate = sideErrorRate(compResults)
	return report, nil
}

func sideErrorRate(results []models.BenchmarkResult) float64 {
	total, errors := 0, 0
	for _, result := range results {
		total += result.TotalRequests
		errors += result.ErrorCount
	}
	if total == 0 {
		return 0
	}
	return float64(errors) / float64(total) * 100
}
