package models

import "time"

// BenchmarkResult holds latency and throughput statistics for one named
// variant or endpoint after a benchmark run.
type BenchmarkResult struct {
	Name          string
	Method        string
	Path          string
	Iterations    int
	Duration      time.Duration
	TotalRequests int
	SuccessCount  int
	ErrorCount    int
	// Throughput is successful requests per elapsed second.
	Throughput float64
	MinLatency time.Duration
	MaxLatency time.Duration
	AvgLatency time.Duration
	P50Latency time.Duration
	P90Latency time.Duration
	P95Latency time.Duration
	P99Latency time.Duration
}

// ErrorRate returns the failed fraction of all requests as a percentage.
func (r BenchmarkResult) ErrorRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.ErrorCount) / float64(r.TotalRequests) * 100
}

// ComparisonReport ranks benchmark variants run under identical load.
type ComparisonReport struct {
	RunID    string
	Variants []BenchmarkResult
	// Best names the variant with the lowest average latency. Exact ties
	// keep the earlier variant in input order.
	Best string
}

// EndpointDiff pairs one endpoint across two environments.
type EndpointDiff struct {
	Method                string
	Path                  string
	Baseline              BenchmarkResult
	Comparison            BenchmarkResult
	ThroughputDiffPercent float64
	AvgLatencyDiffPercent float64
	P95LatencyDiffPercent float64
}

// CrossEnvReport compares baseline and comparison endpoint sets run under
// identical load parameters.
type CrossEnvReport struct {
	RunID               string
	BaselineName        string
	ComparisonName      string
	Pairs               []EndpointDiff
	BaselineOnly        []string
	ComparisonOnly      []string
	BaselineErrorRate   float64
	ComparisonErrorRate float64
	StartedAt           time.Time
	Elapsed             time.Duration
}
