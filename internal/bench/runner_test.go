package bench

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRunSequentialCountsFailures(t *testing.T) {
	runner := NewRunner(nil)
	calls := 0
	op := func() error {
		calls++
		if calls%3 == 0 {
			return errors.New("boom")
		}
		return nil
	}

	result, err := runner.RunSequential("flaky", 9, op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalRequests != 9 {
		t.Fatalf("expected 9 total requests, got %d", result.TotalRequests)
	}
	if result.ErrorCount != 3 || result.SuccessCount != 6 {
		t.Fatalf("expected 3 errors / 6 successes, got %d/%d", result.ErrorCount, result.SuccessCount)
	}
	if result.MinLatency <= 0 || result.AvgLatency < result.MinLatency || result.MaxLatency < result.AvgLatency {
		t.Fatalf("latency aggregates inconsistent: %+v", result)
	}
	if result.Throughput <= 0 {
		t.Fatalf("expected positive throughput, got %f", result.Throughput)
	}
}

func TestRunSequentialValidation(t *testing.T) {
	runner := NewRunner(nil)
	if _, err := runner.RunSequential("", 10, func() error { return nil }); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := runner.RunSequential("x", 0, func() error { return nil }); err == nil {
		t.Fatal("expected error for zero iterations")
	}
	if _, err := runner.RunSequential("x", 10, nil); err == nil {
		t.Fatal("expected error for nil operation")
	}
}

func TestRunConcurrentStopsAfterDuration(t *testing.T) {
	runner := NewRunner(nil)
	op := func() error {
		time.Sleep(time.Millisecond)
		return nil
	}

	started := time.Now()
	result, err := runner.RunConcurrent(context.Background(), "steady", 4, 100*time.Millisecond, op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("run took far too long: %s", elapsed)
	}
	if result.TotalRequests == 0 {
		t.Fatal("expected at least one invocation")
	}
	if result.ErrorCount != 0 {
		t.Fatalf("expected no errors, got %d", result.ErrorCount)
	}
	if result.P99Latency < result.P50Latency {
		t.Fatalf("p99 %s below p50 %s", result.P99Latency, result.P50Latency)
	}
}

func TestRunConcurrentHonorsContextCancel(t *testing.T) {
	runner := NewRunner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	_, err := runner.RunConcurrent(ctx, "cancelled", 2, 10*time.Second, func() error {
		time.Sleep(time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("cancel did not stop the run, elapsed %s", elapsed)
	}
}

func TestCompareIdenticalVariants(t *testing.T) {
	runner := NewRunner(nil)
	op := func() error {
		time.Sleep(200 * time.Microsecond)
		return nil
	}

	report, err := runner.Compare(context.Background(), []Variant{
		{Name: "alpha", Op: op},
		{Name: "beta", Op: op},
	}, LoadParams{Iterations: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected a run ID")
	}
	if len(report.Variants) != 2 {
		t.Fatalf("expected 2 variant results, got %d", len(report.Variants))
	}
	if report.Best != "alpha" && report.Best != "beta" {
		t.Fatalf("best must be one of the variants, got %q", report.Best)
	}
}

func TestCompareValidation(t *testing.T) {
	runner := NewRunner(nil)
	op := func() error { return nil }

	if _, err := runner.Compare(context.Background(), nil, LoadParams{Iterations: 1}); err == nil {
		t.Fatal("expected error for no variants")
	}
	if _, err := runner.Compare(context.Background(), []Variant{{Name: "", Op: op}}, LoadParams{Iterations: 1}); err == nil {
		t.Fatal("expected error for empty variant name")
	}
	if _, err := runner.Compare(context.Background(), []Variant{{Name: "a", Op: op}, {Name: "a", Op: op}}, LoadParams{Iterations: 1}); err == nil {
		t.Fatal("expected error for duplicate variant name")
	}
	if _, err := runner.Compare(context.Background(), []Variant{{Name: "a", Op: op}}, LoadParams{}); err == nil {
		t.Fatal("expected error for unset load parameters")
	}
}

func TestCompareRanksByAverageLatency(t *testing.T) {
	runner := NewRunner(nil)
	fast := func() error { return nil }
	slow := func() error {
		time.Sleep(2 * time.Millisecond)
		return nil
	}

	report, err := runner.Compare(context.Background(), []Variant{
		{Name: "slow", Op: slow},
		{Name: "fast", Op: fast},
	}, LoadParams{Iterations: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Best != "fast" {
		t.Fatalf("expected fast to win, got %q (%+v)", report.Best, report.Variants)
	}
}

func TestBuildResultEmptyLatencies(t *testing.T) {
	result := buildResult("dead", nil, 5, time.Second)
	if result.TotalRequests != 5 || result.SuccessCount != 0 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if result.Throughput != 0 {
		t.Fatalf("expected zero throughput with no successes, got %f", result.Throughput)
	}
	if result.AvgLatency != 0 || result.P99Latency != 0 {
		t.Fatalf("expected zero latency stats, got %+v", result)
	}
	if fmt.Sprintf("%.2f", result.ErrorRate()) != "100.00" {
		t.Fatalf("expected 100%% error rate, got %f", result.ErrorRate())
	}
}
