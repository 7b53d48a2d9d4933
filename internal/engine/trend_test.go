package engine

import (
	"math"
	"testing"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

func seriesAt(base time.Time, spacing time.Duration, values ...float64) []models.Sample {
	samples := make([]models.Sample, 0, len(values))
	for i, v := range values {
		samples = append(samples, models.Sample{
			Name:      "latency_ms",
			Value:     v,
			Timestamp: base.Add(time.Duration(i) * spacing),
		})
	}
	return samples
}

func TestAnalyzeTrendIncreasing(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := seriesAt(base, 5*time.Minute, 10, 20, 30, 40, 50)

	result := NewTrendDetector().AnalyzeTrend(samples, 5)
	if result.Direction != models.TrendIncreasing {
		t.Fatalf("expected increasing trend, got %s", result.Direction)
	}
	if math.Abs(result.Slope-10) > 1e-9 {
		t.Fatalf("expected slope 10 per bucket, got %f", result.Slope)
	}
	if math.Abs(result.Confidence-1) > 1e-9 {
		t.Fatalf("expected confidence 1 for a perfect line, got %f", result.Confidence)
	}
}

func TestAnalyzeTrendFewerThanTwoBuckets(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := seriesAt(base, time.Minute, 10, 20, 30)

	// All three samples land in one 5-minute bucket.
	result := NewTrendDetector().AnalyzeTrend(samples, 5)
	if result.Direction != models.TrendStable || result.Slope != 0 || result.Confidence != 0 {
		t.Fatalf("expected stable/0/0 for a single bucket, got %+v", result)
	}

	empty := NewTrendDetector().AnalyzeTrend(nil, 5)
	if empty.Direction != models.TrendStable || empty.Slope != 0 || empty.Confidence != 0 {
		t.Fatalf("expected stable/0/0 for empty input, got %+v", empty)
	}
}

func TestAnalyzeTrendStableWithinEpsilon(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := seriesAt(base, 5*time.Minute, 100, 100.005, 100.01, 100.015)

	result := NewTrendDetector().AnalyzeTrend(samples, 5)
	if result.Direction != models.TrendStable {
		t.Fatalf("expected stable below slope epsilon, got %s slope %f", result.Direction, result.Slope)
	}
}

func TestDetectAnomaliesThresholdAndExcess(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	values := make([]float64, 20)
	for i := range values {
		values[i] = 10
	}
	values[19] = 55
	samples := seriesAt(base, time.Minute, values...)

	// avg = 12.25 so 2*avg = 24.5; p95 lands on the second-largest value
	// (10), leaving 2*avg as the effective threshold.
	report := NewTrendDetector().DetectAnomalies(samples)
	if math.Abs(report.Threshold-24.5) > 1e-9 {
		t.Fatalf("expected threshold 24.5, got %f", report.Threshold)
	}
	if len(report.Anomalies) != 1 {
		t.Fatalf("expected exactly one anomaly, got %d", len(report.Anomalies))
	}
	anomaly := report.Anomalies[0]
	if anomaly.Value != 55 {
		t.Fatalf("expected value 55 flagged, got %f", anomaly.Value)
	}
	wantExcess := (55 - 24.5) / 24.5 * 100
	if math.Abs(anomaly.PercentAboveThreshold-wantExcess) > 1e-9 {
		t.Fatalf("expected %.4f%% excess, got %f", wantExcess, anomaly.PercentAboveThreshold)
	}
}

func TestDetectAnomaliesEmptyInput(t *testing.T) {
	report := NewTrendDetector().DetectAnomalies(nil)
	if report.Threshold != 0 || len(report.Anomalies) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestForecastLinearExtrapolation(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// One sample per 5-minute bucket, rising 5 per bucket: slope 1/minute.
	samples := seriesAt(base, 5*time.Minute, 0, 5, 10, 15)

	points := NewForecaster().Forecast(samples, 5, 1)
	if len(points) != 12 {
		t.Fatalf("expected 12 projected points for one hour at 5m, got %d", len(points))
	}
	first := points[0]
	wantTime := base.Add(20 * time.Minute)
	if !first.Timestamp.Equal(wantTime) {
		t.Fatalf("expected first projection at %v, got %v", wantTime, first.Timestamp)
	}
	if math.Abs(first.Value-20) > 1e-9 {
		t.Fatalf("expected projected value 20, got %f", first.Value)
	}
	last := points[len(points)-1]
	if math.Abs(last.Value-75) > 1e-9 {
		t.Fatalf("expected final projection 75, got %f", last.Value)
	}
}

func TestForecastDegenerateInputs(t *testing.T) {
	if points := NewForecaster().Forecast(nil, 5, 2); points != nil {
		t.Fatalf("expected nil for empty series, got %v", points)
	}
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := seriesAt(base, time.Minute, 10)
	if points := NewForecaster().Forecast(samples, 0, 2); points != nil {
		t.Fatalf("expected nil for non-positive interval, got %v", points)
	}
}
