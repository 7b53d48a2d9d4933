// Package engine implements the analysis components of the telemetry
// engine: trend and anomaly detection, forecasting, cross-metric
// correlation, incident impact, and ROI attribution. Every analyzer is a
// pure computation over caller-supplied samples and is safe for concurrent
// use.
package engine

import (
	"math"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/aggregate"
	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/stats"
)

// stableSlopeEpsilon bounds the slope magnitude still reported as stable.
const stableSlopeEpsilon = 0.01

// TrendDetector fits linear trends over bucket averages and flags samples
// exceeding a dynamic threshold.
type TrendDetector struct{}

// NewTrendDetector creates a trend and anomaly detector.
func NewTrendDetector() *TrendDetector {
	return &TrendDetector{}
}

// AnalyzeTrend fits bucket averages against bucket index by ordinary least
// squares. Confidence is the absolute Pearson correlation of the same
// pairs. Fewer than two buckets always yield a stable zero-slope result.
func (d *TrendDetector) AnalyzeTrend(samples []models.Sample, intervalMinutes int) models.TrendResult {
	buckets := aggregate.SortedBuckets(aggregate.Bucketize(samples, intervalMinutes))
	if len(buckets) < 2 {
		return models.TrendResult{Direction: models.TrendStable}
	}

	xs := make([]float64, len(buckets))
	ys := make([]float64, len(buckets))
	for i, bucket := range buckets {
		xs[i] = float64(i)
		ys[i] = bucket.Avg
	}

	slope, _ := stats.LinearRegression(xs, ys)
	confidence := math.Abs(stats.PearsonCorrelation(xs, ys))

	direction := models.TrendStable
	switch {
	case slope > stableSlopeEpsilon:
		direction = models.TrendIncreasing
	case slope < -stableSlopeEpsilon:
		direction = models.TrendDecreasing
	}

	return models.TrendResult{Direction: direction, Slope: slope, Confidence: confidence}
}

// DetectAnomalies flags raw samples above max(2*avg, p95) computed over the
// full queried window. The threshold is derived from the given samples on
// every call; callers analyzing a different range get a fresh threshold.
func (d *TrendDetector) DetectAnomalies(samples []models.Sample) models.AnomalyReport {
	if len(samples) == 0 {
		return models.AnomalyReport{}
	}

	values := make([]float64, len(samples))
	for i, sample := range samples {
		values[i] = sample.Value
	}

	threshold := math.Max(2*stats.Mean(values), stats.Percentile(values, 95))
	report := models.AnomalyReport{Threshold: threshold}

	for _, sample := range samples {
		if sample.Value <= threshold {
			continue
		}
		excess := 0.0
		if threshold != 0 {
			excess = (sample.Value - threshold) / threshold * 100
		}
		report.Anomalies = append(report.Anomalies, models.AnomalyRecord{
			Timestamp:             sample.Timestamp,
			Value:                 sample.Value,
			Threshold:             threshold,
			PercentAboveThreshold: excess,
		})
	}
	return report
}

func minutesSince(anchor, ts time.Time) float64 {
	return ts.Sub(anchor).Minutes()
}
