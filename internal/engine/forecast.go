package engine

import (
	"time"

	"github.com/vantagestack/telemetry-engine/internal/aggregate"
	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/stats"
)

// Forecaster extrapolates a fitted linear model beyond the observed range.
// The projection is strictly linear: no damping, no seasonality.
type Forecaster struct{}

// NewForecaster creates a linear forecaster.
func NewForecaster() *Forecaster {
	return &Forecaster{}
}

// Forecast fits slope and intercept over (minutes since first bucket,
// bucket average) pairs and projects forecastHours*(60/interval) future
// points spaced intervalMinutes apart. Empty input yields no points.
func (f *Forecaster) Forecast(samples []models.Sample, intervalMinutes, forecastHours int) []models.ForecastPoint {
	if intervalMinutes <= 0 || forecastHours <= 0 {
		return nil
	}

	buckets := aggregate.SortedBuckets(aggregate.Bucketize(samples, intervalMinutes))
	if len(buckets) == 0 {
		return nil
	}

	anchor := buckets[0].Start
	xs := make([]float64, len(buckets))
	ys := make([]float64, len(buckets))
	for i, bucket := range buckets {
		xs[i] = minutesSince(anchor, bucket.Start)
		ys[i] = bucket.Avg
	}
	slope, intercept := stats.LinearRegression(xs, ys)

	steps := forecastHours * (60 / intervalMinutes)
	if steps <= 0 {
		return nil
	}

	last := buckets[len(buckets)-1].Start
	points := make([]models.ForecastPoint, 0, steps)
	for step := 1; step <= steps; step++ {
		ts := last.Add(time.Duration(step*intervalMinutes) * time.Minute)
		points = append(points, models.ForecastPoint{
			Timestamp: ts,
			Value:     slope*minutesSince(anchor, ts) + intercept,
		})
	}
	return points
}
