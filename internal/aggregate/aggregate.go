// Package aggregate buckets raw samples into fixed-width time windows and
// computes per-window and whole-range summary statistics. Bucket starts are
// anchored at the Unix epoch so two independently bucketed series share
// identical keys at the same interval width.
package aggregate

import (
	"sort"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/stats"
)

// BucketStart maps a timestamp onto the start of its interval window. The
// timestamp is truncated to minute resolution first, then shifted down to
// the nearest interval multiple counted in minutes since the epoch.
func BucketStart(ts time.Time, intervalMinutes int) time.Time {
	if intervalMinutes <= 0 {
		intervalMinutes = 1
	}
	millis := ts.Truncate(time.Minute).UnixMilli()
	intervalMillis := int64(intervalMinutes) * 60_000
	remainder := millis % intervalMillis
	if remainder < 0 {
		remainder += intervalMillis
	}
	return time.UnixMilli(millis - remainder).UTC()
}

// Bucketize groups samples into interval windows keyed by bucket start.
func Bucketize(samples []models.Sample, intervalMinutes int) map[time.Time]models.IntervalBucket {
	grouped := make(map[time.Time][]float64)
	for _, sample := range samples {
		key := BucketStart(sample.Timestamp, intervalMinutes)
		grouped[key] = append(grouped[key], sample.Value)
	}

	buckets := make(map[time.Time]models.IntervalBucket, len(grouped))
	for start, values := range grouped {
		buckets[start] = summarizeValues(start, values)
	}
	return buckets
}

// Summarize computes the whole-range statistics plus per-interval buckets
// for a series. An empty sample set yields an all-zero summary, not an error.
func Summarize(name string, samples []models.Sample, rng models.TimeRange, intervalMinutes int) models.SeriesSummary {
	summary := models.SeriesSummary{
		Name:      name,
		Range:     rng,
		IntervalM: intervalMinutes,
		Buckets:   Bucketize(samples, intervalMinutes),
	}
	if len(samples) == 0 {
		return summary
	}

	values := make([]float64, len(samples))
	for i, sample := range samples {
		values[i] = sample.Value
	}

	summary.Count = len(values)
	summary.Min = minOf(values)
	summary.Max = maxOf(values)
	summary.Avg = stats.Mean(values)
	summary.Median = stats.Median(values)
	summary.P95 = stats.Percentile(values, 95)
	return summary
}

// SortedBuckets returns the buckets ordered by start time.
func SortedBuckets(buckets map[time.Time]models.IntervalBucket) []models.IntervalBucket {
	ordered := make([]models.IntervalBucket, 0, len(buckets))
	for _, bucket := range buckets {
		ordered = append(ordered, bucket)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})
	return ordered
}

func summarizeValues(start time.Time, values []float64) models.IntervalBucket {
	return models.IntervalBucket{
		Start:  start,
		Count:  len(values),
		Min:    minOf(values),
		Max:    maxOf(values),
		Avg:    stats.Mean(values),
		Median: stats.Median(values),
		P95:    stats.Percentile(values, 95),
	}
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
