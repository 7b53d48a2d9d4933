package aggregate

import (
	"testing"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

func sampleAt(ts time.Time, value float64) models.Sample {
	return models.Sample{Name: "latency_ms", Value: value, Timestamp: ts}
}

func TestSummarizeSingleBucket(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := make([]models.Sample, 0, 5)
	for i, v := range []float64{10, 20, 30, 40, 50} {
		samples = append(samples, sampleAt(base.Add(time.Duration(i)*time.Minute), v))
	}

	summary := Summarize("latency_ms", samples, models.TimeRange{Start: base, End: base.Add(5 * time.Minute)}, 5)

	if len(summary.Buckets) != 1 {
		t.Fatalf("expected one bucket, got %d", len(summary.Buckets))
	}
	if summary.Avg != 30 {
		t.Fatalf("expected avg 30, got %f", summary.Avg)
	}
	if summary.Median != 30 {
		t.Fatalf("expected median 30, got %f", summary.Median)
	}
	if summary.P95 != 50 {
		t.Fatalf("expected p95 50, got %f", summary.P95)
	}
	if summary.Min != 10 || summary.Max != 50 {
		t.Fatalf("expected min 10 max 50, got %f/%f", summary.Min, summary.Max)
	}

	bucket, ok := summary.Buckets[base]
	if !ok {
		t.Fatalf("expected bucket keyed at %v, keys: %v", base, summary.Buckets)
	}
	if bucket.Count != 5 || bucket.Avg != 30 {
		t.Fatalf("unexpected bucket %+v", bucket)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	summary := Summarize("latency_ms", nil, models.TimeRange{}, 5)
	if summary.Count != 0 || summary.Min != 0 || summary.Max != 0 || summary.Avg != 0 || summary.Median != 0 || summary.P95 != 0 {
		t.Fatalf("expected all-zero summary, got %+v", summary)
	}
	if len(summary.Buckets) != 0 {
		t.Fatalf("expected no buckets, got %d", len(summary.Buckets))
	}
}

func TestBucketStartTruncatesSeconds(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 7, 42, 999, time.UTC)
	got := BucketStart(ts, 5)
	want := time.Date(2025, 3, 10, 12, 5, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// Re-bucketing the same series from different range offsets must produce
// keys that are interval multiples from the epoch anchor; the correlation
// join depends on two independently aggregated series sharing keys.
func TestBucketStartEpochAnchored(t *testing.T) {
	const intervalMinutes = 7
	intervalMillis := int64(intervalMinutes) * 60_000

	base := time.Date(2025, 6, 1, 9, 13, 27, 0, time.UTC)
	for offset := 0; offset < 25; offset++ {
		ts := base.Add(time.Duration(offset) * 3 * time.Minute)
		start := BucketStart(ts, intervalMinutes)
		if start.UnixMilli()%intervalMillis != 0 {
			t.Fatalf("bucket start %v is not an interval multiple from the epoch", start)
		}
		if start.After(ts) {
			t.Fatalf("bucket start %v is after sample time %v", start, ts)
		}
		if ts.Sub(start) >= time.Duration(intervalMinutes)*time.Minute+time.Minute {
			t.Fatalf("sample %v fell outside its bucket starting %v", ts, start)
		}
	}
}

func TestBucketizeSplitsAcrossWindows(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := []models.Sample{
		sampleAt(base, 1),
		sampleAt(base.Add(4*time.Minute), 2),
		sampleAt(base.Add(5*time.Minute), 3),
		sampleAt(base.Add(11*time.Minute), 4),
	}

	buckets := Bucketize(samples, 5)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	first := buckets[base]
	if first.Count != 2 || first.Min != 1 || first.Max != 2 {
		t.Fatalf("unexpected first bucket %+v", first)
	}

	ordered := SortedBuckets(buckets)
	for i := 1; i < len(ordered); i++ {
		if !ordered[i-1].Start.Before(ordered[i].Start) {
			t.Fatalf("buckets not sorted by start time: %+v", ordered)
		}
	}
}
