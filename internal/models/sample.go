package models

import "time"

// Sample is a single timestamped metric observation. Samples are immutable
// once recorded; every analysis reads them and allocates fresh results.
type Sample struct {
	Name      string
	Value     float64
	Timestamp time.Time
	Unit      string
	Source    string
	Labels    map[string]string
}

// IncidentEvent is a discrete tagged occurrence (deployment, outage, alert)
// consumed by the impact analyzer.
type IncidentEvent struct {
	ID         string
	Timestamp  time.Time
	Properties map[string]string
}

// TimeRange bounds the sample window for an analysis.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// IntervalBucket holds summary statistics for one fixed-width time window.
// Buckets are derived on every call, never persisted.
type IntervalBucket struct {
	Start  time.Time
	Count  int
	Min    float64
	Max    float64
	Avg    float64
	Median float64
	P95    float64
}

// SeriesSummary aggregates a whole queried range alongside its buckets.
type SeriesSummary struct {
	Name      string
	Range     TimeRange
	Count     int
	Min       float64
	Max       float64
	Avg       float64
	Median    float64
	P95       float64
	Buckets   map[time.Time]IntervalBucket
	IntervalM int
}
