package models

import "time"

// AnalysisRequest identifies a metric series and the window to analyze.
type AnalysisRequest struct {
	SeriesName      string
	Source          string
	Start           time.Time
	End             time.Time
	IntervalMinutes int
}

// ForecastRequest extends an analysis window with a projection horizon.
type ForecastRequest struct {
	AnalysisRequest
	ForecastHours int
}

// CorrelationRequest names the two series whose relationship is analyzed.
type CorrelationRequest struct {
	PerformanceMetric string
	BusinessMetric    string
	Start             time.Time
	End               time.Time
	IntervalMinutes   int
}

// ImpactRequest drives incident impact analysis for a business metric.
type ImpactRequest struct {
	EventType      string
	BusinessMetric string
	Start          time.Time
	End            time.Time
	WindowHours    float64
}

// RoiRequest captures the before/after framing around a change.
type RoiRequest struct {
	PerformanceMetric  string
	BusinessMetric     string
	ChangeTime         time.Time
	BeforeHours        float64
	AfterHours         float64
	ImplementationCost float64
	ValuePerUnit       float64
}
