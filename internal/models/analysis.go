package models

import "time"

// TrendDirection classifies the fitted slope of a series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendResult summarises a linear fit over bucket averages. Confidence is
// the absolute Pearson correlation between bucket index and bucket average.
type TrendResult struct {
	Direction  TrendDirection
	Slope      float64
	Confidence float64
}

// AnomalyRecord flags a raw sample exceeding the dynamic threshold
// max(2*avg, p95) computed over the analyzed window.
type AnomalyRecord struct {
	Timestamp             time.Time
	Value                 float64
	Threshold             float64
	PercentAboveThreshold float64
}

// AnomalyReport bundles the anomalies with the threshold that produced them.
type AnomalyReport struct {
	Threshold float64
	Anomalies []AnomalyRecord
}

// ForecastPoint is one projected future value of a series.
type ForecastPoint struct {
	Timestamp time.Time
	Value     float64
}

// CorrelationStrength buckets |coefficient| into interpretable classes.
type CorrelationStrength string

const (
	StrengthWeak     CorrelationStrength = "weak"
	StrengthModerate CorrelationStrength = "moderate"
	StrengthStrong   CorrelationStrength = "strong"
)

// CorrelationDirection is the sign of the correlation coefficient.
type CorrelationDirection string

const (
	DirectionPositive CorrelationDirection = "positive"
	DirectionNegative CorrelationDirection = "negative"
)

// CorrelationResult quantifies the relationship between a performance
// metric and a business metric over shared time windows.
type CorrelationResult struct {
	PerformanceMetric string
	BusinessMetric    string
	Coefficient       float64
	Strength          CorrelationStrength
	Direction         CorrelationDirection
	// ImpactEstimate is the OLS slope of the business metric on the
	// performance metric: expected business delta per 1-unit change.
	ImpactEstimate float64
	PairedWindows  int
}

// ImpactSeverity buckets |percentChange| for a single incident.
type ImpactSeverity string

const (
	SeverityMinimal  ImpactSeverity = "minimal"
	SeverityModerate ImpactSeverity = "moderate"
	SeveritySevere   ImpactSeverity = "severe"
)

// IncidentImpact compares the business metric before and after one incident.
type IncidentImpact struct {
	IncidentID     string
	IncidentTime   time.Time
	BaselineWindow TimeRange
	ImpactWindow   TimeRange
	BaselineAvg    float64
	ImpactAvg      float64
	PercentChange  float64
	Severity       ImpactSeverity
}

// ImpactReport aggregates incident impacts across all analyzed incidents.
type ImpactReport struct {
	Metric               string
	Incidents            []IncidentImpact
	TotalImpact          float64
	AvgImpactPerIncident float64
}

// RoiResult captures before/after value attribution for a change.
type RoiResult struct {
	PerformanceImprovementPct float64
	BusinessImprovementPct    float64
	BusinessValueDelta        float64
	RoiPct                    float64
	// PaybackPeriodHours is +Inf when the hourly value rate is not positive.
	PaybackPeriodHours float64
}
