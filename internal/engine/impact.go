package engine

import (
	"math"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/stats"
)

// ImpactAnalyzer measures how incidents moved a business metric by
// comparing a baseline window before each incident against an impact
// window after it.
type ImpactAnalyzer struct{}

// NewImpactAnalyzer creates an incident impact analyzer.
func NewImpactAnalyzer() *ImpactAnalyzer {
	return &ImpactAnalyzer{}
}

// Analyze computes per-incident impact over windowHours on each side of the
// incident time: baseline [t-w, t), impact (t, t+w]. Windows with no data
// average to zero rather than being skipped, so callers should pre-filter
// incidents that have no surrounding samples.
func (a *ImpactAnalyzer) Analyze(incidents []models.IncidentEvent, bizSamples []models.Sample, windowHours float64) models.ImpactReport {
	report := models.ImpactReport{}
	window := time.Duration(windowHours * float64(time.Hour))

	for _, incident := range incidents {
		baseline := models.TimeRange{Start: incident.Timestamp.Add(-window), End: incident.Timestamp}
		impactWin := models.TimeRange{Start: incident.Timestamp, End: incident.Timestamp.Add(window)}

		// Baseline is [t-w, t); impact is (t, t+w].
		baselineAvg := windowAverage(bizSamples, func(ts time.Time) bool {
			return !ts.Before(baseline.Start) && ts.Before(incident.Timestamp)
		})
		impactAvg := windowAverage(bizSamples, func(ts time.Time) bool {
			return ts.After(incident.Timestamp) && !ts.After(impactWin.End)
		})

		percentChange := stats.PercentChange(baselineAvg, impactAvg)

		report.Incidents = append(report.Incidents, models.IncidentImpact{
			IncidentID:     incident.ID,
			IncidentTime:   incident.Timestamp,
			BaselineWindow: baseline,
			ImpactWindow:   impactWin,
			BaselineAvg:    baselineAvg,
			ImpactAvg:      impactAvg,
			PercentChange:  percentChange,
			Severity:       classifySeverity(percentChange),
		})
		report.TotalImpact += percentChange
	}

	if len(report.Incidents) > 0 {
		report.AvgImpactPerIncident = report.TotalImpact / float64(len(report.Incidents))
	}
	return report
}

func classifySeverity(percentChange float64) models.ImpactSeverity {
	abs := math.Abs(percentChange)
	switch {
	case abs >= 15:
		return models.SeveritySevere
	case abs >= 5:
		return models.SeverityModerate
	default:
		return models.SeverityMinimal
	}
}

func windowAverage(samples []models.Sample, within func(time.Time) bool) float64 {
	var values []float64
	for _, sample := range samples {
		if within(sample.Timestamp) {
			values = append(values, sample.Value)
		}
	}
	return stats.Mean(values)
}
