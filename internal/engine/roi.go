package engine

import (
	"math"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/stats"
)

// RoiAnalyzer attributes monetary value to a point-in-time change by
// comparing performance and business metrics before and after it.
type RoiAnalyzer struct{}

// NewRoiAnalyzer creates a return-on-investment analyzer.
func NewRoiAnalyzer() *RoiAnalyzer {
	return &RoiAnalyzer{}
}

// RoiInput carries the framing for one ROI computation. Before and after
// window lengths may differ; the after-side value is normalized onto the
// before-side time base before differencing.
type RoiInput struct {
	PerfSamples  []models.Sample
	BizSamples   []models.Sample
	ChangeTime   time.Time
	BeforeHours  float64
	AfterHours   float64
	Cost         float64
	ValuePerUnit float64
}

// Analyze computes percent improvements, the normalized business value
// delta, ROI percentage, and payback period. A zero cost yields roiPct 0
// (non-computable, not infinite); a non-positive hourly value rate yields
// a +Inf payback period.
func (a *RoiAnalyzer) Analyze(in RoiInput) models.RoiResult {
	beforeEnd := in.ChangeTime
	beforeStart := in.ChangeTime.Add(-time.Duration(in.BeforeHours * float64(time.Hour)))
	afterEnd := in.ChangeTime.Add(time.Duration(in.AfterHours * float64(time.Hour)))

	perfBefore := windowAverage(in.PerfSamples, betweenTimes(beforeStart, beforeEnd))
	perfAfter := windowAverage(in.PerfSamples, betweenTimes(in.ChangeTime, afterEnd))
	bizBefore := windowAverage(in.BizSamples, betweenTimes(beforeStart, beforeEnd))
	bizAfter := windowAverage(in.BizSamples, betweenTimes(in.ChangeTime, afterEnd))

	result := models.RoiResult{
		PerformanceImprovementPct: stats.PercentChange(perfBefore, perfAfter),
		BusinessImprovementPct:    stats.PercentChange(bizBefore, bizAfter),
	}

	beforeValue := bizBefore * in.ValuePerUnit * in.BeforeHours
	afterValue := bizAfter * in.ValuePerUnit * in.AfterHours
	if in.AfterHours > 0 && in.AfterHours != in.BeforeHours {
		afterValue *= in.BeforeHours / in.AfterHours
	}
	result.BusinessValueDelta = afterValue - beforeValue

	if in.Cost != 0 {
		result.RoiPct = (result.BusinessValueDelta - in.Cost) / in.Cost * 100
	}

	result.PaybackPeriodHours = math.Inf(1)
	if in.BeforeHours > 0 {
		hourlyRate := result.BusinessValueDelta / in.BeforeHours
		if hourlyRate > 0 {
			result.PaybackPeriodHours = in.Cost / hourlyRate
		}
	}
	return result
}

func betweenTimes(start, end time.Time) func(time.Time) bool {
	return func(ts time.Time) bool {
		return !ts.Before(start) && ts.Before(end)
	}
}
