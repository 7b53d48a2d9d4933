package engine

import (
	"math"
	"sort"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/aggregate"
	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/stats"
)

// CorrelationAnalyzer aligns two metric series onto shared interval windows
// and quantifies their statistical relationship.
type CorrelationAnalyzer struct{}

// NewCorrelationAnalyzer creates a cross-metric correlation analyzer.
func NewCorrelationAnalyzer() *CorrelationAnalyzer {
	return &CorrelationAnalyzer{}
}

// Correlate buckets both series at the same interval, keeps only windows
// present in both, and computes the Pearson coefficient plus the OLS slope
// of the business metric on the performance metric. Windows missing from
// either series are dropped silently; asymmetric coverage is expected.
func (a *CorrelationAnalyzer) Correlate(perf, biz []models.Sample, intervalMinutes int) models.CorrelationResult {
	perfBuckets := aggregate.Bucketize(perf, intervalMinutes)
	bizBuckets := aggregate.Bucketize(biz, intervalMinutes)

	shared := make([]time.Time, 0, len(perfBuckets))
	for start := range perfBuckets {
		if _, ok := bizBuckets[start]; ok {
			shared = append(shared, start)
		}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].Before(shared[j]) })

	perfAvgs := make([]float64, len(shared))
	bizAvgs := make([]float64, len(shared))
	for i, start := range shared {
		perfAvgs[i] = perfBuckets[start].Avg
		bizAvgs[i] = bizBuckets[start].Avg
	}

	coefficient := stats.PearsonCorrelation(perfAvgs, bizAvgs)

	impact := 0.0
	if len(shared) >= 2 {
		impact, _ = stats.LinearRegression(perfAvgs, bizAvgs)
	}

	return models.CorrelationResult{
		Coefficient:    coefficient,
		Strength:       classifyStrength(coefficient),
		Direction:      classifyDirection(coefficient),
		ImpactEstimate: impact,
		PairedWindows:  len(shared),
	}
}

func classifyStrength(coefficient float64) models.CorrelationStrength {
	abs := math.Abs(coefficient)
	switch {
	case abs >= 0.7:
		return models.StrengthStrong
	case abs >= 0.3:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

func classifyDirection(coefficient float64) models.CorrelationDirection {
	if coefficient < 0 {
		return models.DirectionNegative
	}
	return models.DirectionPositive
}
