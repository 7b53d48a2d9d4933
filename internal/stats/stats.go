// Package stats provides the stateless numeric helpers shared by every
// analyzer. All functions are total: degenerate inputs (empty slices,
// zero variance) resolve to zero values rather than errors.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value of the sorted input: the average of the
// two central elements for even counts, the central element for odd.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the p-th percentile (0-100) using the nearest-rank
// index ceil(p/100*n)-1, clamped to the valid range.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	index := int(math.Ceil(p/100*float64(n))) - 1
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	return sorted[index]
}

// PearsonCorrelation returns the correlation coefficient of two equal-length
// series in [-1, 1]. Mismatched lengths or zero variance yield 0.
func PearsonCorrelation(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
		sumYY += ys[i] * ys[i]
	}

	fn := float64(n)
	numerator := fn*sumXY - sumX*sumY
	denominator := math.Sqrt((fn*sumXX - sumX*sumX) * (fn*sumYY - sumY*sumY))
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// LinearRegression fits y = slope*x + intercept by ordinary least squares.
// Fewer than two points or zero x-variance yield a flat fit through the mean.
func LinearRegression(xs, ys []float64) (slope, intercept float64) {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0, 0
	}
	if n == 1 {
		return 0, ys[0]
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	fn := float64(n)
	denominator := fn*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, sumY / fn
	}
	slope = (fn*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / fn
	return slope, intercept
}

// PercentChange returns the relative change from before to after as a
// percentage. A zero baseline maps to 0 when after is also zero, else 100.
func PercentChange(before, after float64) float64 {
	if before == 0 {
		if after == 0 {
			return 0
		}
		return 100
	}
	return (after - before) / before * 100
}
