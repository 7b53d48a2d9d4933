package stats

import (
	"math"
	"testing"
)

func TestMedianOddCount(t *testing.T) {
	got := Median([]float64{30, 10, 20})
	if got != 20 {
		t.Fatalf("expected median 20, got %f", got)
	}
}

func TestMedianEvenCount(t *testing.T) {
	got := Median([]float64{40, 10, 30, 20})
	if got != 25 {
		t.Fatalf("expected median 25, got %f", got)
	}
}

func TestMedianEmpty(t *testing.T) {
	if got := Median(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %f", got)
	}
}

func TestPercentileMatchesMedian(t *testing.T) {
	odd := [][]float64{
		{5, 1, 3},
		{1},
		{9, 9, 9, 9, 9},
	}
	for _, values := range odd {
		if p50, median := Percentile(values, 50), Median(values); p50 != median {
			t.Fatalf("p50 %f != median %f for %v", p50, median, values)
		}
	}

	// Even counts: nearest-rank p50 is the lower central element while the
	// median interpolates between the two central elements.
	if got := Percentile([]float64{8, 2, 4, 6}, 50); got != 4 {
		t.Fatalf("expected lower central element 4, got %f", got)
	}
	if got := Median([]float64{8, 2, 4, 6}); got != 5 {
		t.Fatalf("expected interpolated median 5, got %f", got)
	}
}

func TestPercentileBounds(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	if got := Percentile(values, 0); got != 10 {
		t.Fatalf("p0 should clamp to the minimum, got %f", got)
	}
	if got := Percentile(values, 100); got != 50 {
		t.Fatalf("p100 should be the maximum, got %f", got)
	}
	if got := Percentile(values, 95); got != 50 {
		t.Fatalf("p95 of five values should be the last element, got %f", got)
	}
}

func TestPearsonPerfectCorrelation(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{2, 4, 6, 8}
	if got := PearsonCorrelation(xs, ys); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected coefficient 1, got %f", got)
	}
}

func TestPearsonZeroVariance(t *testing.T) {
	xs := []float64{1, 2, 3}
	ys := []float64{5, 5, 5}
	if got := PearsonCorrelation(xs, ys); got != 0 {
		t.Fatalf("expected 0 for zero variance, got %f", got)
	}
}

func TestLinearRegressionKnownLine(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{1, 3, 5, 7}
	slope, intercept := LinearRegression(xs, ys)
	if math.Abs(slope-2) > 1e-9 || math.Abs(intercept-1) > 1e-9 {
		t.Fatalf("expected y=2x+1, got slope %f intercept %f", slope, intercept)
	}
}

func TestLinearRegressionSinglePoint(t *testing.T) {
	slope, intercept := LinearRegression([]float64{4}, []float64{9})
	if slope != 0 || intercept != 9 {
		t.Fatalf("expected flat fit through point, got slope %f intercept %f", slope, intercept)
	}
}

func TestPercentChangeZeroBaseline(t *testing.T) {
	if got := PercentChange(0, 0); got != 0 {
		t.Fatalf("expected 0 for zero/zero, got %f", got)
	}
	if got := PercentChange(0, 3); got != 100 {
		t.Fatalf("expected 100 for zero baseline, got %f", got)
	}
	if got := PercentChange(10, 15); got != 50 {
		t.Fatalf("expected 50, got %f", got)
	}
}
