package common

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); !almostEqual(got, 2.5) {
		t.Errorf("Mean = %.4f, want 2.5", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %.4f, want 0", got)
	}
}

func TestStandardDeviation(t *testing.T) {
	if got := StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !almostEqual(got, math.Sqrt(32.0/7.0)) {
		t.Errorf("StandardDeviation = %.4f", got)
	}
	if got := StandardDeviation([]float64{5}); got != 0 {
		t.Errorf("StandardDeviation(single) = %.4f, want 0", got)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if got := CoefficientOfVariation([]float64{500, 500, 500, 500}); got != 0 {
		t.Errorf("CoV(constant) = %.4f, want 0", got)
	}
	if got := CoefficientOfVariation(nil); got != 0 {
		t.Errorf("CoV(nil) = %.4f, want 0", got)
	}
	got := CoefficientOfVariation([]float64{400, 600})
	want := math.Sqrt(20000) / 500
	if !almostEqual(got, want) {
		t.Errorf("CoV = %.4f, want %.4f", got, want)
	}
}

func TestMedian(t *testing.T) {
	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("Median(odd) = %.4f, want 2", got)
	}
	if got := Median([]float64{4, 1, 3, 2}); got < 2 || got > 3 {
		t.Errorf("Median(even) = %.4f, want within [2, 3]", got)
	}
}

func TestFilterNearMedian(t *testing.T) {
	data := []float64{250, 255, 248, 252, 800, 251, 40}
	kept := FilterNearMedian(data, 0.5)
	for _, v := range kept {
		if v < 125 || v > 378 {
			t.Errorf("kept outlier %.1f", v)
		}
	}
	if len(kept) != 5 {
		t.Errorf("kept %d values, want 5", len(kept))
	}
	if FilterNearMedian(nil, 0.5) != nil {
		t.Error("FilterNearMedian(nil) should be nil")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp above = %.2f", got)
	}
	if got := Clamp(-0.5, 0, 1); got != 0 {
		t.Errorf("Clamp below = %.2f", got)
	}
	if got := Clamp(0.3, 0, 1); got != 0.3 {
		t.Errorf("Clamp inside = %.2f", got)
	}
}

func TestEMA(t *testing.T) {
	if got := EMA(100, 200, 0.1); !almostEqual(got, 110) {
		t.Errorf("EMA = %.4f, want 110", got)
	}
	if got := EMA(100, 200, 0); got != 100 {
		t.Errorf("EMA(alpha=0) = %.4f, want 100", got)
	}
	if got := EMA(100, 200, 1); got != 200 {
		t.Errorf("EMA(alpha=1) = %.4f, want 200", got)
	}
}
