package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Interval and envelope statistics shared by the tempo corrector and the
// onset front-end, using gonum for robustness.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// CoefficientOfVariation returns the relative spread (stddev / mean).
// Zero-mean data reports zero spread rather than dividing by zero.
func CoefficientOfVariation(data []float64) float64 {
	mean := Mean(data)
	if math.Abs(mean) < 1e-12 {
		return 0.0
	}
	return StandardDeviation(data) / math.Abs(mean)
}

// Median returns the middle value of the data
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// FilterNearMedian keeps values within the given relative distance of the
// median, e.g. ratio 0.5 keeps values in [0.5*median, 1.5*median].
func FilterNearMedian(data []float64, ratio float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	median := Median(data)
	if median <= 0 {
		return nil
	}

	kept := make([]float64, 0, len(data))
	for _, v := range data {
		if math.Abs(v-median) <= ratio*median {
			kept = append(kept, v)
		}
	}
	return kept
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// EMA moves prev toward value by the factor alpha
func EMA(prev, value, alpha float64) float64 {
	if alpha <= 0 {
		return prev
	}
	if alpha >= 1 {
		return value
	}
	return prev + alpha*(value-prev)
}
