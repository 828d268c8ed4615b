package indicators

import (
	"fmt"
	"math"

	"github.com/braxtondiggs/chansey-go/internal/errors"
)

// validatePeriod checks that a period parameter is a positive integer.
func validatePeriod(field string, period int) error {
	if period <= 0 {
		return errors.NewValidationError(field, period, "period must be a positive integer")
	}
	return nil
}

// validateSeries checks that a numeric input series is long enough and
// contains only finite values.
func validateSeries(field string, values []float64, minLen int) error {
	if len(values) < minLen {
		return errors.NewInsufficientDataError(field, len(values), minLen)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValidationError(field, v, fmt.Sprintf("series contains a non-numeric entry at index %d", i))
		}
	}
	return nil
}

// nanSeries allocates a series of the given length filled with NaN.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// countValid counts the non-NaN entries of a series.
func countValid(values []float64) int {
	count := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			count++
		}
	}
	return count
}

// windowMean returns the mean of values[start:end].
func windowMean(values []float64, start, end int) float64 {
	sum := 0.0
	for i := start; i < end; i++ {
		sum += values[i]
	}
	return sum / float64(end-start)
}

// windowStdDev returns the population standard deviation of
// values[start:end] around the given mean.
func windowStdDev(values []float64, start, end int, mean float64) float64 {
	sum := 0.0
	for i := start; i < end; i++ {
		d := values[i] - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(end-start))
}
