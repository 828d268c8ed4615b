package indicators

import (
	"math"

	"github.com/braxtondiggs/chansey-go/internal/errors"
)

// BollingerBands calculates the Bollinger Bands quintuple: upper, middle
// and lower bands plus %B and bandwidth.
type BollingerBands struct{}

// NewBollingerBands creates a new Bollinger Bands calculator.
func NewBollingerBands() *BollingerBands {
	return &BollingerBands{}
}

// WarmupPeriod returns the number of leading entries without a valid value.
func (b *BollingerBands) WarmupPeriod(opts Options) int {
	return opts.Period - 1
}

// Validate checks the calculation options.
func (b *BollingerBands) Validate(opts Options) error {
	if err := validatePeriod("period", opts.Period); err != nil {
		return err
	}
	if opts.StdDevMult <= 0 || math.IsNaN(opts.StdDevMult) {
		return errors.NewValidationError("stdDev", opts.StdDevMult, "standard deviation multiplier must be positive")
	}
	return validateSeries("values", opts.Values, opts.Period)
}

// Calculate computes the Bollinger series quintuple. Entries before index
// period-1 are NaN. When the bands collapse (upper == lower) %B resolves to
// 0.5; a zero middle band leaves the bandwidth entry as NaN.
func (b *BollingerBands) Calculate(opts Options) (*Result, error) {
	if err := b.Validate(opts); err != nil {
		return nil, err
	}

	values := opts.Values
	period := opts.Period
	n := len(values)

	upper := nanSeries(n)
	middle := nanSeries(n)
	lower := nanSeries(n)
	percentB := nanSeries(n)
	bandwidth := nanSeries(n)

	for i := period - 1; i < n; i++ {
		mean := windowMean(values, i-period+1, i+1)
		sd := windowStdDev(values, i-period+1, i+1, mean)

		middle[i] = mean
		upper[i] = mean + opts.StdDevMult*sd
		lower[i] = mean - opts.StdDevMult*sd

		if upper[i] == lower[i] {
			percentB[i] = 0.5
		} else {
			percentB[i] = (values[i] - lower[i]) / (upper[i] - lower[i])
		}
		if middle[i] != 0 {
			bandwidth[i] = (upper[i] - lower[i]) / middle[i]
		}
	}

	return &Result{
		Kind:       KindBollinger,
		Upper:      upper,
		Middle:     middle,
		Lower:      lower,
		PercentB:   percentB,
		Bandwidth:  bandwidth,
		ValidCount: countValid(middle),
		Period:     period,
		StdDevMult: opts.StdDevMult,
	}, nil
}
