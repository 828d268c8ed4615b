package indicators

import (
	"math"

	"github.com/braxtondiggs/chansey-go/internal/errors"
)

// ATR calculates the Average True Range with Wilder smoothing. The true
// range uses the bar average as the previous-close proxy.
type ATR struct{}

// NewATR creates a new ATR calculator.
func NewATR() *ATR {
	return &ATR{}
}

// WarmupPeriod returns the number of leading entries without a valid value.
func (a *ATR) WarmupPeriod(opts Options) int {
	return opts.Period
}

// Validate checks the calculation options.
func (a *ATR) Validate(opts Options) error {
	if err := validatePeriod("period", opts.Period); err != nil {
		return err
	}
	if err := validateSeries("values", opts.Values, opts.Period+1); err != nil {
		return err
	}
	if err := validateSeries("high", opts.High, opts.Period+1); err != nil {
		return err
	}
	if err := validateSeries("low", opts.Low, opts.Period+1); err != nil {
		return err
	}
	if len(opts.High) != len(opts.Values) || len(opts.Low) != len(opts.Values) {
		return errors.NewValidationError("high/low", len(opts.High), "high and low series must match the values series length")
	}
	return nil
}

// Calculate computes the ATR series. Entries before index period are NaN.
func (a *ATR) Calculate(opts Options) (*Result, error) {
	if err := a.Validate(opts); err != nil {
		return nil, err
	}

	period := opts.Period
	n := len(opts.Values)
	out := nanSeries(n)

	// True range needs the previous bar, so the series starts at index 1.
	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		prev := opts.Values[i-1]
		tr[i] = math.Max(
			opts.High[i]-opts.Low[i],
			math.Max(
				math.Abs(opts.High[i]-prev),
				math.Abs(opts.Low[i]-prev),
			),
		)
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	out[period] = atr

	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		out[i] = atr
	}

	return &Result{
		Kind:       KindATR,
		Values:     out,
		ValidCount: countValid(out),
		Period:     period,
	}, nil
}
