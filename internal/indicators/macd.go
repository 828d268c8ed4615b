package indicators

import (
	"math"

	"github.com/braxtondiggs/chansey-go/internal/errors"
)

// MACD calculates the Moving Average Convergence Divergence line, its
// signal line and the histogram between them.
type MACD struct{}

// NewMACD creates a new MACD calculator.
func NewMACD() *MACD {
	return &MACD{}
}

// WarmupPeriod returns the number of leading entries without a valid value
// on the signal line, which is the slowest series of the three.
func (m *MACD) WarmupPeriod(opts Options) int {
	return opts.SlowPeriod + opts.SignalPeriod - 2
}

// Validate checks the calculation options.
func (m *MACD) Validate(opts Options) error {
	if err := validatePeriod("fastPeriod", opts.FastPeriod); err != nil {
		return err
	}
	if err := validatePeriod("slowPeriod", opts.SlowPeriod); err != nil {
		return err
	}
	if err := validatePeriod("signalPeriod", opts.SignalPeriod); err != nil {
		return err
	}
	if opts.FastPeriod >= opts.SlowPeriod {
		return errors.NewValidationError("fastPeriod", opts.FastPeriod, "fast period must be less than slow period")
	}
	return validateSeries("values", opts.Values, m.WarmupPeriod(opts)+1)
}

// Calculate computes the MACD series triple. The MACD line is valid from
// index slowPeriod-1, the signal line and histogram from the warmup period.
func (m *MACD) Calculate(opts Options) (*Result, error) {
	if err := m.Validate(opts); err != nil {
		return nil, err
	}

	values := opts.Values
	n := len(values)

	fast := emaSeries(values, opts.FastPeriod, 0)
	slow := emaSeries(values, opts.SlowPeriod, 0)

	macdLine := nanSeries(n)
	for i := opts.SlowPeriod - 1; i < n; i++ {
		macdLine[i] = fast[i] - slow[i]
	}

	signalLine := emaSeries(macdLine, opts.SignalPeriod, opts.SlowPeriod-1)

	histogram := nanSeries(n)
	for i := range histogram {
		if !math.IsNaN(macdLine[i]) && !math.IsNaN(signalLine[i]) {
			histogram[i] = macdLine[i] - signalLine[i]
		}
	}

	return &Result{
		Kind:         KindMACD,
		MACDLine:     macdLine,
		SignalLine:   signalLine,
		Histogram:    histogram,
		ValidCount:   countValid(signalLine),
		FastPeriod:   opts.FastPeriod,
		SlowPeriod:   opts.SlowPeriod,
		SignalPeriod: opts.SignalPeriod,
	}, nil
}
