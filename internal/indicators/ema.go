package indicators

// EMA calculates the Exponential Moving Average, seeded with the SMA of the
// first period entries.
type EMA struct{}

// NewEMA creates a new EMA calculator.
func NewEMA() *EMA {
	return &EMA{}
}

// WarmupPeriod returns the number of leading entries without a valid value.
func (e *EMA) WarmupPeriod(opts Options) int {
	return opts.Period - 1
}

// Validate checks the calculation options.
func (e *EMA) Validate(opts Options) error {
	if err := validatePeriod("period", opts.Period); err != nil {
		return err
	}
	return validateSeries("values", opts.Values, opts.Period)
}

// Calculate computes the EMA series. Entries before index period-1 are NaN.
func (e *EMA) Calculate(opts Options) (*Result, error) {
	if err := e.Validate(opts); err != nil {
		return nil, err
	}

	values := opts.Values
	period := opts.Period
	out := emaSeries(values, period, 0)

	return &Result{
		Kind:       KindEMA,
		Values:     out,
		ValidCount: countValid(out),
		Period:     period,
	}, nil
}

// emaSeries computes an EMA over values[offset:], returning a series of
// len(values) with NaN before offset+period-1. The smoothing factor is
// 2/(period+1) and the seed is the SMA of the first period entries.
func emaSeries(values []float64, period, offset int) []float64 {
	out := nanSeries(len(values))
	if len(values)-offset < period {
		return out
	}

	seedEnd := offset + period
	prev := windowMean(values, offset, seedEnd)
	out[seedEnd-1] = prev

	k := 2.0 / float64(period+1)
	for i := seedEnd; i < len(values); i++ {
		prev = values[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}
