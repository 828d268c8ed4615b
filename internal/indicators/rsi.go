package indicators

// RSI calculates the Relative Strength Index with Wilder smoothing.
type RSI struct{}

// NewRSI creates a new RSI calculator.
func NewRSI() *RSI {
	return &RSI{}
}

// WarmupPeriod returns the number of leading entries without a valid value.
func (r *RSI) WarmupPeriod(opts Options) int {
	return opts.Period
}

// Validate checks the calculation options.
func (r *RSI) Validate(opts Options) error {
	if err := validatePeriod("period", opts.Period); err != nil {
		return err
	}
	return validateSeries("values", opts.Values, opts.Period+1)
}

// Calculate computes the RSI series. Entries before index period are NaN.
// A zero average loss resolves to 100 rather than a division by zero.
func (r *RSI) Calculate(opts Options) (*Result, error) {
	if err := r.Validate(opts); err != nil {
		return nil, err
	}

	values := opts.Values
	period := opts.Period
	out := nanSeries(len(values))

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain := 0.0
		loss := 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}

	return &Result{
		Kind:       KindRSI,
		Values:     out,
		ValidCount: countValid(out),
		Period:     period,
	}, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
