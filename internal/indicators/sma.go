package indicators

// SMA calculates the Simple Moving Average over a sliding window.
type SMA struct{}

// NewSMA creates a new SMA calculator.
func NewSMA() *SMA {
	return &SMA{}
}

// WarmupPeriod returns the number of leading entries without a valid value.
func (s *SMA) WarmupPeriod(opts Options) int {
	return opts.Period - 1
}

// Validate checks the calculation options.
func (s *SMA) Validate(opts Options) error {
	if err := validatePeriod("period", opts.Period); err != nil {
		return err
	}
	return validateSeries("values", opts.Values, opts.Period)
}

// Calculate computes the SMA series. Entries before index period-1 are NaN.
func (s *SMA) Calculate(opts Options) (*Result, error) {
	if err := s.Validate(opts); err != nil {
		return nil, err
	}

	values := opts.Values
	period := opts.Period
	out := nanSeries(len(values))

	// Rolling sum over the window
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return &Result{
		Kind:       KindSMA,
		Values:     out,
		ValidCount: countValid(out),
		Period:     period,
	}, nil
}
