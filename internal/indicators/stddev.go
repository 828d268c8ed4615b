package indicators

// StdDev calculates the rolling population standard deviation.
type StdDev struct{}

// NewStdDev creates a new standard deviation calculator.
func NewStdDev() *StdDev {
	return &StdDev{}
}

// WarmupPeriod returns the number of leading entries without a valid value.
func (s *StdDev) WarmupPeriod(opts Options) int {
	return opts.Period - 1
}

// Validate checks the calculation options.
func (s *StdDev) Validate(opts Options) error {
	if err := validatePeriod("period", opts.Period); err != nil {
		return err
	}
	return validateSeries("values", opts.Values, opts.Period)
}

// Calculate computes the rolling standard deviation series. Entries before
// index period-1 are NaN.
func (s *StdDev) Calculate(opts Options) (*Result, error) {
	if err := s.Validate(opts); err != nil {
		return nil, err
	}

	values := opts.Values
	period := opts.Period
	out := nanSeries(len(values))

	for i := period - 1; i < len(values); i++ {
		mean := windowMean(values, i-period+1, i+1)
		out[i] = windowStdDev(values, i-period+1, i+1, mean)
	}

	return &Result{
		Kind:       KindStdDev,
		Values:     out,
		ValidCount: countValid(out),
		Period:     period,
	}, nil
}
