package indicators

// Kind identifies an indicator calculator.
type Kind string

const (
	KindSMA       Kind = "sma"
	KindEMA       Kind = "ema"
	KindRSI       Kind = "rsi"
	KindMACD      Kind = "macd"
	KindBollinger Kind = "bollinger"
	KindATR       Kind = "atr"
	KindStdDev    Kind = "stddev"
)

// Options carries the input series and parameters for one calculation.
// Values is the primary series (bar averages); High and Low are only
// consulted by ATR. Period parameters not used by a calculator are ignored
// by it.
type Options struct {
	Values []float64
	High   []float64
	Low    []float64

	Period       int
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
	StdDevMult   float64
}

// Calculator is the contract every indicator implements.
type Calculator interface {
	// Calculate validates the options and computes the full output series.
	Calculate(opts Options) (*Result, error)

	// WarmupPeriod returns the number of leading entries that carry no
	// valid value for the given (possibly partial) options.
	WarmupPeriod(opts Options) int

	// Validate fails with a descriptive error on malformed input.
	Validate(opts Options) error
}

// Result holds the output of one indicator calculation. Every populated
// series has the same length as the input series; entries before the warmup
// period are NaN. Which series are populated depends on Kind: single-series
// indicators fill Values, MACD fills MACDLine/SignalLine/Histogram, and
// Bollinger fills Upper/Middle/Lower/PercentB/Bandwidth.
type Result struct {
	Kind Kind

	Values []float64

	MACDLine   []float64
	SignalLine []float64
	Histogram  []float64

	Upper     []float64
	Middle    []float64
	Lower     []float64
	PercentB  []float64
	Bandwidth []float64

	// ValidCount is the number of non-NaN entries in the primary series.
	ValidCount int

	// Resolved parameters the calculation actually used.
	Period       int
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
	StdDevMult   float64

	// FromCache is set by the computation service when the result was
	// served from its cache.
	FromCache bool
}

// DefaultCalculators returns the default calculator for every indicator kind.
func DefaultCalculators() map[Kind]Calculator {
	return map[Kind]Calculator{
		KindSMA:       NewSMA(),
		KindEMA:       NewEMA(),
		KindRSI:       NewRSI(),
		KindMACD:      NewMACD(),
		KindBollinger: NewBollingerBands(),
		KindATR:       NewATR(),
		KindStdDev:    NewStdDev(),
	}
}
