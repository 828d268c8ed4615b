package types

import "time"

// StrategyConfig is the flat key/value configuration a strategy run receives.
// Every strategy merges it against its own defaults; a key that is present
// with a zero or false value is honored, never replaced by the default.
type StrategyConfig map[string]interface{}

// AlgorithmContext is the input to a single strategy run.
type AlgorithmContext struct {
	Assets    []string
	Bars      map[string][]PriceBar
	Timestamp time.Time
	Config    StrategyConfig
}

// ChartSeries is a per-asset numeric series a strategy exposes for
// visualization. Entries may be NaN where the underlying indicator has
// no value yet.
type ChartSeries struct {
	AssetID string
	Name    string
	Values  []float64
}

// AlgorithmResult is the outcome of one strategy run.
type AlgorithmResult struct {
	Strategy  string                 `json:"strategy"`
	Success   bool                   `json:"success"`
	Signals   []TradingSignal        `json:"signals"`
	ChartData []ChartSeries          `json:"-"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Error     string                 `json:"error,omitempty"`
}
