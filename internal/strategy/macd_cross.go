package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

const (
	defaultMACDFastPeriod    = 12
	defaultMACDSlowPeriod    = 26
	defaultMACDSignalPeriod  = 9
	defaultMACDMinHistogram  = 0.0
	defaultMACDMinConfidence = 0.5

	// macdStrengthFloor is the minimum strength of any MACD crossover
	// signal, also used when the trailing histogram average is zero.
	macdStrengthFloor = 0.3

	macdTrailingWindow    = 10
	macdConsistencyWindow = 5
)

// MACDCrossStrategy signals on sign changes of the MACD-minus-signal
// difference between consecutive bars, optionally gated by histogram
// magnitude.
type MACDCrossStrategy struct {
	baseStrategy
}

type macdCrossConfig struct {
	fastPeriod           int
	slowPeriod           int
	signalPeriod         int
	confirmWithHistogram bool
	minHistogramStrength float64
	minConfidence        float64
}

// NewMACDCrossStrategy creates the MACD crossover strategy.
func NewMACDCrossStrategy(svc *indicators.Service, log *logrus.Logger) *MACDCrossStrategy {
	return &MACDCrossStrategy{baseStrategy: newBase("macd-cross", svc, log)}
}

func (s *MACDCrossStrategy) configWithDefaults(cfg types.StrategyConfig) macdCrossConfig {
	return macdCrossConfig{
		fastPeriod:           intOption(cfg, "fastPeriod", defaultMACDFastPeriod),
		slowPeriod:           intOption(cfg, "slowPeriod", defaultMACDSlowPeriod),
		signalPeriod:         intOption(cfg, "signalPeriod", defaultMACDSignalPeriod),
		confirmWithHistogram: boolOption(cfg, "confirmWithHistogram", true),
		minHistogramStrength: floatOption(cfg, "minHistogramStrength", defaultMACDMinHistogram),
		minConfidence:        floatOption(cfg, "minConfidence", defaultMACDMinConfidence),
	}
}

func (s *MACDCrossStrategy) minBars(cfg macdCrossConfig) int {
	return cfg.slowPeriod + cfg.signalPeriod + 5
}

// CanExecute reports whether any asset in the context has enough data.
func (s *MACDCrossStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute runs crossover detection over every asset in the context.
func (s *MACDCrossStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
	cfg := s.configWithDefaults(ac.Config)

	return s.run(ac, s.minBars(cfg), cfg.minConfidence, func(asset string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error) {
		res, err := s.svc.CalculateMACD(indicators.Request{
			AssetID:      asset,
			Bars:         bars,
			FastPeriod:   cfg.fastPeriod,
			SlowPeriod:   cfg.slowPeriod,
			SignalPeriod: cfg.signalPeriod,
		}, s.override)
		if err != nil {
			return nil, nil, err
		}

		chart := []types.ChartSeries{{AssetID: asset, Name: "macd_histogram", Values: res.Histogram}}

		n := len(bars)
		prevDiff, curDiff, ok := crossDiffs(res, n)
		if !ok {
			return nil, chart, nil
		}

		bullish := prevDiff < 0 && curDiff >= 0
		bearish := prevDiff > 0 && curDiff <= 0
		if !bullish && !bearish {
			return nil, chart, nil
		}

		hist := res.Histogram[n-1]
		if cfg.confirmWithHistogram {
			if bullish && hist <= cfg.minHistogramStrength {
				return nil, chart, nil
			}
			if bearish && hist >= -cfg.minHistogramStrength {
				return nil, chart, nil
			}
		}

		strength := histogramStrength(res.Histogram, n)
		confidence := s.crossConfidence(res, n, bullish)

		sigType := types.SignalBuy
		direction := "bullish"
		if bearish {
			sigType = types.SignalSell
			direction = "bearish"
		}

		signal := types.TradingSignal{
			Type:       sigType,
			AssetID:    asset,
			Price:      bars[n-1].Average,
			Strength:   strength,
			Confidence: confidence,
			Reason:     fmt.Sprintf("%s MACD crossover: MACD line crossed the signal line", direction),
			Metadata: map[string]interface{}{
				"macd":      res.MACDLine[n-1],
				"signal":    res.SignalLine[n-1],
				"histogram": hist,
			},
			Timestamp: ac.Timestamp,
		}
		return []types.TradingSignal{signal}, chart, nil
	})
}

// crossDiffs returns the MACD-minus-signal difference at the previous and
// current bar; ok is false while either line is still warming up.
func crossDiffs(res *indicators.Result, n int) (prevDiff, curDiff float64, ok bool) {
	if n < 2 {
		return 0, 0, false
	}
	pm, ps := res.MACDLine[n-2], res.SignalLine[n-2]
	cm, cs := res.MACDLine[n-1], res.SignalLine[n-1]
	if !isValue(pm) || !isValue(ps) || !isValue(cm) || !isValue(cs) {
		return 0, 0, false
	}
	return pm - ps, cm - cs, true
}

// histogramStrength normalizes the current histogram magnitude against the
// trailing average magnitude. A zero trailing average resolves to the floor
// rather than a division by zero.
func histogramStrength(histogram []float64, n int) float64 {
	current := math.Abs(histogram[n-1])

	tail := validTail(histogram, n-1, macdTrailingWindow)
	sum := 0.0
	for _, v := range tail {
		sum += math.Abs(v)
	}
	if len(tail) == 0 || sum == 0 {
		return macdStrengthFloor
	}
	avgMagnitude := sum / float64(len(tail))

	return clamp(current/avgMagnitude*0.5, macdStrengthFloor, 1)
}

// crossConfidence blends histogram-growth consistency with MACD-vs-signal
// trend consistency over a short lookback.
func (s *MACDCrossStrategy) crossConfidence(res *indicators.Result, n int, bullish bool) float64 {
	growth := 0
	trend := 0
	samples := 0
	for i := n - macdConsistencyWindow; i < n; i++ {
		if i < 1 {
			continue
		}
		h0, h1 := res.Histogram[i-1], res.Histogram[i]
		m0, s0 := res.MACDLine[i-1], res.SignalLine[i-1]
		m1, s1 := res.MACDLine[i], res.SignalLine[i]
		if !isValue(h0) || !isValue(h1) || !isValue(m0) || !isValue(s0) || !isValue(m1) || !isValue(s1) {
			continue
		}
		samples++
		if (bullish && h1 >= h0) || (!bullish && h1 <= h0) {
			growth++
		}
		if (bullish && m1-s1 >= m0-s0) || (!bullish && m1-s1 <= m0-s0) {
			trend++
		}
	}
	if samples == 0 {
		return 0.5
	}
	growthRatio := float64(growth) / float64(samples)
	trendRatio := float64(trend) / float64(samples)
	return clamp01(0.4 + 0.3*growthRatio + 0.3*trendRatio)
}

// ConfigSchema describes the strategy's configuration keys.
func (s *MACDCrossStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"fastPeriod":           {Type: "integer", Default: defaultMACDFastPeriod, Min: fptr(1), Max: fptr(100), Description: "Fast EMA period"},
		"slowPeriod":           {Type: "integer", Default: defaultMACDSlowPeriod, Min: fptr(2), Max: fptr(200), Description: "Slow EMA period (must exceed fast)"},
		"signalPeriod":         {Type: "integer", Default: defaultMACDSignalPeriod, Min: fptr(1), Max: fptr(100), Description: "Signal line EMA period"},
		"confirmWithHistogram": {Type: "boolean", Default: true, Description: "Require histogram magnitude confirmation"},
		"minHistogramStrength": {Type: "number", Default: defaultMACDMinHistogram, Min: fptr(0), Description: "Histogram magnitude required when confirmation is on"},
		"minConfidence":        {Type: "number", Default: defaultMACDMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
