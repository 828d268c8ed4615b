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
	defaultDivergenceRSIPeriod     = 14
	defaultDivergenceLookback      = 40
	defaultDivergencePivotStrength = 3
	defaultMinDivergencePercent    = 3.0
	defaultDivergenceMinConfidence = 0.5
)

// RSIDivergenceStrategy compares the two most recent price pivots against
// the RSI at those pivots. Pivot lows are detected on the bar lows and
// pivot highs on the bar highs. Price making a meaningfully lower low while
// RSI makes a higher low is a bullish divergence; the mirror is bearish.
type RSIDivergenceStrategy struct {
	baseStrategy
}

type rsiDivergenceConfig struct {
	rsiPeriod            int
	lookbackPeriod       int
	pivotStrength        int
	minDivergencePercent float64
	minConfidence        float64
}

// NewRSIDivergenceStrategy creates the RSI divergence strategy.
func NewRSIDivergenceStrategy(svc *indicators.Service, log *logrus.Logger) *RSIDivergenceStrategy {
	return &RSIDivergenceStrategy{baseStrategy: newBase("rsi-divergence", svc, log)}
}

func (s *RSIDivergenceStrategy) configWithDefaults(cfg types.StrategyConfig) rsiDivergenceConfig {
	return rsiDivergenceConfig{
		rsiPeriod:            intOption(cfg, "rsiPeriod", defaultDivergenceRSIPeriod),
		lookbackPeriod:       intOption(cfg, "lookbackPeriod", defaultDivergenceLookback),
		pivotStrength:        intOption(cfg, "pivotStrength", defaultDivergencePivotStrength),
		minDivergencePercent: floatOption(cfg, "minDivergencePercent", defaultMinDivergencePercent),
		minConfidence:        floatOption(cfg, "minConfidence", defaultDivergenceMinConfidence),
	}
}

func (s *RSIDivergenceStrategy) minBars(cfg rsiDivergenceConfig) int {
	return cfg.rsiPeriod + cfg.lookbackPeriod + 1
}

// CanExecute reports whether any asset in the context has enough data.
func (s *RSIDivergenceStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute runs divergence detection over every asset in the context.
func (s *RSIDivergenceStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
	cfg := s.configWithDefaults(ac.Config)

	return s.run(ac, s.minBars(cfg), cfg.minConfidence, func(asset string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error) {
		res, err := s.svc.CalculateRSI(indicators.Request{AssetID: asset, Bars: bars, Period: cfg.rsiPeriod}, s.override)
		if err != nil {
			return nil, nil, err
		}

		chart := []types.ChartSeries{{AssetID: asset, Name: "rsi", Values: res.Values}}

		lows := types.Lows(bars)
		highs := types.Highs(bars)
		n := len(bars)
		from := n - cfg.lookbackPeriod
		if from < 0 {
			from = 0
		}

		curRSI := res.Values[n-1]
		if !isValue(curRSI) {
			return nil, chart, nil
		}
		price := bars[n-1].Average

		var signals []types.TradingSignal

		if sig := s.bullishDivergence(lows, res.Values, from, cfg, curRSI); sig != nil {
			sig.AssetID = asset
			sig.Price = price
			sig.Timestamp = ac.Timestamp
			signals = append(signals, *sig)
		} else if sig := s.bearishDivergence(highs, res.Values, from, cfg, curRSI); sig != nil {
			sig.AssetID = asset
			sig.Price = price
			sig.Timestamp = ac.Timestamp
			signals = append(signals, *sig)
		}
		return signals, chart, nil
	})
}

func (s *RSIDivergenceStrategy) bullishDivergence(lows, rsi []float64, from int, cfg rsiDivergenceConfig, curRSI float64) *types.TradingSignal {
	pivots := findPivots(lows, from, cfg.pivotStrength, true)
	if len(pivots) < 2 {
		return nil
	}
	older, recent := pivots[len(pivots)-2], pivots[len(pivots)-1]

	if lows[older] <= 0 {
		return nil
	}
	drop := (lows[older] - lows[recent]) / lows[older] * 100
	if drop < cfg.minDivergencePercent {
		return nil
	}
	if !isValue(rsi[older]) || !isValue(rsi[recent]) || rsi[recent] <= rsi[older] {
		return nil
	}

	confidence := 0.5
	if curRSI < 40 {
		confidence += 0.2
	}
	return &types.TradingSignal{
		Type:       types.SignalBuy,
		Strength:   clamp(0.4+drop/20, 0.4, 1),
		Confidence: clamp01(confidence),
		Reason:     fmt.Sprintf("bullish divergence: price fell %.1f%% to a lower low while RSI rose from %.1f to %.1f", drop, rsi[older], rsi[recent]),
		Metadata: map[string]interface{}{
			"priceDropPercent": drop,
			"rsiOlderPivot":    rsi[older],
			"rsiRecentPivot":   rsi[recent],
			"pivotIndexes":     []int{older, recent},
		},
	}
}

func (s *RSIDivergenceStrategy) bearishDivergence(highs, rsi []float64, from int, cfg rsiDivergenceConfig, curRSI float64) *types.TradingSignal {
	pivots := findPivots(highs, from, cfg.pivotStrength, false)
	if len(pivots) < 2 {
		return nil
	}
	older, recent := pivots[len(pivots)-2], pivots[len(pivots)-1]

	if highs[older] <= 0 {
		return nil
	}
	rise := (highs[recent] - highs[older]) / highs[older] * 100
	if rise < cfg.minDivergencePercent {
		return nil
	}
	if !isValue(rsi[older]) || !isValue(rsi[recent]) || rsi[recent] >= rsi[older] {
		return nil
	}

	confidence := 0.5
	if curRSI > 60 {
		confidence += 0.2
	}
	return &types.TradingSignal{
		Type:       types.SignalSell,
		Strength:   clamp(0.4+rise/20, 0.4, 1),
		Confidence: clamp01(confidence),
		Reason:     fmt.Sprintf("bearish divergence: price rose %.1f%% to a higher high while RSI fell from %.1f to %.1f", rise, rsi[older], rsi[recent]),
		Metadata: map[string]interface{}{
			"priceRisePercent": rise,
			"rsiOlderPivot":    rsi[older],
			"rsiRecentPivot":   rsi[recent],
			"pivotIndexes":     []int{older, recent},
		},
	}
}

// findPivots returns the indexes within [from, len) that are strictly more
// extreme than every neighbor within strength bars on both sides. A NaN
// neighbor disqualifies a candidate, and indexes too close to either edge
// have no full neighborhood and are skipped.
func findPivots(values []float64, from, strength int, lows bool) []int {
	var pivots []int
	n := len(values)
	start := from
	if start < strength {
		start = strength
	}
	for i := start; i < n-strength; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		pivot := true
		for j := i - strength; j <= i+strength && pivot; j++ {
			if j == i {
				continue
			}
			if math.IsNaN(values[j]) {
				pivot = false
				break
			}
			if lows {
				if values[j] <= values[i] {
					pivot = false
				}
			} else {
				if values[j] >= values[i] {
					pivot = false
				}
			}
		}
		if pivot {
			pivots = append(pivots, i)
		}
	}
	return pivots
}

// ConfigSchema describes the strategy's configuration keys.
func (s *RSIDivergenceStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"rsiPeriod":            {Type: "integer", Default: defaultDivergenceRSIPeriod, Min: fptr(2), Max: fptr(200), Description: "RSI period"},
		"lookbackPeriod":       {Type: "integer", Default: defaultDivergenceLookback, Min: fptr(10), Max: fptr(500), Description: "How many recent bars to scan for pivots"},
		"pivotStrength":        {Type: "integer", Default: defaultDivergencePivotStrength, Min: fptr(1), Max: fptr(20), Description: "Neighbor bars a pivot must dominate on each side"},
		"minDivergencePercent": {Type: "number", Default: defaultMinDivergencePercent, Min: fptr(0), Max: fptr(50), Description: "Minimum percent move between the two price pivots"},
		"minConfidence":        {Type: "number", Default: defaultDivergenceMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
