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
	defaultEMARSIFastPeriod    = 9
	defaultEMARSISlowPeriod    = 21
	defaultEMARSIRSIPeriod     = 14
	defaultEMARSIMaxForBuy     = 70.0
	defaultEMARSIMinForSell    = 30.0
	defaultEMARSIMinConfidence = 0.5
)

// EMARSIStrategy signals on fast/slow EMA crossovers, gated by the RSI not
// sitting in the opposite extreme.
type EMARSIStrategy struct {
	baseStrategy
}

type emaRSIConfig struct {
	fastPeriod    int
	slowPeriod    int
	rsiPeriod     int
	rsiMaxForBuy  float64
	rsiMinForSell float64
	minConfidence float64
}

// NewEMARSIStrategy creates the EMA+RSI filtered crossover strategy.
func NewEMARSIStrategy(svc *indicators.Service, log *logrus.Logger) *EMARSIStrategy {
	return &EMARSIStrategy{baseStrategy: newBase("ema-rsi", svc, log)}
}

func (s *EMARSIStrategy) configWithDefaults(cfg types.StrategyConfig) emaRSIConfig {
	return emaRSIConfig{
		fastPeriod:    intOption(cfg, "fastPeriod", defaultEMARSIFastPeriod),
		slowPeriod:    intOption(cfg, "slowPeriod", defaultEMARSISlowPeriod),
		rsiPeriod:     intOption(cfg, "rsiPeriod", defaultEMARSIRSIPeriod),
		rsiMaxForBuy:  floatOption(cfg, "rsiMaxForBuy", defaultEMARSIMaxForBuy),
		rsiMinForSell: floatOption(cfg, "rsiMinForSell", defaultEMARSIMinForSell),
		minConfidence: floatOption(cfg, "minConfidence", defaultEMARSIMinConfidence),
	}
}

func (s *EMARSIStrategy) minBars(cfg emaRSIConfig) int {
	min := cfg.slowPeriod
	if cfg.rsiPeriod+1 > min {
		min = cfg.rsiPeriod + 1
	}
	return min + 5
}

// CanExecute reports whether any asset in the context has enough data.
func (s *EMARSIStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute runs filtered crossover detection over every asset in the context.
func (s *EMARSIStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
	cfg := s.configWithDefaults(ac.Config)

	return s.run(ac, s.minBars(cfg), cfg.minConfidence, func(asset string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error) {
		fastRes, err := s.svc.CalculateEMA(indicators.Request{AssetID: asset, Bars: bars, Period: cfg.fastPeriod}, s.override)
		if err != nil {
			return nil, nil, err
		}
		slowRes, err := s.svc.CalculateEMA(indicators.Request{AssetID: asset, Bars: bars, Period: cfg.slowPeriod}, s.override)
		if err != nil {
			return nil, nil, err
		}
		rsiRes, err := s.svc.CalculateRSI(indicators.Request{AssetID: asset, Bars: bars, Period: cfg.rsiPeriod}, s.override)
		if err != nil {
			return nil, nil, err
		}

		chart := []types.ChartSeries{
			{AssetID: asset, Name: "ema_fast", Values: fastRes.Values},
			{AssetID: asset, Name: "ema_slow", Values: slowRes.Values},
		}

		n := len(bars)
		pf, ps := fastRes.Values[n-2], slowRes.Values[n-2]
		cf, cs := fastRes.Values[n-1], slowRes.Values[n-1]
		rsi := rsiRes.Values[n-1]
		if !isValue(pf) || !isValue(ps) || !isValue(cf) || !isValue(cs) || !isValue(rsi) {
			return nil, chart, nil
		}

		crossedUp := pf <= ps && cf > cs
		crossedDown := pf >= ps && cf < cs
		if !crossedUp && !crossedDown {
			return nil, chart, nil
		}

		price := bars[n-1].Average
		var signals []types.TradingSignal
		if crossedUp && rsi < cfg.rsiMaxForBuy {
			signals = append(signals, types.TradingSignal{
				Type:       types.SignalBuy,
				AssetID:    asset,
				Price:      price,
				Strength:   crossoverStrength(cf, cs),
				Confidence: rsiHeadroomConfidence(rsi, cfg.rsiMaxForBuy, true),
				Reason:     fmt.Sprintf("fast EMA crossed above slow EMA with RSI %.1f below %.1f", rsi, cfg.rsiMaxForBuy),
				Metadata:   map[string]interface{}{"emaFast": cf, "emaSlow": cs, "rsi": rsi},
				Timestamp:  ac.Timestamp,
			})
		} else if crossedDown && rsi > cfg.rsiMinForSell {
			signals = append(signals, types.TradingSignal{
				Type:       types.SignalSell,
				AssetID:    asset,
				Price:      price,
				Strength:   crossoverStrength(cf, cs),
				Confidence: rsiHeadroomConfidence(rsi, cfg.rsiMinForSell, false),
				Reason:     fmt.Sprintf("fast EMA crossed below slow EMA with RSI %.1f above %.1f", rsi, cfg.rsiMinForSell),
				Metadata:   map[string]interface{}{"emaFast": cf, "emaSlow": cs, "rsi": rsi},
				Timestamp:  ac.Timestamp,
			})
		}
		return signals, chart, nil
	})
}

// crossoverStrength scales the relative gap between the EMAs. A zero slow
// EMA resolves to the floor instead of a division by zero.
func crossoverStrength(fast, slow float64) float64 {
	if slow == 0 {
		return 0.3
	}
	gap := math.Abs(fast-slow) / math.Abs(slow)
	return clamp(0.3+gap*20, 0.3, 1)
}

// rsiHeadroomConfidence scores how far the RSI sits from the configured
// filter threshold. A threshold of exactly 50 has no headroom range, so the
// ratio falls back to neutral instead of dividing by zero.
func rsiHeadroomConfidence(rsi, threshold float64, bullish bool) float64 {
	denom := threshold - 50
	headroom := 0.5
	if denom != 0 {
		if bullish {
			headroom = clamp01((threshold - rsi) / denom)
		} else {
			headroom = clamp01((rsi - threshold) / -denom)
		}
	}
	return clamp01(0.45 + 0.4*headroom)
}

// ConfigSchema describes the strategy's configuration keys.
func (s *EMARSIStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"fastPeriod":    {Type: "integer", Default: defaultEMARSIFastPeriod, Min: fptr(1), Max: fptr(100), Description: "Fast EMA period"},
		"slowPeriod":    {Type: "integer", Default: defaultEMARSISlowPeriod, Min: fptr(2), Max: fptr(200), Description: "Slow EMA period"},
		"rsiPeriod":     {Type: "integer", Default: defaultEMARSIRSIPeriod, Min: fptr(2), Max: fptr(200), Description: "RSI filter period"},
		"rsiMaxForBuy":  {Type: "number", Default: defaultEMARSIMaxForBuy, Min: fptr(0), Max: fptr(100), Description: "Reject buys when RSI is at or above this level"},
		"rsiMinForSell": {Type: "number", Default: defaultEMARSIMinForSell, Min: fptr(0), Max: fptr(100), Description: "Reject sells when RSI is at or below this level"},
		"minConfidence": {Type: "number", Default: defaultEMARSIMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
