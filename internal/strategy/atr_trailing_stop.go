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
	defaultATRStopPeriod        = 14
	defaultATRStopMultiplier    = 2.5
	defaultATRStopMinConfidence = 0.4

	atrStopBaseConfidence  = 0.5
	atrEntryBaseConfidence = 0.45
	atrStopStrengthFloor   = 0.4
	atrEntryStrengthFloor  = 0.3
	atrFavorableBonus      = 0.05
)

// ATRTrailingStopStrategy maintains a ratcheting trailing stop per asset and
// direction. It emits STOP_LOSS when the trigger price crosses the stop and
// a re-entry signal when price crosses back inside on the following bar.
type ATRTrailingStopStrategy struct {
	baseStrategy
}

type atrTrailingStopConfig struct {
	atrPeriod     int
	multiplier    float64
	direction     string
	useHighLow    bool
	minConfidence float64
}

// NewATRTrailingStopStrategy creates the ATR trailing stop strategy.
func NewATRTrailingStopStrategy(svc *indicators.Service, log *logrus.Logger) *ATRTrailingStopStrategy {
	return &ATRTrailingStopStrategy{baseStrategy: newBase("atr-trailing-stop", svc, log)}
}

func (s *ATRTrailingStopStrategy) configWithDefaults(cfg types.StrategyConfig) atrTrailingStopConfig {
	return atrTrailingStopConfig{
		atrPeriod:     intOption(cfg, "atrPeriod", defaultATRStopPeriod),
		multiplier:    floatOption(cfg, "multiplier", defaultATRStopMultiplier),
		direction:     stringOption(cfg, "direction", "long"),
		useHighLow:    boolOption(cfg, "useHighLow", true),
		minConfidence: floatOption(cfg, "minConfidence", defaultATRStopMinConfidence),
	}
}

func (s *ATRTrailingStopStrategy) minBars(cfg atrTrailingStopConfig) int {
	return 2*cfg.atrPeriod + 2
}

// CanExecute reports whether any asset in the context has enough data.
func (s *ATRTrailingStopStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute runs trailing stop tracking over every asset in the context.
func (s *ATRTrailingStopStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
	cfg := s.configWithDefaults(ac.Config)

	return s.run(ac, s.minBars(cfg), cfg.minConfidence, func(asset string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error) {
		res, err := s.svc.CalculateATR(indicators.Request{
			AssetID: asset,
			Bars:    bars,
			Period:  cfg.atrPeriod,
		}, s.override)
		if err != nil {
			return nil, nil, err
		}

		var signals []types.TradingSignal
		var chart []types.ChartSeries

		for _, short := range directions(cfg.direction) {
			stops, triggered := trailingStops(bars, res.Values, cfg.atrPeriod, cfg.multiplier, short, cfg.useHighLow)

			name := "trailing_stop_long"
			if short {
				name = "trailing_stop_short"
			}
			chart = append(chart, types.ChartSeries{AssetID: asset, Name: name, Values: stops})

			sig := s.directionSignal(ac, asset, bars, res.Values, stops, triggered, cfg, short)
			if sig != nil {
				signals = append(signals, *sig)
			}
		}
		return signals, chart, nil
	})
}

func directions(direction string) []bool {
	switch direction {
	case "short":
		return []bool{true}
	case "both":
		return []bool{false, true}
	default:
		return []bool{false}
	}
}

// directionSignal inspects the current and previous bar for a stop breach
// or a trend-flip re-entry in one direction.
func (s *ATRTrailingStopStrategy) directionSignal(ac *types.AlgorithmContext, asset string, bars []types.PriceBar, atr, stops []float64, triggered []bool, cfg atrTrailingStopConfig, short bool) *types.TradingSignal {
	n := len(bars)
	stop := stops[n-1]
	if !isValue(stop) {
		return nil
	}

	atrCur := atr[n-1]
	trigger := triggerPrice(bars[n-1], short, cfg.useHighLow)
	price := bars[n-1].Average

	side := "long"
	if short {
		side = "short"
	}

	if triggered[n-1] {
		breach := stop - trigger
		if short {
			breach = trigger - stop
		}
		strength := atrStopStrengthFloor
		if atrCur > 0 {
			strength = clamp(breach/atrCur, atrStopStrengthFloor, 1)
		}
		return &types.TradingSignal{
			Type:       types.SignalStopLoss,
			AssetID:    asset,
			Price:      price,
			Strength:   strength,
			Confidence: s.stopConfidence(atrStopBaseConfidence, atr, stops, n, short),
			Reason:     fmt.Sprintf("%s trailing stop breached at %.4f", side, stop),
			Metadata: map[string]interface{}{
				"stop":      stop,
				"atr":       finiteOr(atrCur, 0),
				"direction": side,
			},
			Timestamp: ac.Timestamp,
		}
	}

	// Trend-flip re-entry: triggered a bar ago, back inside now.
	if triggered[n-2] {
		buffer := trigger - stop
		if short {
			buffer = stop - trigger
		}
		strength := atrEntryStrengthFloor
		if atrCur > 0 {
			strength = clamp(atrEntryStrengthFloor+buffer/atrCur*0.35, atrEntryStrengthFloor, 1)
		}
		sigType := types.SignalBuy
		if short {
			sigType = types.SignalSell
		}
		return &types.TradingSignal{
			Type:       sigType,
			AssetID:    asset,
			Price:      price,
			Strength:   strength,
			Confidence: s.stopConfidence(atrEntryBaseConfidence, atr, stops, n, short),
			Reason:     fmt.Sprintf("price re-crossed inside the %s trailing stop", side),
			Metadata: map[string]interface{}{
				"stop":      stop,
				"atr":       finiteOr(atrCur, 0),
				"direction": side,
			},
			Timestamp: ac.Timestamp,
		}
	}
	return nil
}

// trailingStops computes the ratcheted stop series and per-bar trigger
// flags for one direction. The reported stop never loosens: longs take the
// max of the raw stop and the previous ratcheted stop, shorts the min.
func trailingStops(bars []types.PriceBar, atr []float64, period int, multiplier float64, short, useHighLow bool) (stops []float64, triggered []bool) {
	n := len(bars)
	stops = make([]float64, n)
	triggered = make([]bool, n)
	for i := range stops {
		stops[i] = math.NaN()
	}

	for i := 0; i < n; i++ {
		if !isValue(atr[i]) || i < period-1 {
			continue
		}

		var raw float64
		if short {
			low := math.Inf(1)
			for j := i - period + 1; j <= i; j++ {
				if bars[j].Low < low {
					low = bars[j].Low
				}
			}
			raw = low + atr[i]*multiplier
		} else {
			high := math.Inf(-1)
			for j := i - period + 1; j <= i; j++ {
				if bars[j].High > high {
					high = bars[j].High
				}
			}
			raw = high - atr[i]*multiplier
		}

		stops[i] = raw
		if i > 0 && isValue(stops[i-1]) {
			if short {
				stops[i] = math.Min(raw, stops[i-1])
			} else {
				stops[i] = math.Max(raw, stops[i-1])
			}
		}

		trigger := triggerPrice(bars[i], short, useHighLow)
		if short {
			triggered[i] = trigger > stops[i]
		} else {
			triggered[i] = trigger < stops[i]
		}
	}
	return stops, triggered
}

// triggerPrice is the price compared against the stop: the bar low for
// longs and high for shorts when high/low mode is on, the average otherwise.
func triggerPrice(bar types.PriceBar, short, useHighLow bool) float64 {
	if !useHighLow {
		return bar.Average
	}
	if short {
		return bar.High
	}
	return bar.Low
}

// stopConfidence is the base confidence plus an ATR-stability bonus and a
// small bonus when the stop has been tightening. A zero ATR average returns
// the flat base instead of dividing by zero.
func (s *ATRTrailingStopStrategy) stopConfidence(base float64, atr, stops []float64, n int, short bool) float64 {
	tail := validTail(atr, n, len(atr))
	if len(tail) > defaultATRStopPeriod {
		tail = tail[:defaultATRStopPeriod]
	}
	if len(tail) < 2 {
		return base
	}
	mean := meanOf(tail)
	if mean == 0 {
		return base
	}

	dev := 0.0
	for _, v := range tail {
		dev += math.Abs(v - mean)
	}
	dev /= float64(len(tail)) * mean
	confidence := base + clamp((1-dev)*0.2, 0, 0.2)

	if isValue(stops[n-1]) && isValue(stops[n-2]) {
		if (!short && stops[n-1] > stops[n-2]) || (short && stops[n-1] < stops[n-2]) {
			confidence += atrFavorableBonus
		}
	}
	return clamp01(confidence)
}

// ConfigSchema describes the strategy's configuration keys.
func (s *ATRTrailingStopStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"atrPeriod":     {Type: "integer", Default: defaultATRStopPeriod, Min: fptr(2), Max: fptr(100), Description: "ATR period, also the extremum lookback window"},
		"multiplier":    {Type: "number", Default: defaultATRStopMultiplier, Min: fptr(0.5), Max: fptr(10), Description: "ATR multiple between the extremum and the stop"},
		"direction":     {Type: "string", Default: "long", Enum: []string{"long", "short", "both"}, Description: "Which stop directions to track"},
		"useHighLow":    {Type: "boolean", Default: true, Description: "Trigger on the bar low/high instead of the average"},
		"minConfidence": {Type: "number", Default: defaultATRStopMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
