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
	defaultSqueezePeriod        = 20
	defaultSqueezeStdDev        = 2.0
	defaultSqueezeThreshold     = 0.1
	defaultMinSqueezeBars       = 5
	defaultSqueezeMinConfidence = 0.5

	squeezeStrengthFloor = 0.2
)

// BollingerSqueezeStrategy looks for a sustained run of abnormally low
// bandwidth that ends with the current bar expanding past the threshold,
// then signals in the direction %B indicates.
type BollingerSqueezeStrategy struct {
	baseStrategy
}

type bollingerSqueezeConfig struct {
	period               int
	stdDev               float64
	squeezeThreshold     float64
	minSqueezeBars       int
	breakoutConfirmation bool
	minConfidence        float64
}

// NewBollingerSqueezeStrategy creates the Bollinger squeeze strategy.
func NewBollingerSqueezeStrategy(svc *indicators.Service, log *logrus.Logger) *BollingerSqueezeStrategy {
	return &BollingerSqueezeStrategy{baseStrategy: newBase("bollinger-squeeze", svc, log)}
}

func (s *BollingerSqueezeStrategy) configWithDefaults(cfg types.StrategyConfig) bollingerSqueezeConfig {
	return bollingerSqueezeConfig{
		period:               intOption(cfg, "period", defaultSqueezePeriod),
		stdDev:               floatOption(cfg, "stdDev", defaultSqueezeStdDev),
		squeezeThreshold:     floatOption(cfg, "squeezeThreshold", defaultSqueezeThreshold),
		minSqueezeBars:       intOption(cfg, "minSqueezeBars", defaultMinSqueezeBars),
		breakoutConfirmation: boolOption(cfg, "breakoutConfirmation", true),
		minConfidence:        floatOption(cfg, "minConfidence", defaultSqueezeMinConfidence),
	}
}

func (s *BollingerSqueezeStrategy) minBars(cfg bollingerSqueezeConfig) int {
	return cfg.period + cfg.minSqueezeBars + 2
}

// CanExecute reports whether any asset in the context has enough data.
func (s *BollingerSqueezeStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute runs squeeze/breakout detection over every asset in the context.
func (s *BollingerSqueezeStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
	cfg := s.configWithDefaults(ac.Config)

	return s.run(ac, s.minBars(cfg), cfg.minConfidence, func(asset string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error) {
		res, err := s.svc.CalculateBollinger(indicators.Request{
			AssetID:    asset,
			Bars:       bars,
			Period:     cfg.period,
			StdDevMult: cfg.stdDev,
		}, s.override)
		if err != nil {
			return nil, nil, err
		}

		chart := []types.ChartSeries{{AssetID: asset, Name: "bandwidth", Values: res.Bandwidth}}

		n := len(bars)
		current := res.Bandwidth[n-1]
		if !isValue(current) || current < cfg.squeezeThreshold || cfg.squeezeThreshold <= 0 {
			return nil, chart, nil
		}

		runLen, minBandwidth := squeezeRun(res.Bandwidth, n-2, cfg.squeezeThreshold)
		if runLen < cfg.minSqueezeBars {
			return nil, chart, nil
		}

		pctB := res.PercentB[n-1]
		if !isValue(pctB) || pctB == 0.5 {
			return nil, chart, nil
		}
		bullish := pctB > 0.5

		if cfg.breakoutConfirmation {
			if bullish && bars[n-1].Average <= bars[n-2].Average {
				return nil, chart, nil
			}
			if !bullish && bars[n-1].Average >= bars[n-2].Average {
				return nil, chart, nil
			}
		}

		// How tight the squeeze was, relative to the configured threshold.
		intensity := clamp01((cfg.squeezeThreshold - minBandwidth) / cfg.squeezeThreshold)
		lengthBonus := clamp(float64(runLen)/float64(cfg.minSqueezeBars)-1, 0, 1) * 0.15

		sigType := types.SignalBuy
		direction := "upside"
		if !bullish {
			sigType = types.SignalSell
			direction = "downside"
		}

		signal := types.TradingSignal{
			Type:       sigType,
			AssetID:    asset,
			Price:      bars[n-1].Average,
			Strength:   clamp(intensity, squeezeStrengthFloor, 1),
			Confidence: clamp01(0.5 + 0.3*intensity + lengthBonus),
			Reason:     fmt.Sprintf("%s breakout after %d-bar bandwidth squeeze", direction, runLen),
			Metadata: map[string]interface{}{
				"squeezeBars":  runLen,
				"minBandwidth": minBandwidth,
				"threshold":    cfg.squeezeThreshold,
				"percentB":     pctB,
			},
			Timestamp: ac.Timestamp,
		}
		return []types.TradingSignal{signal}, chart, nil
	})
}

// squeezeRun measures the run of consecutive in-squeeze bars ending at
// index end, scanning backwards. A NaN bandwidth entry terminates the run:
// two squeezes separated by a missing value never merge.
func squeezeRun(bandwidth []float64, end int, threshold float64) (runLen int, minBandwidth float64) {
	minBandwidth = math.Inf(1)
	for i := end; i >= 0; i-- {
		if math.IsNaN(bandwidth[i]) || bandwidth[i] >= threshold {
			break
		}
		runLen++
		if bandwidth[i] < minBandwidth {
			minBandwidth = bandwidth[i]
		}
	}
	if runLen == 0 {
		minBandwidth = 0
	}
	return runLen, minBandwidth
}

// ConfigSchema describes the strategy's configuration keys.
func (s *BollingerSqueezeStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"period":               {Type: "integer", Default: defaultSqueezePeriod, Min: fptr(2), Max: fptr(200), Description: "Bollinger band period"},
		"stdDev":               {Type: "number", Default: defaultSqueezeStdDev, Min: fptr(0.1), Max: fptr(5), Description: "Standard deviation multiplier"},
		"squeezeThreshold":     {Type: "number", Default: defaultSqueezeThreshold, Min: fptr(0), Description: "Bandwidth below this value counts as in-squeeze"},
		"minSqueezeBars":       {Type: "integer", Default: defaultMinSqueezeBars, Min: fptr(1), Max: fptr(100), Description: "Minimum consecutive in-squeeze bars before a breakout qualifies"},
		"breakoutConfirmation": {Type: "boolean", Default: true, Description: "Require price movement in the breakout direction"},
		"minConfidence":        {Type: "number", Default: defaultSqueezeMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
