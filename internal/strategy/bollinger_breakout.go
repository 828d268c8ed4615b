package strategy

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

const (
	defaultBBPeriod           = 20
	defaultBBStdDev           = 2.0
	defaultBBMinConfidence    = 0.5
	bbBandwidthTrendLookback  = 5
	bbBreakoutStrengthFloor   = 0.4
)

// BollingerBreakoutStrategy signals when %B crosses outside the bands:
// above 1 for a buy, below 0 for a sell.
type BollingerBreakoutStrategy struct {
	baseStrategy
}

type bollingerBreakoutConfig struct {
	period        int
	stdDev        float64
	minConfidence float64
}

// NewBollingerBreakoutStrategy creates the Bollinger breakout strategy.
func NewBollingerBreakoutStrategy(svc *indicators.Service, log *logrus.Logger) *BollingerBreakoutStrategy {
	return &BollingerBreakoutStrategy{baseStrategy: newBase("bollinger-breakout", svc, log)}
}

func (s *BollingerBreakoutStrategy) configWithDefaults(cfg types.StrategyConfig) bollingerBreakoutConfig {
	return bollingerBreakoutConfig{
		period:        intOption(cfg, "period", defaultBBPeriod),
		stdDev:        floatOption(cfg, "stdDev", defaultBBStdDev),
		minConfidence: floatOption(cfg, "minConfidence", defaultBBMinConfidence),
	}
}

func (s *BollingerBreakoutStrategy) minBars(cfg bollingerBreakoutConfig) int {
	return cfg.period + bbBandwidthTrendLookback + 2
}

// CanExecute reports whether any asset in the context has enough data.
func (s *BollingerBreakoutStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute runs breakout detection over every asset in the context.
func (s *BollingerBreakoutStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
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

		chart := []types.ChartSeries{
			{AssetID: asset, Name: "percent_b", Values: res.PercentB},
			{AssetID: asset, Name: "bandwidth", Values: res.Bandwidth},
		}

		n := len(bars)
		prev, cur := res.PercentB[n-2], res.PercentB[n-1]
		if !isValue(prev) || !isValue(cur) {
			return nil, chart, nil
		}

		crossedAbove := prev <= 1 && cur > 1
		crossedBelow := prev >= 0 && cur < 0
		if !crossedAbove && !crossedBelow {
			return nil, chart, nil
		}

		magnitude := cur - 1
		sigType := types.SignalBuy
		direction := "above the upper band"
		if crossedBelow {
			magnitude = -cur
			sigType = types.SignalSell
			direction = "below the lower band"
		}

		signal := types.TradingSignal{
			Type:       sigType,
			AssetID:    asset,
			Price:      bars[n-1].Average,
			Strength:   clamp(bbBreakoutStrengthFloor+magnitude*3, bbBreakoutStrengthFloor, 1),
			Confidence: breakoutConfidence(res.Bandwidth, n, magnitude),
			Reason:     fmt.Sprintf("price broke %s (%%B %.2f)", direction, cur),
			Metadata: map[string]interface{}{
				"percentB":  cur,
				"bandwidth": finiteOr(res.Bandwidth[n-1], 0),
			},
			Timestamp: ac.Timestamp,
		}
		return []types.TradingSignal{signal}, chart, nil
	})
}

// breakoutConfidence rewards a breakout accompanied by expanding bandwidth.
func breakoutConfidence(bandwidth []float64, n int, magnitude float64) float64 {
	expansion := 0.0
	base := n - 1 - bbBandwidthTrendLookback
	if base >= 0 && isValue(bandwidth[base]) && isValue(bandwidth[n-1]) && bandwidth[base] > 0 {
		expansion = (bandwidth[n-1] - bandwidth[base]) / bandwidth[base]
	}
	return clamp01(0.45 + clamp(expansion, 0, 0.25) + clamp(magnitude, 0, 0.3))
}

// ConfigSchema describes the strategy's configuration keys.
func (s *BollingerBreakoutStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"period":        {Type: "integer", Default: defaultBBPeriod, Min: fptr(2), Max: fptr(200), Description: "Bollinger band period"},
		"stdDev":        {Type: "number", Default: defaultBBStdDev, Min: fptr(0.1), Max: fptr(5), Description: "Standard deviation multiplier"},
		"minConfidence": {Type: "number", Default: defaultBBMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
