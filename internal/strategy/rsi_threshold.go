package strategy

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

const (
	defaultRSIPeriod        = 14
	defaultRSIOversold      = 30.0
	defaultRSIOverbought    = 70.0
	defaultRSIMinConfidence = 0.5
)

// RSIThresholdStrategy signals when the RSI crosses into oversold or
// overbought territory.
type RSIThresholdStrategy struct {
	baseStrategy
}

type rsiThresholdConfig struct {
	period        int
	oversold      float64
	overbought    float64
	minConfidence float64
}

// NewRSIThresholdStrategy creates the RSI threshold strategy.
func NewRSIThresholdStrategy(svc *indicators.Service, log *logrus.Logger) *RSIThresholdStrategy {
	return &RSIThresholdStrategy{baseStrategy: newBase("rsi", svc, log)}
}

func (s *RSIThresholdStrategy) configWithDefaults(cfg types.StrategyConfig) rsiThresholdConfig {
	return rsiThresholdConfig{
		period:        intOption(cfg, "period", defaultRSIPeriod),
		oversold:      floatOption(cfg, "oversold", defaultRSIOversold),
		overbought:    floatOption(cfg, "overbought", defaultRSIOverbought),
		minConfidence: floatOption(cfg, "minConfidence", defaultRSIMinConfidence),
	}
}

func (s *RSIThresholdStrategy) minBars(cfg rsiThresholdConfig) int {
	return cfg.period + 5
}

// CanExecute reports whether any asset in the context has enough data.
func (s *RSIThresholdStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute runs RSI threshold detection over every asset in the context.
func (s *RSIThresholdStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
	cfg := s.configWithDefaults(ac.Config)

	return s.run(ac, s.minBars(cfg), cfg.minConfidence, func(asset string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error) {
		res, err := s.svc.CalculateRSI(indicators.Request{
			AssetID: asset,
			Bars:    bars,
			Period:  cfg.period,
		}, s.override)
		if err != nil {
			return nil, nil, err
		}

		chart := []types.ChartSeries{{AssetID: asset, Name: "rsi", Values: res.Values}}

		current := res.Values[len(res.Values)-1]
		if !isValue(current) {
			return nil, chart, nil
		}

		price := bars[len(bars)-1].Average
		var signals []types.TradingSignal
		switch {
		case current <= cfg.oversold:
			dist := cfg.oversold - current
			signals = append(signals, types.TradingSignal{
				Type:       types.SignalBuy,
				AssetID:    asset,
				Price:      price,
				Strength:   clamp(0.3+dist/cfg.oversold, 0.3, 1),
				Confidence: clamp01(0.5 + dist/50),
				Reason:     fmt.Sprintf("RSI %.1f at or below oversold threshold %.1f", current, cfg.oversold),
				Metadata:   map[string]interface{}{"rsi": current, "threshold": cfg.oversold},
				Timestamp:  ac.Timestamp,
			})
		case current >= cfg.overbought:
			dist := current - cfg.overbought
			signals = append(signals, types.TradingSignal{
				Type:       types.SignalSell,
				AssetID:    asset,
				Price:      price,
				Strength:   clamp(0.3+dist/(100-cfg.overbought), 0.3, 1),
				Confidence: clamp01(0.5 + dist/50),
				Reason:     fmt.Sprintf("RSI %.1f at or above overbought threshold %.1f", current, cfg.overbought),
				Metadata:   map[string]interface{}{"rsi": current, "threshold": cfg.overbought},
				Timestamp:  ac.Timestamp,
			})
		}
		return signals, chart, nil
	})
}

// ConfigSchema describes the strategy's configuration keys.
func (s *RSIThresholdStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"period":        {Type: "integer", Default: defaultRSIPeriod, Min: fptr(2), Max: fptr(200), Description: "RSI lookback period"},
		"oversold":      {Type: "number", Default: defaultRSIOversold, Min: fptr(0), Max: fptr(100), Description: "RSI level treated as oversold"},
		"overbought":    {Type: "number", Default: defaultRSIOverbought, Min: fptr(0), Max: fptr(100), Description: "RSI level treated as overbought"},
		"minConfidence": {Type: "number", Default: defaultRSIMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
