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
	defaultMeanRevPeriod        = 20
	defaultMeanRevThreshold     = 2.0
	defaultMeanRevMinConfidence = 0.5
)

// MeanReversionStrategy signals when the price z-score against its moving
// average exceeds a threshold. A zero standard deviation yields no signal
// and a sentinel z-score, never an infinity.
type MeanReversionStrategy struct {
	baseStrategy
}

type meanReversionConfig struct {
	period        int
	threshold     float64
	minConfidence float64
}

// NewMeanReversionStrategy creates the mean reversion strategy.
func NewMeanReversionStrategy(svc *indicators.Service, log *logrus.Logger) *MeanReversionStrategy {
	return &MeanReversionStrategy{baseStrategy: newBase("mean-reversion", svc, log)}
}

func (s *MeanReversionStrategy) configWithDefaults(cfg types.StrategyConfig) meanReversionConfig {
	return meanReversionConfig{
		period:        intOption(cfg, "period", defaultMeanRevPeriod),
		threshold:     floatOption(cfg, "threshold", defaultMeanRevThreshold),
		minConfidence: floatOption(cfg, "minConfidence", defaultMeanRevMinConfidence),
	}
}

func (s *MeanReversionStrategy) minBars(cfg meanReversionConfig) int {
	return cfg.period + 5
}

// CanExecute reports whether any asset in the context has enough data.
func (s *MeanReversionStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute runs z-score detection over every asset in the context.
func (s *MeanReversionStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
	cfg := s.configWithDefaults(ac.Config)

	return s.run(ac, s.minBars(cfg), cfg.minConfidence, func(asset string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error) {
		req := indicators.Request{AssetID: asset, Bars: bars, Period: cfg.period}

		smaRes, err := s.svc.CalculateSMA(req, s.override)
		if err != nil {
			return nil, nil, err
		}
		sdRes, err := s.svc.CalculateStdDev(req, s.override)
		if err != nil {
			return nil, nil, err
		}

		// z-score series for charting; NaN where the deviation is zero or
		// the indicators are still warming up.
		n := len(bars)
		zSeries := make([]float64, n)
		for i := 0; i < n; i++ {
			sma := smaRes.Values[i]
			sd := sdRes.Values[i]
			if !isValue(sma) || !isValue(sd) || sd == 0 {
				zSeries[i] = math.NaN()
				continue
			}
			zSeries[i] = (bars[i].Average - sma) / sd
		}
		chart := []types.ChartSeries{{AssetID: asset, Name: "zscore", Values: zSeries}}

		z := zSeries[n-1]
		if !isValue(z) {
			// Degenerate deviation: report the sentinel, emit nothing.
			return nil, chart, nil
		}

		price := bars[n-1].Average
		var signals []types.TradingSignal
		if z < -cfg.threshold {
			signals = append(signals, types.TradingSignal{
				Type:       types.SignalBuy,
				AssetID:    asset,
				Price:      price,
				Strength:   clamp(0.3+(math.Abs(z)-cfg.threshold)/cfg.threshold, 0.3, 1),
				Confidence: clamp01(0.5 + (math.Abs(z)-cfg.threshold)*0.2),
				Reason:     fmt.Sprintf("price %.2f standard deviations below its %d-bar mean", math.Abs(z), cfg.period),
				Metadata:   map[string]interface{}{"zScore": z, "threshold": cfg.threshold},
				Timestamp:  ac.Timestamp,
			})
		} else if z > cfg.threshold {
			signals = append(signals, types.TradingSignal{
				Type:       types.SignalSell,
				AssetID:    asset,
				Price:      price,
				Strength:   clamp(0.3+(z-cfg.threshold)/cfg.threshold, 0.3, 1),
				Confidence: clamp01(0.5 + (z-cfg.threshold)*0.2),
				Reason:     fmt.Sprintf("price %.2f standard deviations above its %d-bar mean", z, cfg.period),
				Metadata:   map[string]interface{}{"zScore": z, "threshold": cfg.threshold},
				Timestamp:  ac.Timestamp,
			})
		}
		return signals, chart, nil
	})
}

// ConfigSchema describes the strategy's configuration keys.
func (s *MeanReversionStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"period":        {Type: "integer", Default: defaultMeanRevPeriod, Min: fptr(2), Max: fptr(200), Description: "Moving average and deviation period"},
		"threshold":     {Type: "number", Default: defaultMeanRevThreshold, Min: fptr(0.1), Max: fptr(5), Description: "z-score magnitude required for a signal"},
		"minConfidence": {Type: "number", Default: defaultMeanRevMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
