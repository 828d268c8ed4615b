package strategy

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/internal/monitoring"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// perAssetFunc runs one strategy's detection for a single asset and returns
// its signals and optional chart series. An error skips the asset, not the run.
type perAssetFunc func(assetID string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error)

// baseStrategy carries the machinery every concrete strategy shares.
type baseStrategy struct {
	name     string
	svc      *indicators.Service
	log      *logrus.Logger
	override indicators.Override
}

func newBase(name string, svc *indicators.Service, log *logrus.Logger) baseStrategy {
	if log == nil {
		log = logrus.New()
	}
	return baseStrategy{name: name, svc: svc, log: log}
}

// Name returns the strategy name.
func (b *baseStrategy) Name() string {
	return b.name
}

// SetOverride installs a per-strategy calculator override. It is forwarded
// to the computation service on every indicator call.
func (b *baseStrategy) SetOverride(override indicators.Override) {
	b.override = override
}

func (b *baseStrategy) entry() *logrus.Entry {
	return b.log.WithField("strategy", b.name)
}

// hasEnoughData checks a single asset's series against the strategy minimum.
func (b *baseStrategy) hasEnoughData(bars []types.PriceBar, minBars int) bool {
	return len(bars) >= minBars
}

// anyAssetReady is the CanExecute check: true when at least one asset has
// enough data for the strategy's warmups.
func (b *baseStrategy) anyAssetReady(ac *types.AlgorithmContext, minBars int) bool {
	if ac == nil {
		return false
	}
	for _, asset := range ac.Assets {
		if b.hasEnoughData(ac.Bars[asset], minBars) {
			return true
		}
	}
	return false
}

// run is the shared execute skeleton: iterate assets in context order, skip
// assets with insufficient data, isolate per-asset failures, filter by
// minConfidence and never let a panic escape.
func (b *baseStrategy) run(ac *types.AlgorithmContext, minBars int, minConfidence float64, perAsset perAssetFunc) (result *types.AlgorithmResult) {
	defer func() {
		if r := recover(); r != nil {
			b.entry().Errorf("strategy run panicked: %v", r)
			monitoring.RecordStrategyRun(b.name, "error")
			result = &types.AlgorithmResult{
				Strategy: b.name,
				Success:  false,
				Signals:  []types.TradingSignal{},
				Error:    fmt.Sprintf("%v", r),
			}
		}
	}()

	result = &types.AlgorithmResult{
		Strategy: b.name,
		Success:  true,
		Signals:  []types.TradingSignal{},
		Metadata: map[string]interface{}{},
	}

	var skipped []string
	var failed []string
	for _, asset := range ac.Assets {
		bars := ac.Bars[asset]
		if !b.hasEnoughData(bars, minBars) {
			b.entry().WithFields(logrus.Fields{
				"asset":    asset,
				"bars":     len(bars),
				"required": minBars,
			}).Warn("skipping asset: insufficient data")
			monitoring.RecordAssetSkipped(b.name)
			skipped = append(skipped, asset)
			continue
		}

		signals, chart, err := perAsset(asset, bars)
		if err != nil {
			// One asset's failure must not abort the rest of the run.
			b.entry().WithField("asset", asset).Warnf("asset processing failed: %v", err)
			failed = append(failed, asset)
			continue
		}

		for _, sig := range signals {
			sig = sanitizeSignal(sig)
			if sig.Confidence >= minConfidence {
				result.Signals = append(result.Signals, sig)
				monitoring.RecordSignal(b.name, string(sig.Type))
			}
		}
		result.ChartData = append(result.ChartData, chart...)
	}

	if len(skipped) > 0 {
		result.Metadata["skippedAssets"] = skipped
	}
	if len(failed) > 0 {
		result.Metadata["failedAssets"] = failed
	}
	monitoring.RecordStrategyRun(b.name, "success")
	return result
}

// sanitizeSignal clamps strength and confidence into [0,1] and replaces any
// non-finite value with zero. Signals never carry NaN outward.
func sanitizeSignal(sig types.TradingSignal) types.TradingSignal {
	sig.Strength = clamp01(finiteOr(sig.Strength, 0))
	sig.Confidence = clamp01(finiteOr(sig.Confidence, 0))
	return sig
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func isValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validTail returns up to max trailing non-NaN entries of values[:end].
func validTail(values []float64, end, max int) []float64 {
	if end > len(values) {
		end = len(values)
	}
	var tail []float64
	for i := end - 1; i >= 0 && len(tail) < max; i-- {
		if isValue(values[i]) {
			tail = append(tail, values[i])
		}
	}
	return tail
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
