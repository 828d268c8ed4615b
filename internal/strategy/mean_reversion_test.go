package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

func TestMeanReversion_ZeroDeviationYieldsNoSignal(t *testing.T) {
	strat := NewMeanReversionStrategy(testService(), testLogger())

	// A perfectly flat series has zero standard deviation. The z-score is
	// undefined; the strategy must stay silent instead of emitting an
	// infinite score.
	ac := makeContext("BTC", makeBars(flatSeries(30, 100)), types.StrategyConfig{"minConfidence": 0.0})

	require.True(t, strat.CanExecute(ac))
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	assert.Empty(t, result.Signals)

	// The chart series carries the NaN sentinel at the degenerate bars.
	require.Len(t, result.ChartData, 1)
	z := result.ChartData[0].Values
	assert.True(t, math.IsNaN(z[len(z)-1]))
}

func TestMeanReversion_DeepDipIsBuy(t *testing.T) {
	strat := NewMeanReversionStrategy(testService(), testLogger())

	// Mild noise around 100 and then a violent drop on the last bar.
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 + float64(i%2)
	}
	values[29] = 80

	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	require.Len(t, result.Signals, 1)

	sig := result.Signals[0]
	assert.Equal(t, types.SignalBuy, sig.Type)
	assert.GreaterOrEqual(t, sig.Strength, 0.3)
	assert.LessOrEqual(t, sig.Strength, 1.0)
	assert.Contains(t, sig.Reason, "below its 20-bar mean")
}

func TestMeanReversion_SpikeIsSell(t *testing.T) {
	strat := NewMeanReversionStrategy(testService(), testLogger())

	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 + float64(i%2)
	}
	values[29] = 120

	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, types.SignalSell, result.Signals[0].Type)
}

func TestMeanReversion_ExactThresholdHolds(t *testing.T) {
	strat := NewMeanReversionStrategy(testService(), testLogger())

	// Pin the mean at 100 and the deviation at 1 so the last bar's z-score
	// is exact. The default threshold is 2.0 and the bounds are strict: a
	// z-score of exactly +/-2 emits nothing.
	n := 30
	strat.SetOverride(overrideKinds(map[indicators.Kind]indicators.Calculator{
		indicators.KindSMA: &stubCalculator{result: &indicators.Result{
			Kind: indicators.KindSMA, Values: flatSeries(n, 100),
		}},
		indicators.KindStdDev: &stubCalculator{result: &indicators.Result{
			Kind: indicators.KindStdDev, Values: flatSeries(n, 1),
		}},
	}))

	for _, last := range []float64{102, 98} {
		values := flatSeries(n, 100)
		values[n-1] = last
		ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})
		result := strat.Execute(nil, ac)
		require.True(t, result.Success)
		assert.Empty(t, result.Signals, "z-score exactly at the threshold must hold")
	}

	values := flatSeries(n, 100)
	values[n-1] = 102.5
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})
	result := strat.Execute(nil, ac)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, types.SignalSell, result.Signals[0].Type)
}

func TestMeanReversion_InsideThresholdIsQuiet(t *testing.T) {
	strat := NewMeanReversionStrategy(testService(), testLogger())

	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 + float64(i%2)
	}
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})

	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	assert.Empty(t, result.Signals)
}
