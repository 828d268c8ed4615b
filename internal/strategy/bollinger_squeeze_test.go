package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

func TestSqueezeRun_CountsConsecutiveBars(t *testing.T) {
	bandwidth := []float64{0.3, 0.08, 0.05, 0.07, 0.09}
	runLen, minBW := squeezeRun(bandwidth, len(bandwidth)-1, 0.1)

	assert.Equal(t, 4, runLen)
	assert.InDelta(t, 0.05, minBW, 1e-9)
}

func TestSqueezeRun_NaNGapNeverMergesRuns(t *testing.T) {
	// Two squeezes separated by a missing value: the scan must stop at the
	// gap and report only the most recent run.
	bandwidth := []float64{0.05, 0.05, 0.05, math.NaN(), 0.08, 0.09}
	runLen, minBW := squeezeRun(bandwidth, len(bandwidth)-1, 0.1)

	assert.Equal(t, 2, runLen)
	assert.InDelta(t, 0.08, minBW, 1e-9)
}

func TestSqueezeRun_ThresholdBarBreaks(t *testing.T) {
	bandwidth := []float64{0.05, 0.2, 0.06, 0.07}
	runLen, _ := squeezeRun(bandwidth, len(bandwidth)-1, 0.1)
	assert.Equal(t, 2, runLen)
}

func TestSqueezeRun_EmptyRun(t *testing.T) {
	runLen, minBW := squeezeRun([]float64{0.5, 0.6}, 1, 0.1)
	assert.Equal(t, 0, runLen)
	assert.Equal(t, 0.0, minBW)
}

// squeezeBollingerStub fabricates a Bollinger result with a controlled
// bandwidth history and a final-bar %B.
func squeezeBollingerStub(n int, bandwidth []float64, lastPctB float64) indicators.Override {
	pctB := flatSeries(n, 0.5)
	pctB[n-1] = lastPctB
	return overrideKinds(map[indicators.Kind]indicators.Calculator{
		indicators.KindBollinger: &stubCalculator{result: &indicators.Result{
			Kind:      indicators.KindBollinger,
			Bandwidth: bandwidth,
			PercentB:  pctB,
		}},
	})
}

func TestBollingerSqueeze_BreakoutAfterSqueeze(t *testing.T) {
	strat := NewBollingerSqueezeStrategy(testService(), testLogger())

	// Six tight bars, then the current bar expands past the threshold with
	// %B pointing up.
	n := 30
	bandwidth := flatSeries(n, 0.2)
	for i := n - 7; i < n-1; i++ {
		bandwidth[i] = 0.04
	}
	strat.SetOverride(squeezeBollingerStub(n, bandwidth, 0.9))

	// Rising close for the breakout confirmation.
	values := flatSeries(n, 100)
	values[n-1] = 102
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})

	require.True(t, strat.CanExecute(ac))
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	require.Len(t, result.Signals, 1)

	sig := result.Signals[0]
	assert.Equal(t, types.SignalBuy, sig.Type)
	assert.Equal(t, 6, sig.Metadata["squeezeBars"])
	// Intensity measures against the configured threshold: (0.1-0.04)/0.1.
	assert.InDelta(t, 0.6, sig.Strength, 1e-9)
}

func TestBollingerSqueeze_GapShortensRunBelowMinimum(t *testing.T) {
	strat := NewBollingerSqueezeStrategy(testService(), testLogger())

	// Plenty of tight bars in total, but a NaN gap leaves only three
	// consecutive ones, under the five-bar minimum.
	n := 30
	bandwidth := flatSeries(n, 0.04)
	bandwidth[n-1] = 0.2
	bandwidth[n-5] = math.NaN()
	strat.SetOverride(squeezeBollingerStub(n, bandwidth, 0.9))

	values := flatSeries(n, 100)
	values[n-1] = 102
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})

	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	assert.Empty(t, result.Signals)
}

func TestBollingerSqueeze_ConfirmationRejectsFlatPrice(t *testing.T) {
	strat := NewBollingerSqueezeStrategy(testService(), testLogger())

	n := 30
	bandwidth := flatSeries(n, 0.2)
	for i := n - 7; i < n-1; i++ {
		bandwidth[i] = 0.04
	}
	strat.SetOverride(squeezeBollingerStub(n, bandwidth, 0.9))

	// %B points up but price did not move, so confirmation fails.
	ac := makeContext("BTC", makeBars(flatSeries(n, 100)), types.StrategyConfig{"minConfidence": 0.0})
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	assert.Empty(t, result.Signals)
}

func TestBollingerSqueeze_DownsideBreakout(t *testing.T) {
	strat := NewBollingerSqueezeStrategy(testService(), testLogger())

	n := 30
	bandwidth := flatSeries(n, 0.2)
	for i := n - 7; i < n-1; i++ {
		bandwidth[i] = 0.04
	}
	strat.SetOverride(squeezeBollingerStub(n, bandwidth, 0.1))

	values := flatSeries(n, 100)
	values[n-1] = 98
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})

	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, types.SignalSell, result.Signals[0].Type)
}
