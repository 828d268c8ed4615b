package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

func TestTrailingStops_RatchetNeverLoosens(t *testing.T) {
	// Four bars, ATR period 3, multiplier 2.5. The highest high in every
	// window is 105, so the first valid stop is 105 - 3*2.5 = 97.5. The ATR
	// spike to 8 on the last bar would place the raw stop at 85, but the
	// ratchet holds it at 97.5.
	bars := []types.PriceBar{
		{Average: 103, High: 104, Low: 101},
		{Average: 104, High: 105, Low: 102},
		{Average: 104, High: 105, Low: 102},
		{Average: 103, High: 105, Low: 99},
	}
	atr := []float64{math.NaN(), math.NaN(), 3, 8}

	stops, triggered := trailingStops(bars, atr, 3, 2.5, false, true)

	assert.True(t, math.IsNaN(stops[1]))
	assert.InDelta(t, 97.5, stops[2], 1e-9)
	assert.InDelta(t, 97.5, stops[3], 1e-9)
	assert.False(t, triggered[2])
	assert.False(t, triggered[3])
}

func TestTrailingStops_TriggerOnLowBreach(t *testing.T) {
	bars := []types.PriceBar{
		{Average: 103, High: 104, Low: 101},
		{Average: 104, High: 105, Low: 102},
		{Average: 104, High: 105, Low: 102},
		{Average: 98, High: 99, Low: 97},
	}
	atr := []float64{math.NaN(), math.NaN(), 3, 3}

	stops, triggered := trailingStops(bars, atr, 3, 2.5, false, true)

	// Low 97 is under the ratcheted 97.5 stop.
	assert.InDelta(t, 97.5, stops[3], 1e-9)
	assert.True(t, triggered[3])
}

func TestTrailingStops_AverageTriggerWhenHighLowOff(t *testing.T) {
	bars := []types.PriceBar{
		{Average: 103, High: 104, Low: 101},
		{Average: 104, High: 105, Low: 102},
		{Average: 104, High: 105, Low: 102},
		{Average: 98, High: 99, Low: 97},
	}
	atr := []float64{math.NaN(), math.NaN(), 3, 3}

	_, triggered := trailingStops(bars, atr, 3, 2.5, false, false)

	// Average 98 stays above the 97.5 stop even though the low pierced it.
	assert.False(t, triggered[3])
}

func TestTrailingStops_ShortDirectionRatchetsDown(t *testing.T) {
	bars := []types.PriceBar{
		{Average: 103, High: 104, Low: 102},
		{Average: 102, High: 103, Low: 100},
		{Average: 101, High: 102, Low: 100},
		{Average: 101, High: 102, Low: 100},
	}
	atr := []float64{math.NaN(), math.NaN(), 2, 5}

	stops, _ := trailingStops(bars, atr, 3, 2.0, true, true)

	// First valid short stop: lowest low 100 + 2*2 = 104. The ATR spike
	// would loosen it to 110; the ratchet keeps 104.
	assert.InDelta(t, 104.0, stops[2], 1e-9)
	assert.InDelta(t, 104.0, stops[3], 1e-9)
}

func TestATRTrailingStop_EmitsStopLoss(t *testing.T) {
	strat := NewATRTrailingStopStrategy(testService(), testLogger())

	// A long climb followed by a crash through the stop.
	values := make([]float64, 40)
	for i := 0; i < 35; i++ {
		values[i] = 100 + float64(i)
	}
	for i := 35; i < 40; i++ {
		values[i] = 134 - float64(i-34)*12
	}
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{
		"atrPeriod":     5,
		"multiplier":    1.5,
		"minConfidence": 0.0,
	})

	require.True(t, strat.CanExecute(ac))
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)

	require.NotEmpty(t, result.Signals)
	sig := result.Signals[0]
	assert.Equal(t, types.SignalStopLoss, sig.Type)
	assert.GreaterOrEqual(t, sig.Strength, 0.4)
	assert.LessOrEqual(t, sig.Strength, 1.0)
	assert.Contains(t, sig.Reason, "trailing stop breached")
}

func TestATRTrailingStop_NoSignalInSteadyTrend(t *testing.T) {
	strat := NewATRTrailingStopStrategy(testService(), testLogger())

	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})

	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	assert.Empty(t, result.Signals)

	// The stop series is still reported for charting.
	require.NotEmpty(t, result.ChartData)
	assert.Equal(t, "trailing_stop_long", result.ChartData[0].Name)
}

func TestATRTrailingStop_BothDirectionsChartTwoSeries(t *testing.T) {
	strat := NewATRTrailingStopStrategy(testService(), testLogger())

	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + float64(i%3)
	}
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{
		"direction":     "both",
		"minConfidence": 1.1, // suppress signals, chart data only
	})

	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	require.Len(t, result.ChartData, 2)
	assert.Equal(t, "trailing_stop_long", result.ChartData[0].Name)
	assert.Equal(t, "trailing_stop_short", result.ChartData[1].Name)
}
