package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// emaRSIStubs builds overrides with explicit EMA series handed to both the
// fast and slow requests, distinguished by the requested period.
type periodSwitchEMA struct {
	byPeriod map[int]*indicators.Result
}

func (p *periodSwitchEMA) Calculate(opts indicators.Options) (*indicators.Result, error) {
	return p.byPeriod[opts.Period], nil
}

func (p *periodSwitchEMA) WarmupPeriod(opts indicators.Options) int { return 0 }

func (p *periodSwitchEMA) Validate(opts indicators.Options) error { return nil }

func TestEMARSI_BullishCrossWithRSIRoom(t *testing.T) {
	strat := NewEMARSIStrategy(testService(), testLogger())

	n := 30
	fast := flatSeries(n, 100)
	fast[n-2] = 99 // below slow
	fast[n-1] = 101
	slow := flatSeries(n, 100)

	strat.SetOverride(overrideKinds(map[indicators.Kind]indicators.Calculator{
		indicators.KindEMA: &periodSwitchEMA{byPeriod: map[int]*indicators.Result{
			9:  {Kind: indicators.KindEMA, Values: fast},
			21: {Kind: indicators.KindEMA, Values: slow},
		}},
		indicators.KindRSI: &stubCalculator{result: &indicators.Result{
			Kind: indicators.KindRSI, Values: flatSeries(n, 55),
		}},
	}))

	ac := makeContext("BTC", makeBars(flatSeries(n, 100)), types.StrategyConfig{"minConfidence": 0.0})
	require.True(t, strat.CanExecute(ac))

	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, types.SignalBuy, result.Signals[0].Type)
	assert.Contains(t, result.Signals[0].Reason, "crossed above")
}

func TestEMARSI_OverboughtRSIBlocksBuy(t *testing.T) {
	strat := NewEMARSIStrategy(testService(), testLogger())

	n := 30
	fast := flatSeries(n, 100)
	fast[n-2] = 99
	fast[n-1] = 101
	slow := flatSeries(n, 100)

	strat.SetOverride(overrideKinds(map[indicators.Kind]indicators.Calculator{
		indicators.KindEMA: &periodSwitchEMA{byPeriod: map[int]*indicators.Result{
			9:  {Kind: indicators.KindEMA, Values: fast},
			21: {Kind: indicators.KindEMA, Values: slow},
		}},
		indicators.KindRSI: &stubCalculator{result: &indicators.Result{
			Kind: indicators.KindRSI, Values: flatSeries(n, 75),
		}},
	}))

	ac := makeContext("BTC", makeBars(flatSeries(n, 100)), types.StrategyConfig{"minConfidence": 0.0})
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	assert.Empty(t, result.Signals)
}

func TestEMARSI_NoCrossIsQuiet(t *testing.T) {
	strat := NewEMARSIStrategy(testService(), testLogger())

	// A steady uptrend keeps the fast EMA above the slow EMA throughout.
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	ac := makeContext("BTC", makeBars(values), types.StrategyConfig{"minConfidence": 0.0})

	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	assert.Empty(t, result.Signals)
}

func TestRSIHeadroomConfidence_ThresholdAtFiftyIsNeutral(t *testing.T) {
	// threshold-50 is the headroom denominator; at exactly 50 it degrades to
	// the neutral midpoint instead of dividing by zero.
	assert.InDelta(t, 0.65, rsiHeadroomConfidence(45, 50, true), 1e-9)
}

func TestCrossoverStrength_ZeroSlowEMAFloors(t *testing.T) {
	assert.Equal(t, 0.3, crossoverStrength(1, 0))
}

func TestBollingerBreakout_UpperBandCrossIsBuy(t *testing.T) {
	strat := NewBollingerBreakoutStrategy(testService(), testLogger())

	n := 30
	pctB := flatSeries(n, 0.8)
	pctB[n-1] = 1.1
	bw := flatSeries(n, 0.1)
	bw[n-1] = 0.15
	strat.SetOverride(overrideKinds(map[indicators.Kind]indicators.Calculator{
		indicators.KindBollinger: &stubCalculator{result: &indicators.Result{
			Kind:      indicators.KindBollinger,
			PercentB:  pctB,
			Bandwidth: bw,
		}},
	}))

	ac := makeContext("BTC", makeBars(flatSeries(n, 100)), types.StrategyConfig{"minConfidence": 0.0})
	require.True(t, strat.CanExecute(ac))

	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, types.SignalBuy, result.Signals[0].Type)
	assert.GreaterOrEqual(t, result.Signals[0].Strength, 0.4)
}

func TestBollingerBreakout_AlreadyOutsideIsQuiet(t *testing.T) {
	strat := NewBollingerBreakoutStrategy(testService(), testLogger())

	// %B was already above 1 on the previous bar: no fresh cross.
	n := 30
	pctB := flatSeries(n, 1.2)
	strat.SetOverride(overrideKinds(map[indicators.Kind]indicators.Calculator{
		indicators.KindBollinger: &stubCalculator{result: &indicators.Result{
			Kind:      indicators.KindBollinger,
			PercentB:  pctB,
			Bandwidth: flatSeries(n, 0.1),
		}},
	}))

	ac := makeContext("BTC", makeBars(flatSeries(n, 100)), types.StrategyConfig{"minConfidence": 0.0})
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	assert.Empty(t, result.Signals)
}

func TestBollingerBreakout_LowerBandCrossIsSell(t *testing.T) {
	strat := NewBollingerBreakoutStrategy(testService(), testLogger())

	n := 30
	pctB := flatSeries(n, 0.2)
	pctB[n-1] = -0.1
	strat.SetOverride(overrideKinds(map[indicators.Kind]indicators.Calculator{
		indicators.KindBollinger: &stubCalculator{result: &indicators.Result{
			Kind:      indicators.KindBollinger,
			PercentB:  pctB,
			Bandwidth: flatSeries(n, 0.1),
		}},
	}))

	ac := makeContext("BTC", makeBars(flatSeries(n, 100)), types.StrategyConfig{"minConfidence": 0.0})
	result := strat.Execute(nil, ac)
	require.True(t, result.Success)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, types.SignalSell, result.Signals[0].Type)
}
