package strategy

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testService() *indicators.Service {
	return indicators.NewService(testLogger())
}

// makeBars builds hourly bars with the high one above and the low one
// below each average.
func makeBars(averages []float64) []types.PriceBar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, len(averages))
	for i, v := range averages {
		bars[i] = types.PriceBar{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Average:   v,
			High:      v + 1,
			Low:       v - 1,
		}
	}
	return bars
}

func makeContext(asset string, bars []types.PriceBar, cfg types.StrategyConfig) *types.AlgorithmContext {
	return &types.AlgorithmContext{
		Assets:    []string{asset},
		Bars:      map[string][]types.PriceBar{asset: bars},
		Timestamp: bars[len(bars)-1].Timestamp,
		Config:    cfg,
	}
}

// stubCalculator returns a fixed result regardless of input, for driving a
// strategy through the calculator override hook.
type stubCalculator struct {
	result *indicators.Result
	err    error
}

func (s *stubCalculator) Calculate(indicators.Options) (*indicators.Result, error) {
	return s.result, s.err
}

func (s *stubCalculator) WarmupPeriod(indicators.Options) int { return 0 }

func (s *stubCalculator) Validate(indicators.Options) error { return s.err }

// overrideKinds maps indicator kinds to stub calculators; unlisted kinds
// fall back to the real ones.
func overrideKinds(stubs map[indicators.Kind]indicators.Calculator) indicators.Override {
	return func(kind indicators.Kind) indicators.Calculator {
		return stubs[kind]
	}
}

func flatSeries(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
