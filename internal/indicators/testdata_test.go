package indicators

import (
	"time"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// makeBars builds hourly price bars around the given averages, with the
// high one above and the low one below each average.
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

// rampValues generates a linearly increasing series starting at 100.
func rampValues(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	return values
}

// flatValues generates a constant series.
func flatValues(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}
