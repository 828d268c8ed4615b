package types

import "time"

// PriceBar is one aggregated price period for an asset.
// Series are ordered oldest to newest; the last entry is the current bar.
type PriceBar struct {
	Timestamp time.Time
	Average   float64
	High      float64
	Low       float64
}

// Averages extracts the average-price series from a bar slice.
func Averages(bars []PriceBar) []float64 {
	values := make([]float64, len(bars))
	for i, bar := range bars {
		values[i] = bar.Average
	}
	return values
}

// Highs extracts the high series from a bar slice.
func Highs(bars []PriceBar) []float64 {
	values := make([]float64, len(bars))
	for i, bar := range bars {
		values[i] = bar.High
	}
	return values
}

// Lows extracts the low series from a bar slice.
func Lows(bars []PriceBar) []float64 {
	values := make([]float64, len(bars))
	for i, bar := range bars {
		values[i] = bar.Low
	}
	return values
}
