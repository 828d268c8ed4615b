package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// FilterByPeriod keeps the bars within the trailing period measured from
// the most recent bar.
func FilterByPeriod(bars []types.PriceBar, period time.Duration) []types.PriceBar {
	if period <= 0 || len(bars) == 0 {
		return bars
	}
	cutoff := bars[len(bars)-1].Timestamp.Add(-period)
	for i, bar := range bars {
		if !bar.Timestamp.Before(cutoff) {
			return bars[i:]
		}
	}
	return bars[:0]
}

// FilterByDateRange keeps the bars inside [start, end], inclusive.
func FilterByDateRange(bars []types.PriceBar, start, end time.Time) []types.PriceBar {
	var filtered []types.PriceBar
	for _, bar := range bars {
		if !bar.Timestamp.Before(start) && !bar.Timestamp.After(end) {
			filtered = append(filtered, bar)
		}
	}
	return filtered
}

// ValidateTimeSequence fails when the series is out of order or contains
// duplicate timestamps.
func ValidateTimeSequence(bars []types.PriceBar) error {
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Before(bars[i-1].Timestamp) {
			return fmt.Errorf("bars out of order at index %d: %s comes after %s",
				i, bars[i].Timestamp.Format(time.RFC3339), bars[i-1].Timestamp.Format(time.RFC3339))
		}
		if bars[i].Timestamp.Equal(bars[i-1].Timestamp) {
			return fmt.Errorf("duplicate timestamp at index %d: %s", i, bars[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// SortByTimestamp returns a copy sorted chronologically.
func SortByTimestamp(bars []types.PriceBar) []types.PriceBar {
	sorted := make([]types.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// RemoveDuplicates drops bars repeating an earlier timestamp, keeping the
// first occurrence.
func RemoveDuplicates(bars []types.PriceBar) []types.PriceBar {
	if len(bars) <= 1 {
		return bars
	}
	seen := make(map[int64]bool, len(bars))
	var filtered []types.PriceBar
	for _, bar := range bars {
		ts := bar.Timestamp.UnixMilli()
		if !seen[ts] {
			seen[ts] = true
			filtered = append(filtered, bar)
		}
	}
	return filtered
}
