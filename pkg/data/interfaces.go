package data

import (
	"context"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// Provider loads historical price bars for an asset from some source.
type Provider interface {
	// LoadBars loads the bar history identified by source, which is
	// provider-specific: a file path for the CSV provider, a trading pair
	// symbol for the exchange provider.
	LoadBars(ctx context.Context, source string) ([]types.PriceBar, error)

	// ValidateBars checks the integrity of a loaded bar series.
	ValidateBars(bars []types.PriceBar) error

	// Name identifies the provider in logs and reports.
	Name() string
}

// BarCache stores loaded bar series keyed by source.
type BarCache interface {
	Get(key string) ([]types.PriceBar, bool)
	Set(key string, bars []types.PriceBar)
	Clear()
	Size() int
}

// CSVColumnMapping defines column positions and the timestamp layout for a
// CSV bar file.
type CSVColumnMapping struct {
	TimestampCol int
	AverageCol   int
	HighCol      int
	LowCol       int
	MinColumns   int
	DateFormat   string
}

// DefaultCSVFormat reads "timestamp,average,high,low" rows.
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	AverageCol:   1,
	HighCol:      2,
	LowCol:       3,
	MinColumns:   4,
	DateFormat:   "2006-01-02 15:04:05",
}

// OHLCVCSVFormat reads standard exchange export rows, taking the close as
// the bar average.
var OHLCVCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	AverageCol:   4,
	HighCol:      2,
	LowCol:       3,
	MinColumns:   6,
	DateFormat:   "2006-01-02 15:04:05",
}
