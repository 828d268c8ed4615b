package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// CSVProvider loads price bars from CSV files.
type CSVProvider struct {
	format CSVColumnMapping
	log    *logrus.Logger
}

// NewCSVProvider creates a CSV provider with the default column mapping.
func NewCSVProvider(log *logrus.Logger) *CSVProvider {
	return NewCSVProviderWithFormat(DefaultCSVFormat, log)
}

// NewCSVProviderWithFormat creates a CSV provider with a custom mapping.
func NewCSVProviderWithFormat(format CSVColumnMapping, log *logrus.Logger) *CSVProvider {
	if log == nil {
		log = logrus.New()
	}
	return &CSVProvider{format: format, log: log}
}

// Name identifies the provider.
func (p *CSVProvider) Name() string {
	return "csv"
}

// LoadBars reads bar rows from the file at source. Malformed rows are
// logged and skipped rather than aborting the load.
func (p *CSVProvider) LoadBars(_ context.Context, source string) ([]types.PriceBar, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open bar file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	var bars []types.PriceBar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line+1, err)
		}
		line++

		bar, ok := p.parseRecord(record, line)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func (p *CSVProvider) parseRecord(record []string, line int) (types.PriceBar, bool) {
	f := p.format
	if len(record) < f.MinColumns {
		p.log.WithField("line", line).Warnf("expected at least %d columns, got %d, skipping", f.MinColumns, len(record))
		return types.PriceBar{}, false
	}

	ts, err := time.Parse(f.DateFormat, record[f.TimestampCol])
	if err != nil {
		// Exchange exports frequently use millisecond epochs instead.
		ms, msErr := strconv.ParseInt(record[f.TimestampCol], 10, 64)
		if msErr != nil {
			p.log.WithField("line", line).Warnf("invalid timestamp %q, skipping: %v", record[f.TimestampCol], err)
			return types.PriceBar{}, false
		}
		ts = time.UnixMilli(ms)
	}

	avg, err := strconv.ParseFloat(record[f.AverageCol], 64)
	if err != nil {
		p.log.WithField("line", line).Warnf("invalid average price %q, skipping", record[f.AverageCol])
		return types.PriceBar{}, false
	}
	high, err := strconv.ParseFloat(record[f.HighCol], 64)
	if err != nil {
		p.log.WithField("line", line).Warnf("invalid high price %q, skipping", record[f.HighCol])
		return types.PriceBar{}, false
	}
	low, err := strconv.ParseFloat(record[f.LowCol], 64)
	if err != nil {
		p.log.WithField("line", line).Warnf("invalid low price %q, skipping", record[f.LowCol])
		return types.PriceBar{}, false
	}

	if avg <= 0 || high <= 0 || low <= 0 {
		p.log.WithField("line", line).Warn("non-positive price, skipping")
		return types.PriceBar{}, false
	}
	if high < low || avg > high || avg < low {
		p.log.WithField("line", line).Warn("inconsistent high/low/average, skipping")
		return types.PriceBar{}, false
	}

	return types.PriceBar{Timestamp: ts, Average: avg, High: high, Low: low}, true
}

// ValidateBars checks price sanity and chronological order.
func (p *CSVProvider) ValidateBars(bars []types.PriceBar) error {
	return ValidateBars(bars)
}

// ValidateBars checks a bar series for positive, consistent prices and
// strictly increasing timestamps.
func ValidateBars(bars []types.PriceBar) error {
	if len(bars) == 0 {
		return fmt.Errorf("no bars provided")
	}
	for i, bar := range bars {
		if bar.Average <= 0 || bar.High <= 0 || bar.Low <= 0 {
			return fmt.Errorf("invalid bar at index %d: prices must be positive", i)
		}
		if bar.High < bar.Low {
			return fmt.Errorf("invalid bar at index %d: high (%.4f) is below low (%.4f)", i, bar.High, bar.Low)
		}
		if bar.Average > bar.High || bar.Average < bar.Low {
			return fmt.Errorf("invalid bar at index %d: average (%.4f) outside [%.4f, %.4f]", i, bar.Average, bar.Low, bar.High)
		}
		if i > 0 && !bar.Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("invalid bar at index %d: timestamps must be strictly increasing", i)
		}
	}
	return nil
}
