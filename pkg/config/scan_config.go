package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// StrategyRun selects one strategy and its configuration overrides.
type StrategyRun struct {
	Name   string               `json:"name"`
	Config types.StrategyConfig `json:"config,omitempty"`
}

// AssetSource maps an asset identifier to the source its bars load from.
type AssetSource struct {
	AssetID string `json:"assetId"`
	Source  string `json:"source"`
}

// ScanConfig describes one signal scan: which assets to load, how to trim
// their series, and which strategies to run over them.
type ScanConfig struct {
	Provider string `json:"provider"`

	// CSVFormat selects the column mapping for the CSV provider: "default"
	// (timestamp,average,high,low) or "ohlcv" (exchange export).
	CSVFormat string `json:"csvFormat,omitempty"`

	// Lookback trims each series to a trailing window (Go duration string,
	// e.g. "720h"). StartDate/EndDate ("2006-01-02") bound the scan to a
	// date range instead; both may be combined.
	Lookback  string `json:"lookback,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`

	Assets     []AssetSource `json:"assets"`
	Strategies []StrategyRun `json:"strategies"`
}

// LoadScanConfig reads and validates a scan configuration file.
func LoadScanConfig(path string) (*ScanConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scan config: %w", err)
	}

	var cfg ScanConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse scan config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the scan config for the mistakes a hand-edited file is
// likely to contain.
func (c *ScanConfig) Validate() error {
	if len(c.Assets) == 0 {
		return fmt.Errorf("scan config needs at least one asset")
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("scan config needs at least one strategy")
	}

	seen := make(map[string]bool, len(c.Assets))
	for i, asset := range c.Assets {
		if asset.AssetID == "" {
			return fmt.Errorf("asset %d has no assetId", i)
		}
		if asset.Source == "" {
			return fmt.Errorf("asset %q has no source", asset.AssetID)
		}
		if seen[asset.AssetID] {
			return fmt.Errorf("duplicate asset %q", asset.AssetID)
		}
		seen[asset.AssetID] = true
	}

	for i, run := range c.Strategies {
		if run.Name == "" {
			return fmt.Errorf("strategy %d has no name", i)
		}
	}

	switch strings.ToLower(c.CSVFormat) {
	case "", "default", "ohlcv":
	default:
		return fmt.Errorf("unknown csvFormat %q", c.CSVFormat)
	}
	if _, err := c.LookbackWindow(); err != nil {
		return err
	}
	if _, _, _, err := c.DateRange(); err != nil {
		return err
	}
	return nil
}

const scanDateLayout = "2006-01-02"

// LookbackWindow parses the trailing window, zero when unset.
func (c *ScanConfig) LookbackWindow() (time.Duration, error) {
	if c.Lookback == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Lookback)
	if err != nil {
		return 0, fmt.Errorf("invalid lookback %q: %w", c.Lookback, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("lookback must be positive, got %q", c.Lookback)
	}
	return d, nil
}

// DateRange parses the inclusive scan bounds. bounded is false when neither
// date is set; an unset side is left open.
func (c *ScanConfig) DateRange() (start, end time.Time, bounded bool, err error) {
	if c.StartDate == "" && c.EndDate == "" {
		return time.Time{}, time.Time{}, false, nil
	}

	end = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	if c.StartDate != "" {
		if start, err = time.Parse(scanDateLayout, c.StartDate); err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("invalid startDate %q: %w", c.StartDate, err)
		}
	}
	if c.EndDate != "" {
		day, parseErr := time.Parse(scanDateLayout, c.EndDate)
		if parseErr != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("invalid endDate %q: %w", c.EndDate, parseErr)
		}
		// The whole end day is in range.
		end = day.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false, fmt.Errorf("endDate %q precedes startDate %q", c.EndDate, c.StartDate)
	}
	return start, end, true, nil
}
