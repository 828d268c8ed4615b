package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "BYBIT_TESTNET", "INDICATOR_CACHE_SIZE", "SCAN_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Exchange.Testnet)
	assert.Equal(t, 512, cfg.Indicators.CacheSize)
	assert.Equal(t, time.Hour, cfg.Scan.Interval)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BYBIT_TESTNET", "false")
	t.Setenv("INDICATOR_CACHE_SIZE", "64")
	t.Setenv("SCAN_INTERVAL", "15m")
	t.Setenv("SCAN_MIN_CONFIDENCE", "0.7")

	cfg := Load()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Exchange.Testnet)
	assert.Equal(t, 64, cfg.Indicators.CacheSize)
	assert.Equal(t, 15*time.Minute, cfg.Scan.Interval)
	assert.Equal(t, 0.7, cfg.Scan.MinConfidence)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("INDICATOR_CACHE_SIZE", "lots")
	t.Setenv("SCAN_INTERVAL", "soon")

	cfg := Load()
	assert.Equal(t, 512, cfg.Indicators.CacheSize)
	assert.Equal(t, time.Hour, cfg.Scan.Interval)
}

func writeScanConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScanConfig(t *testing.T) {
	path := writeScanConfig(t, `{
		"provider": "csv",
		"assets": [
			{"assetId": "BTC", "source": "testdata/btc.csv"},
			{"assetId": "ETH", "source": "testdata/eth.csv"}
		],
		"strategies": [
			{"name": "rsi", "config": {"period": 10, "minConfidence": 0}},
			{"name": "macd-cross"}
		]
	}`)

	cfg, err := LoadScanConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Provider)
	require.Len(t, cfg.Assets, 2)
	require.Len(t, cfg.Strategies, 2)

	// JSON numbers decode as float64; explicit zero must survive the trip.
	assert.Equal(t, float64(10), cfg.Strategies[0].Config["period"])
	v, ok := cfg.Strategies[0].Config["minConfidence"]
	require.True(t, ok)
	assert.Equal(t, float64(0), v)
}

func TestScanConfig_LookbackWindow(t *testing.T) {
	cfg := &ScanConfig{Lookback: "36h"}
	window, err := cfg.LookbackWindow()
	require.NoError(t, err)
	assert.Equal(t, 36*time.Hour, window)

	cfg = &ScanConfig{}
	window, err = cfg.LookbackWindow()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), window)

	_, err = (&ScanConfig{Lookback: "soon"}).LookbackWindow()
	assert.Error(t, err)
	_, err = (&ScanConfig{Lookback: "-2h"}).LookbackWindow()
	assert.Error(t, err)
}

func TestScanConfig_DateRange(t *testing.T) {
	start, end, bounded, err := (&ScanConfig{StartDate: "2024-01-02", EndDate: "2024-01-03"}).DateRange()
	require.NoError(t, err)
	require.True(t, bounded)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), start)
	// The end day is included whole.
	assert.True(t, end.After(time.Date(2024, 1, 3, 23, 0, 0, 0, time.UTC)))

	_, _, bounded, err = (&ScanConfig{}).DateRange()
	require.NoError(t, err)
	assert.False(t, bounded)

	_, _, _, err = (&ScanConfig{StartDate: "yesterday"}).DateRange()
	assert.Error(t, err)
	_, _, _, err = (&ScanConfig{StartDate: "2024-01-03", EndDate: "2024-01-02"}).DateRange()
	assert.Error(t, err)
}

func TestLoadScanConfig_RejectsMalformedWindow(t *testing.T) {
	path := writeScanConfig(t, `{
		"lookback": "soon",
		"assets": [{"assetId": "BTC", "source": "a.csv"}],
		"strategies": [{"name": "rsi"}]
	}`)
	_, err := LoadScanConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookback")

	path = writeScanConfig(t, `{
		"csvFormat": "parquet",
		"assets": [{"assetId": "BTC", "source": "a.csv"}],
		"strategies": [{"name": "rsi"}]
	}`)
	_, err = LoadScanConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csvFormat")
}

func TestLoadScanConfig_RejectsDuplicateAssets(t *testing.T) {
	path := writeScanConfig(t, `{
		"assets": [
			{"assetId": "BTC", "source": "a.csv"},
			{"assetId": "BTC", "source": "b.csv"}
		],
		"strategies": [{"name": "rsi"}]
	}`)

	_, err := LoadScanConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate asset")
}

func TestLoadScanConfig_RejectsEmptySections(t *testing.T) {
	path := writeScanConfig(t, `{"assets": [], "strategies": []}`)
	_, err := LoadScanConfig(path)
	assert.Error(t, err)
}

func TestLoadScanConfig_MissingFile(t *testing.T) {
	_, err := LoadScanConfig("/nonexistent/scan.json")
	assert.Error(t, err)
}
