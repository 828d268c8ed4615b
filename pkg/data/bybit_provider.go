package data

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// KlineInterval is a Bybit kline interval code.
type KlineInterval string

const (
	Interval1m  KlineInterval = "1"
	Interval5m  KlineInterval = "5"
	Interval15m KlineInterval = "15"
	Interval30m KlineInterval = "30"
	Interval1h  KlineInterval = "60"
	Interval4h  KlineInterval = "240"
	Interval1d  KlineInterval = "D"
)

// BybitProviderConfig configures the exchange-backed bar provider.
type BybitProviderConfig struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Category  string
	Interval  KlineInterval
	Limit     int
}

// BybitProvider loads price bars from the Bybit kline endpoint. The kline
// close serves as the bar average.
type BybitProvider struct {
	client   *bybit_api.Client
	category string
	interval KlineInterval
	limit    int
	log      *logrus.Logger
}

// NewBybitProvider creates a Bybit-backed bar provider.
func NewBybitProvider(cfg BybitProviderConfig, log *logrus.Logger) *BybitProvider {
	if log == nil {
		log = logrus.New()
	}
	if cfg.Category == "" {
		cfg.Category = "spot"
	}
	if cfg.Interval == "" {
		cfg.Interval = Interval1h
	}
	if cfg.Limit <= 0 || cfg.Limit > 1000 {
		cfg.Limit = 200
	}

	baseURL := bybit_api.MAINNET
	if cfg.Testnet {
		baseURL = bybit_api.TESTNET
	}
	client := bybit_api.NewBybitHttpClient(cfg.APIKey, cfg.APISecret, bybit_api.WithBaseURL(baseURL))

	return &BybitProvider{
		client:   client,
		category: cfg.Category,
		interval: cfg.Interval,
		limit:    cfg.Limit,
		log:      log,
	}
}

// Name identifies the provider.
func (p *BybitProvider) Name() string {
	return "bybit"
}

// LoadBars fetches the most recent klines for the symbol given as source
// and returns them as chronologically ordered price bars.
func (p *BybitProvider) LoadBars(ctx context.Context, source string) ([]types.PriceBar, error) {
	params := map[string]interface{}{
		"category": p.category,
		"symbol":   source,
		"interval": string(p.interval),
		"limit":    p.limit,
	}

	result, err := p.client.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, fmt.Errorf("get klines for %s: %w", source, err)
	}

	bars, err := parseKlineResponse(result)
	if err != nil {
		return nil, fmt.Errorf("parse kline response for %s: %w", source, err)
	}

	p.log.WithFields(logrus.Fields{
		"symbol":   source,
		"interval": p.interval,
		"bars":     len(bars),
	}).Debug("fetched klines")
	return bars, nil
}

// ValidateBars checks the fetched series.
func (p *BybitProvider) ValidateBars(bars []types.PriceBar) error {
	return ValidateBars(bars)
}

// parseKlineResponse converts the raw API payload into price bars. Bybit
// returns klines newest first; the output is reversed into chronological
// order.
func parseKlineResponse(response interface{}) ([]types.PriceBar, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", response)
	}
	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	var klineResult struct {
		Symbol string     `json:"symbol"`
		List   [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("unmarshal kline result: %w", err)
	}

	bars := make([]types.PriceBar, 0, len(klineResult.List))
	// Kline rows are [startTime, open, high, low, close, volume, turnover].
	for i := len(klineResult.List) - 1; i >= 0; i-- {
		item := klineResult.List[i]
		if len(item) < 5 {
			continue
		}
		ms, err := strconv.ParseInt(item[0], 10, 64)
		if err != nil {
			continue
		}
		high := parseFloat(item[2])
		low := parseFloat(item[3])
		closePrice := parseFloat(item[4])
		if closePrice <= 0 || high <= 0 || low <= 0 {
			continue
		}
		bars = append(bars, types.PriceBar{
			Timestamp: time.UnixMilli(ms),
			Average:   closePrice,
			High:      high,
			Low:       low,
		})
	}
	return bars, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
