package strategy

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

const (
	defaultConfluenceEMAFast       = 9
	defaultConfluenceEMASlow       = 21
	defaultConfluenceRSIPeriod     = 14
	defaultConfluenceBBPeriod      = 20
	defaultConfluenceBBStdDev      = 2.0
	defaultConfluenceATRPeriod     = 14
	defaultConfluenceATRMultiplier = 2.0
	defaultMinBuyConfluence        = 2
	defaultMinSellConfluence       = 2
	defaultConfluenceMinConfidence = 0.6
)

// ConfluenceStrategy polls a vote from each enabled indicator (EMA trend,
// RSI level, MACD position, Bollinger %B) and signals only when enough of
// them agree. ATR is a pure volatility gate: it never votes, it only
// suppresses.
type ConfluenceStrategy struct {
	baseStrategy
}

type confluenceConfig struct {
	useEMA       bool
	useRSI       bool
	useMACD      bool
	useBollinger bool
	useATRFilter bool

	emaFastPeriod           int
	emaSlowPeriod           int
	rsiPeriod               int
	bbPeriod                int
	bbStdDev                float64
	atrPeriod               int
	atrVolatilityMultiplier float64
	minBuyConfluence        int
	minSellConfluence       int
	minConfidence           float64
}

// indicatorVote is one indicator's opinion: +1 bullish, -1 bearish, 0
// neutral, with a conviction strength in [0, 1]. Neutral votes carry zero
// strength.
type indicatorVote struct {
	name     string
	vote     int
	strength float64
}

// NewConfluenceStrategy creates the multi-indicator confluence strategy.
func NewConfluenceStrategy(svc *indicators.Service, log *logrus.Logger) *ConfluenceStrategy {
	return &ConfluenceStrategy{baseStrategy: newBase("confluence", svc, log)}
}

func (s *ConfluenceStrategy) configWithDefaults(cfg types.StrategyConfig) confluenceConfig {
	return confluenceConfig{
		useEMA:                  boolOption(cfg, "useEMA", true),
		useRSI:                  boolOption(cfg, "useRSI", true),
		useMACD:                 boolOption(cfg, "useMACD", true),
		useBollinger:            boolOption(cfg, "useBollinger", true),
		useATRFilter:            boolOption(cfg, "useATRFilter", true),
		emaFastPeriod:           intOption(cfg, "emaFastPeriod", defaultConfluenceEMAFast),
		emaSlowPeriod:           intOption(cfg, "emaSlowPeriod", defaultConfluenceEMASlow),
		rsiPeriod:               intOption(cfg, "rsiPeriod", defaultConfluenceRSIPeriod),
		bbPeriod:                intOption(cfg, "bbPeriod", defaultConfluenceBBPeriod),
		bbStdDev:                floatOption(cfg, "bbStdDev", defaultConfluenceBBStdDev),
		atrPeriod:               intOption(cfg, "atrPeriod", defaultConfluenceATRPeriod),
		atrVolatilityMultiplier: floatOption(cfg, "atrVolatilityMultiplier", defaultConfluenceATRMultiplier),
		minBuyConfluence:        intOption(cfg, "minBuyConfluence", defaultMinBuyConfluence),
		minSellConfluence:       intOption(cfg, "minSellConfluence", defaultMinSellConfluence),
		minConfidence:           floatOption(cfg, "minConfidence", defaultConfluenceMinConfidence),
	}
}

func (s *ConfluenceStrategy) minBars(cfg confluenceConfig) int {
	min := 1
	if cfg.useMACD {
		min = defaultMACDSlowPeriod + defaultMACDSignalPeriod
	}
	var needs []int
	if cfg.useEMA {
		needs = append(needs, cfg.emaSlowPeriod)
	}
	if cfg.useRSI {
		needs = append(needs, cfg.rsiPeriod+1)
	}
	if cfg.useBollinger {
		needs = append(needs, cfg.bbPeriod)
	}
	if cfg.useATRFilter {
		needs = append(needs, 2*cfg.atrPeriod)
	}
	for _, p := range needs {
		if p > min {
			min = p
		}
	}
	return min + 5
}

// CanExecute reports whether any asset in the context has enough data.
func (s *ConfluenceStrategy) CanExecute(ac *types.AlgorithmContext) bool {
	cfg := s.configWithDefaults(ac.Config)
	return s.anyAssetReady(ac, s.minBars(cfg))
}

// Execute tallies indicator votes over every asset in the context.
func (s *ConfluenceStrategy) Execute(_ context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult {
	cfg := s.configWithDefaults(ac.Config)

	return s.run(ac, s.minBars(cfg), cfg.minConfidence, func(asset string, bars []types.PriceBar) ([]types.TradingSignal, []types.ChartSeries, error) {
		votes, chart, err := s.collectVotes(asset, bars, cfg)
		if err != nil {
			return nil, nil, err
		}

		if cfg.useATRFilter {
			filtered, curATR, avgATR, err := s.volatilityFiltered(asset, bars, cfg)
			if err != nil {
				return nil, nil, err
			}
			if filtered {
				s.entry().WithFields(logrus.Fields{
					"asset":  asset,
					"atr":    curATR,
					"avgAtr": avgATR,
				}).Debug("signal suppressed by volatility gate")
				return nil, chart, nil
			}
		}

		buyVotes, sellVotes := 0, 0
		breakdown := make(map[string]interface{}, len(votes))
		for _, v := range votes {
			breakdown[v.name] = map[string]interface{}{
				"vote":     v.vote,
				"strength": v.strength,
			}
			switch {
			case v.vote > 0:
				buyVotes++
			case v.vote < 0:
				sellVotes++
			}
		}

		var want int
		var sigType types.SignalType
		switch {
		case buyVotes >= cfg.minBuyConfluence && buyVotes > sellVotes:
			sigType = types.SignalBuy
			want = 1
		case sellVotes >= cfg.minSellConfluence && sellVotes > buyVotes:
			sigType = types.SignalSell
			want = -1
		default:
			// Ties and weak majorities hold.
			return nil, chart, nil
		}

		var agreeing []string
		sumStrength := 0.0
		for _, v := range votes {
			if v.vote == want {
				agreeing = append(agreeing, v.name)
				sumStrength += v.strength
			}
		}
		agree := len(agreeing)
		total := len(votes)
		avgStrength := sumStrength / float64(agree)

		signal := types.TradingSignal{
			Type:       sigType,
			AssetID:    asset,
			Price:      bars[len(bars)-1].Average,
			Strength:   clamp(0.5*float64(agree)/float64(total)+0.5*avgStrength, 0.3, 1),
			Confidence: clamp01(0.3 + 0.15*float64(agree) + 0.2*avgStrength),
			Reason:     fmt.Sprintf("%d of %d indicators agree: %s", agree, total, strings.Join(agreeing, ", ")),
			Metadata: map[string]interface{}{
				"votes":     breakdown,
				"agreeing":  agreeing,
				"buyVotes":  buyVotes,
				"sellVotes": sellVotes,
			},
			Timestamp: ac.Timestamp,
		}
		return []types.TradingSignal{signal}, chart, nil
	})
}

// collectVotes gathers one vote per enabled indicator. Disabled indicators
// are never computed; indicators still warming up at the current bar vote
// neutral with zero strength.
func (s *ConfluenceStrategy) collectVotes(asset string, bars []types.PriceBar, cfg confluenceConfig) ([]indicatorVote, []types.ChartSeries, error) {
	n := len(bars)
	var votes []indicatorVote
	var chart []types.ChartSeries

	if cfg.useEMA {
		fastRes, err := s.svc.CalculateEMA(indicators.Request{AssetID: asset, Bars: bars, Period: cfg.emaFastPeriod}, s.override)
		if err != nil {
			return nil, nil, err
		}
		slowRes, err := s.svc.CalculateEMA(indicators.Request{AssetID: asset, Bars: bars, Period: cfg.emaSlowPeriod}, s.override)
		if err != nil {
			return nil, nil, err
		}

		v := indicatorVote{name: "ema"}
		fast, slow := fastRes.Values[n-1], slowRes.Values[n-1]
		if isValue(fast) && isValue(slow) && slow != 0 {
			// A 2% fast/slow separation counts as full conviction.
			diff := (fast - slow) / slow
			switch {
			case diff > 0:
				v.vote = 1
			case diff < 0:
				v.vote = -1
			}
			if v.vote != 0 {
				v.strength = clamp01(math.Abs(diff) * 50)
			}
		}
		votes = append(votes, v)
		chart = append(chart,
			types.ChartSeries{AssetID: asset, Name: "ema_fast", Values: fastRes.Values},
			types.ChartSeries{AssetID: asset, Name: "ema_slow", Values: slowRes.Values},
		)
	}

	if cfg.useRSI {
		rsiRes, err := s.svc.CalculateRSI(indicators.Request{AssetID: asset, Bars: bars, Period: cfg.rsiPeriod}, s.override)
		if err != nil {
			return nil, nil, err
		}

		v := indicatorVote{name: "rsi"}
		if rsi := rsiRes.Values[n-1]; isValue(rsi) {
			switch {
			case rsi < 40:
				v.vote = 1
				v.strength = clamp01((40 - rsi) / 40)
			case rsi > 60:
				v.vote = -1
				v.strength = clamp01((rsi - 60) / 40)
			}
		}
		votes = append(votes, v)
		chart = append(chart, types.ChartSeries{AssetID: asset, Name: "rsi", Values: rsiRes.Values})
	}

	if cfg.useMACD {
		macdRes, err := s.svc.CalculateMACD(indicators.Request{
			AssetID:      asset,
			Bars:         bars,
			FastPeriod:   defaultMACDFastPeriod,
			SlowPeriod:   defaultMACDSlowPeriod,
			SignalPeriod: defaultMACDSignalPeriod,
		}, s.override)
		if err != nil {
			return nil, nil, err
		}

		v := indicatorVote{name: "macd"}
		line, sig := macdRes.MACDLine[n-1], macdRes.SignalLine[n-1]
		if isValue(line) && isValue(sig) {
			switch {
			case line > sig:
				v.vote = 1
			case line < sig:
				v.vote = -1
			}
			if denom := math.Abs(line) + math.Abs(sig); v.vote != 0 && denom > 0 {
				v.strength = clamp01(math.Abs(line-sig) / denom)
			}
		}
		votes = append(votes, v)
	}

	if cfg.useBollinger {
		bbRes, err := s.svc.CalculateBollinger(indicators.Request{
			AssetID:    asset,
			Bars:       bars,
			Period:     cfg.bbPeriod,
			StdDevMult: cfg.bbStdDev,
		}, s.override)
		if err != nil {
			return nil, nil, err
		}

		v := indicatorVote{name: "bollinger"}
		if pctB := bbRes.PercentB[n-1]; isValue(pctB) {
			switch {
			case pctB < 0.2:
				v.vote = 1
				v.strength = clamp01((0.2 - pctB) / 0.2)
			case pctB > 0.8:
				v.vote = -1
				v.strength = clamp01((pctB - 0.8) / 0.2)
			}
		}
		votes = append(votes, v)
	}

	return votes, chart, nil
}

// volatilityFiltered reports whether current ATR exceeds its recent average
// by more than the configured multiplier. A warming-up or flat ATR never
// filters.
func (s *ConfluenceStrategy) volatilityFiltered(asset string, bars []types.PriceBar, cfg confluenceConfig) (filtered bool, curATR, avgATR float64, err error) {
	res, err := s.svc.CalculateATR(indicators.Request{AssetID: asset, Bars: bars, Period: cfg.atrPeriod}, s.override)
	if err != nil {
		return false, 0, 0, err
	}

	n := len(bars)
	curATR = res.Values[n-1]
	if !isValue(curATR) {
		return false, 0, 0, nil
	}

	tail := validTail(res.Values, n-1, cfg.atrPeriod)
	if len(tail) == 0 {
		return false, curATR, 0, nil
	}
	avgATR = meanOf(tail)
	if avgATR <= 0 {
		return false, curATR, avgATR, nil
	}
	return curATR > avgATR*cfg.atrVolatilityMultiplier, curATR, avgATR, nil
}

// ConfigSchema describes the strategy's configuration keys.
func (s *ConfluenceStrategy) ConfigSchema() map[string]SchemaField {
	return map[string]SchemaField{
		"useEMA":                  {Type: "boolean", Default: true, Description: "Enable the EMA trend vote"},
		"useRSI":                  {Type: "boolean", Default: true, Description: "Enable the RSI level vote"},
		"useMACD":                 {Type: "boolean", Default: true, Description: "Enable the MACD position vote"},
		"useBollinger":            {Type: "boolean", Default: true, Description: "Enable the Bollinger %B vote"},
		"useATRFilter":            {Type: "boolean", Default: true, Description: "Enable the ATR volatility gate"},
		"emaFastPeriod":           {Type: "integer", Default: defaultConfluenceEMAFast, Min: fptr(1), Max: fptr(100), Description: "Fast EMA period for the trend vote"},
		"emaSlowPeriod":           {Type: "integer", Default: defaultConfluenceEMASlow, Min: fptr(2), Max: fptr(200), Description: "Slow EMA period for the trend vote"},
		"rsiPeriod":               {Type: "integer", Default: defaultConfluenceRSIPeriod, Min: fptr(2), Max: fptr(200), Description: "RSI period for the momentum vote"},
		"bbPeriod":                {Type: "integer", Default: defaultConfluenceBBPeriod, Min: fptr(2), Max: fptr(200), Description: "Bollinger period for the %B vote"},
		"bbStdDev":                {Type: "number", Default: defaultConfluenceBBStdDev, Min: fptr(0.1), Max: fptr(5), Description: "Bollinger standard deviation multiplier"},
		"atrPeriod":               {Type: "integer", Default: defaultConfluenceATRPeriod, Min: fptr(2), Max: fptr(100), Description: "ATR period for the volatility gate"},
		"atrVolatilityMultiplier": {Type: "number", Default: defaultConfluenceATRMultiplier, Min: fptr(1), Max: fptr(10), Description: "Suppress signals when ATR exceeds its average by this factor"},
		"minBuyConfluence":        {Type: "integer", Default: defaultMinBuyConfluence, Min: fptr(1), Max: fptr(4), Description: "Bullish votes required for a buy"},
		"minSellConfluence":       {Type: "integer", Default: defaultMinSellConfluence, Min: fptr(1), Max: fptr(4), Description: "Bearish votes required for a sell"},
		"minConfidence":           {Type: "number", Default: defaultConfluenceMinConfidence, Min: fptr(0), Max: fptr(1), Description: "Minimum confidence for a signal to be emitted"},
	}
}
