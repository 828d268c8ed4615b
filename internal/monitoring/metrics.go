package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Indicator computation metrics
	calculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_indicator_calculations_total",
			Help: "Total number of indicator calculations performed",
		},
		[]string{"indicator"},
	)

	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_indicator_cache_hits_total",
			Help: "Total number of indicator results served from cache",
		},
		[]string{"indicator"},
	)

	cacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_indicator_cache_misses_total",
			Help: "Total number of indicator cache misses",
		},
		[]string{"indicator"},
	)

	// Strategy metrics
	strategyRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_strategy_runs_total",
			Help: "Total number of strategy executions",
		},
		[]string{"strategy", "status"},
	)

	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_signals_total",
			Help: "Total number of trading signals emitted",
		},
		[]string{"strategy", "type"},
	)

	assetsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_assets_skipped_total",
			Help: "Total number of assets skipped for insufficient data",
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(calculationsTotal)
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(cacheMissesTotal)
	prometheus.MustRegister(strategyRunsTotal)
	prometheus.MustRegister(signalsTotal)
	prometheus.MustRegister(assetsSkippedTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCalculation records one indicator computation.
func RecordCalculation(indicator string) {
	calculationsTotal.WithLabelValues(indicator).Inc()
}

// RecordCacheHit records an indicator result served from cache.
func RecordCacheHit(indicator string) {
	cacheHitsTotal.WithLabelValues(indicator).Inc()
}

// RecordCacheMiss records an indicator cache miss.
func RecordCacheMiss(indicator string) {
	cacheMissesTotal.WithLabelValues(indicator).Inc()
}

// RecordStrategyRun records one strategy execution with its outcome.
func RecordStrategyRun(strategy, status string) {
	strategyRunsTotal.WithLabelValues(strategy, status).Inc()
}

// RecordSignal records an emitted trading signal.
func RecordSignal(strategy, signalType string) {
	signalsTotal.WithLabelValues(strategy, signalType).Inc()
}

// RecordAssetSkipped records an asset skipped for insufficient data.
func RecordAssetSkipped(strategy string) {
	assetsSkippedTotal.WithLabelValues(strategy).Inc()
}
