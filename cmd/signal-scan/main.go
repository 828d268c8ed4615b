package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
	"github.com/braxtondiggs/chansey-go/internal/logger"
	"github.com/braxtondiggs/chansey-go/internal/monitoring"
	"github.com/braxtondiggs/chansey-go/internal/strategy"
	"github.com/braxtondiggs/chansey-go/pkg/config"
	"github.com/braxtondiggs/chansey-go/pkg/data"
	"github.com/braxtondiggs/chansey-go/pkg/reporting"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

func main() {
	var (
		scanFile = flag.String("scan", "", "Scan configuration file (JSON)")
		envFile  = flag.String("env", "", "Optional .env file")
		jsonOut  = flag.String("json", "", "Write scan results to a JSON report")
		xlsxOut  = flag.String("xlsx", "", "Write scan results to an Excel workbook")
		watch    = flag.Bool("watch", false, "Re-run the scan on the configured interval")
		metrics  = flag.Bool("metrics", false, "Expose Prometheus metrics over HTTP")
		listOnly = flag.Bool("list", false, "List available strategies and exit")
		quiet    = flag.Bool("quiet", false, "Suppress console tables")
	)
	flag.Parse()

	if *listOnly {
		fmt.Println("Available strategies:")
		for _, name := range strategy.Names() {
			fmt.Printf("  %s\n", name)
		}
		return
	}

	if *scanFile == "" {
		fmt.Fprintln(os.Stderr, "usage: signal-scan -scan <config.json> [-json out.json] [-xlsx out.xlsx]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.LoadEnv(*envFile)
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}

	scanCfg, err := config.LoadScanConfig(*scanFile)
	if err != nil {
		log.WithError(err).Fatal("failed to load scan config")
	}

	provider, err := buildProvider(scanCfg, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build data provider")
	}

	svc := indicators.NewServiceWithCacheSize(log, cfg.Indicators.CacheSize)
	strategies, err := buildStrategies(scanCfg, cfg, svc, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build strategies")
	}

	if *metrics {
		go serveMetrics(cfg.Monitoring.PrometheusPort, log)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := &scanRunner{
		cfg:      cfg,
		scanCfg:  scanCfg,
		provider: provider,
		log:      log,
		jsonOut:  *jsonOut,
		xlsxOut:  *xlsxOut,
		quiet:    *quiet,
	}

	if err := runner.runOnce(ctx, strategies); err != nil {
		log.WithError(err).Fatal("scan failed")
	}

	if !*watch {
		return
	}

	log.WithField("interval", cfg.Scan.Interval).Info("watching for the next scan")
	ticker := time.NewTicker(cfg.Scan.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-ticker.C:
			if err := runner.runOnce(ctx, strategies); err != nil {
				log.WithError(err).Error("scan failed")
			}
		}
	}
}

type scanRunner struct {
	cfg      *config.EngineConfig
	scanCfg  *config.ScanConfig
	provider data.Provider
	log      *logrus.Logger

	jsonOut string
	xlsxOut string
	quiet   bool
}

// runOnce loads bars for every asset, runs every configured strategy and
// emits the reports.
func (r *scanRunner) runOnce(ctx context.Context, strategies []strategyRun) error {
	ac, err := r.loadContext(ctx)
	if err != nil {
		return err
	}

	runResults := make([]*types.AlgorithmResult, 0, len(strategies))
	for _, run := range strategies {
		runCtx := *ac
		runCtx.Config = run.config
		res := run.strategy.Execute(ctx, &runCtx)
		runResults = append(runResults, res)

		r.log.WithFields(logrus.Fields{
			"strategy": res.Strategy,
			"success":  res.Success,
			"signals":  len(res.Signals),
		}).Info("strategy run complete")
	}

	report := &reporting.ScanReport{
		GeneratedAt: time.Now().UTC(),
		Provider:    r.provider.Name(),
		Assets:      ac.Assets,
		Results:     runResults,
	}

	if !r.quiet {
		console := reporting.NewConsoleReporter(os.Stdout)
		console.PrintSummary(runResults)
		console.PrintSignals(runResults)
	}
	if r.jsonOut != "" {
		if err := reporting.WriteJSONReport(report, r.jsonOut); err != nil {
			return err
		}
		r.log.WithField("path", r.jsonOut).Info("wrote JSON report")
	}
	if r.xlsxOut != "" {
		if err := reporting.NewExcelReporter().WriteWorkbook(report, r.xlsxOut); err != nil {
			return err
		}
		r.log.WithField("path", r.xlsxOut).Info("wrote Excel workbook")
	}
	return nil
}

// loadContext fetches bars for every configured asset, normalizes their
// order and trims them to the configured scan window. Assets whose source
// fails to load are dropped from the scan with a warning.
func (r *scanRunner) loadContext(ctx context.Context) (*types.AlgorithmContext, error) {
	window, err := r.scanCfg.LookbackWindow()
	if err != nil {
		return nil, err
	}
	start, end, bounded, err := r.scanCfg.DateRange()
	if err != nil {
		return nil, err
	}

	ac := &types.AlgorithmContext{
		Bars:      make(map[string][]types.PriceBar, len(r.scanCfg.Assets)),
		Timestamp: time.Now().UTC(),
	}

	for _, asset := range r.scanCfg.Assets {
		bars, err := r.provider.LoadBars(ctx, asset.Source)
		if err != nil {
			r.log.WithError(err).WithField("asset", asset.AssetID).Warn("failed to load bars")
			continue
		}
		if err := data.ValidateTimeSequence(bars); err != nil {
			r.log.WithError(err).WithField("asset", asset.AssetID).Debug("normalizing bar order")
			bars = data.RemoveDuplicates(data.SortByTimestamp(bars))
		}
		if bounded {
			bars = data.FilterByDateRange(bars, start, end)
		}
		if window > 0 {
			bars = data.FilterByPeriod(bars, window)
		}
		if len(bars) == 0 {
			r.log.WithField("asset", asset.AssetID).Warn("no bars left inside the scan window")
			continue
		}
		if err := r.provider.ValidateBars(bars); err != nil {
			r.log.WithError(err).WithField("asset", asset.AssetID).Warn("rejecting invalid bar series")
			continue
		}
		ac.Assets = append(ac.Assets, asset.AssetID)
		ac.Bars[asset.AssetID] = bars
		if last := bars[len(bars)-1].Timestamp; last.After(ac.Timestamp) || len(ac.Assets) == 1 {
			ac.Timestamp = last
		}
	}

	if len(ac.Assets) == 0 {
		return nil, fmt.Errorf("no asset produced a usable bar series")
	}
	return ac, nil
}

type strategyRun struct {
	strategy strategy.Strategy
	config   types.StrategyConfig
}

// buildStrategies resolves the configured strategy names and applies the
// engine-level minimum confidence to runs that do not set their own.
func buildStrategies(scanCfg *config.ScanConfig, cfg *config.EngineConfig, svc *indicators.Service, log *logrus.Logger) ([]strategyRun, error) {
	runs := make([]strategyRun, 0, len(scanCfg.Strategies))
	for _, item := range scanCfg.Strategies {
		s, err := strategy.ByName(item.Name, svc, log)
		if err != nil {
			return nil, err
		}

		runCfg := item.Config
		if cfg.Scan.MinConfidence > 0 {
			if _, ok := runCfg["minConfidence"]; !ok {
				if runCfg == nil {
					runCfg = make(types.StrategyConfig, 1)
				}
				runCfg["minConfidence"] = cfg.Scan.MinConfidence
			}
		}
		runs = append(runs, strategyRun{strategy: s, config: runCfg})
	}
	return runs, nil
}

func buildProvider(scanCfg *config.ScanConfig, cfg *config.EngineConfig, log *logrus.Logger) (data.Provider, error) {
	switch strings.ToLower(scanCfg.Provider) {
	case "", "csv":
		format := data.DefaultCSVFormat
		if strings.EqualFold(scanCfg.CSVFormat, "ohlcv") {
			format = data.OHLCVCSVFormat
		}
		return data.NewCachedProvider(data.NewCSVProviderWithFormat(format, log), log), nil
	case "bybit":
		provider := data.NewBybitProvider(data.BybitProviderConfig{
			APIKey:    cfg.Exchange.APIKey,
			APISecret: cfg.Exchange.APISecret,
			Testnet:   cfg.Exchange.Testnet,
			Category:  cfg.Exchange.Category,
			Interval:  data.KlineInterval(cfg.Exchange.Interval),
		}, log)
		return data.NewCachedProvider(provider, log), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", scanCfg.Provider)
	}
}

func serveMetrics(port int, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())

	addr := fmt.Sprintf(":%d", port)
	log.WithField("addr", addr).Info("serving Prometheus metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("metrics server stopped")
	}
}
