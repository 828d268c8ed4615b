package indicators

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/braxtondiggs/chansey-go/internal/errors"
	"github.com/braxtondiggs/chansey-go/internal/monitoring"
	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// Request asks the computation service for one indicator result.
type Request struct {
	AssetID string
	Bars    []types.PriceBar

	Period       int
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
	StdDevMult   float64

	// SkipCache bypasses the cache for this call, both read and write.
	SkipCache bool
}

// Override lets a strategy substitute its own calculator for an indicator
// kind. Returning nil falls back to the default calculator. The service
// consults the override on every call; results produced through an override
// never touch the shared cache.
type Override func(kind Kind) Calculator

// Service is the single path by which strategies obtain indicator values.
// It owns the result cache and deduplicates concurrent computations of the
// same key.
type Service struct {
	calculators map[Kind]Calculator
	cache       *resultCache
	group       singleflight.Group
	log         *logrus.Logger
}

// NewService creates a computation service with the default calculators
// and cache size.
func NewService(log *logrus.Logger) *Service {
	return NewServiceWithCacheSize(log, DefaultCacheSize)
}

// NewServiceWithCacheSize creates a computation service with a bounded cache.
func NewServiceWithCacheSize(log *logrus.Logger, cacheSize int) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		calculators: DefaultCalculators(),
		cache:       newResultCache(cacheSize),
		log:         log,
	}
}

// CalculateSMA computes a simple moving average for the request.
func (s *Service) CalculateSMA(req Request, override Override) (*Result, error) {
	return s.calculate(KindSMA, req, override)
}

// CalculateEMA computes an exponential moving average for the request.
func (s *Service) CalculateEMA(req Request, override Override) (*Result, error) {
	return s.calculate(KindEMA, req, override)
}

// CalculateRSI computes a relative strength index for the request.
func (s *Service) CalculateRSI(req Request, override Override) (*Result, error) {
	return s.calculate(KindRSI, req, override)
}

// CalculateMACD computes the MACD triple for the request.
func (s *Service) CalculateMACD(req Request, override Override) (*Result, error) {
	return s.calculate(KindMACD, req, override)
}

// CalculateBollinger computes the Bollinger Bands quintuple for the request.
func (s *Service) CalculateBollinger(req Request, override Override) (*Result, error) {
	return s.calculate(KindBollinger, req, override)
}

// CalculateATR computes an average true range for the request.
func (s *Service) CalculateATR(req Request, override Override) (*Result, error) {
	return s.calculate(KindATR, req, override)
}

// CalculateStdDev computes a rolling standard deviation for the request.
func (s *Service) CalculateStdDev(req Request, override Override) (*Result, error) {
	return s.calculate(KindStdDev, req, override)
}

// CacheSize returns the number of cached indicator results.
func (s *Service) CacheSize() int {
	return s.cache.Size()
}

// ClearCache drops all cached indicator results.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

func (s *Service) calculate(kind Kind, req Request, override Override) (*Result, error) {
	calc := s.calculators[kind]
	overridden := false
	if override != nil {
		if alt := override(kind); alt != nil {
			calc = alt
			overridden = true
		}
	}
	if calc == nil {
		return nil, errors.NewValidationError("indicator", string(kind), "no calculator registered")
	}

	opts := buildOptions(kind, req)

	// Override results are strategy-specific and must not pollute the
	// shared cache, and must not be served stale values from it either.
	if overridden || req.SkipCache {
		monitoring.RecordCalculation(string(kind))
		return calc.Calculate(opts)
	}

	key := cacheKey(kind, req)
	if cached, ok := s.cache.Get(key); ok {
		monitoring.RecordCacheHit(string(kind))
		hit := *cached
		hit.FromCache = true
		return &hit, nil
	}
	monitoring.RecordCacheMiss(string(kind))

	computed := false
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		computed = true
		monitoring.RecordCalculation(string(kind))
		result, err := calc.Calculate(opts)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, result)
		return result, nil
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"asset":     req.AssetID,
			"indicator": kind,
		}).Debug("indicator computation failed: ", err)
		return nil, err
	}

	// The caller whose closure ran reports a fresh result; only callers
	// that joined another caller's flight see a shared one.
	result := *(v.(*Result))
	result.FromCache = shared && !computed
	return &result, nil
}

// buildOptions extracts the numeric series the calculator needs from the
// request's price bars.
func buildOptions(kind Kind, req Request) Options {
	opts := Options{
		Values:       types.Averages(req.Bars),
		Period:       req.Period,
		FastPeriod:   req.FastPeriod,
		SlowPeriod:   req.SlowPeriod,
		SignalPeriod: req.SignalPeriod,
		StdDevMult:   req.StdDevMult,
	}
	if kind == KindATR {
		opts.High = types.Highs(req.Bars)
		opts.Low = types.Lows(req.Bars)
	}
	return opts
}

// cacheKey derives the cache key from the asset, the indicator kind, every
// numeric parameter and a fingerprint of the price series (length plus last
// timestamp) so appended history invalidates stale entries.
func cacheKey(kind Kind, req Request) string {
	var lastTS int64
	if len(req.Bars) > 0 {
		lastTS = req.Bars[len(req.Bars)-1].Timestamp.UnixMilli()
	}
	return fmt.Sprintf("%s|%s|p%d|f%d|s%d|g%d|m%g|n%d|t%d",
		req.AssetID, kind,
		req.Period, req.FastPeriod, req.SlowPeriod, req.SignalPeriod, req.StdDevMult,
		len(req.Bars), lastTS)
}
