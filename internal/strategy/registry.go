package strategy

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/internal/indicators"
)

// Constructor builds a strategy bound to an indicator service and logger.
type Constructor func(svc *indicators.Service, log *logrus.Logger) Strategy

var constructors = map[string]Constructor{
	"rsi":                func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewRSIThresholdStrategy(svc, log) },
	"macd-cross":         func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewMACDCrossStrategy(svc, log) },
	"ema-rsi":            func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewEMARSIStrategy(svc, log) },
	"mean-reversion":     func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewMeanReversionStrategy(svc, log) },
	"atr-trailing-stop":  func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewATRTrailingStopStrategy(svc, log) },
	"bollinger-breakout": func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewBollingerBreakoutStrategy(svc, log) },
	"bollinger-squeeze":  func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewBollingerSqueezeStrategy(svc, log) },
	"confluence":         func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewConfluenceStrategy(svc, log) },
	"rsi-divergence":     func(svc *indicators.Service, log *logrus.Logger) Strategy { return NewRSIDivergenceStrategy(svc, log) },
}

// Names lists the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName builds the named strategy.
func ByName(name string, svc *indicators.Service, log *logrus.Logger) (Strategy, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return ctor(svc, log), nil
}

// All builds every registered strategy.
func All(svc *indicators.Service, log *logrus.Logger) []Strategy {
	names := Names()
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, _ := ByName(name, svc, log)
		out = append(out, s)
	}
	return out
}
