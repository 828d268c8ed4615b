package strategy

import (
	"encoding/json"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// Config option readers. Defaulting is presence-aware: a key that exists in
// the raw config wins even when its value is 0 or false. Only an absent key
// (or one with an unusable type) falls back to the default. This matters for
// settings like minConfidence=0 and useHighLow=false.

func floatOption(cfg types.StrategyConfig, key string, def float64) float64 {
	raw, ok := cfg[key]
	if !ok {
		return def
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

func intOption(cfg types.StrategyConfig, key string, def int) int {
	raw, ok := cfg[key]
	if !ok {
		return def
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

func boolOption(cfg types.StrategyConfig, key string, def bool) bool {
	if raw, ok := cfg[key]; ok {
		if v, ok := raw.(bool); ok {
			return v
		}
	}
	return def
}

func stringOption(cfg types.StrategyConfig, key string, def string) string {
	if raw, ok := cfg[key]; ok {
		if v, ok := raw.(string); ok {
			return v
		}
	}
	return def
}
