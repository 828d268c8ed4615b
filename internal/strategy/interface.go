package strategy

import (
	"context"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// Strategy is the contract the orchestrator consumes. Execute never panics
// out and always returns a result object; CanExecute is a cheap pre-flight
// gate that is true when at least one asset in the context has enough data.
type Strategy interface {
	Name() string
	CanExecute(ac *types.AlgorithmContext) bool
	Execute(ctx context.Context, ac *types.AlgorithmContext) *types.AlgorithmResult
	ConfigSchema() map[string]SchemaField
}

// SchemaField is static metadata describing one strategy config key,
// consumed by external UI generation.
type SchemaField struct {
	Type        string      `json:"type"`
	Default     interface{} `json:"default"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Description string      `json:"description"`
}

func fptr(v float64) *float64 {
	return &v
}
