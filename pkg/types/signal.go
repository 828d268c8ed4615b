package types

import "time"

// SignalType classifies a trading signal.
type SignalType string

const (
	SignalBuy        SignalType = "BUY"
	SignalSell       SignalType = "SELL"
	SignalStopLoss   SignalType = "STOP_LOSS"
	SignalTakeProfit SignalType = "TAKE_PROFIT"
)

// TradingSignal is a single directional signal emitted by a strategy.
// Immutable once created.
type TradingSignal struct {
	Type       SignalType             `json:"type"`
	AssetID    string                 `json:"assetId"`
	Strength   float64                `json:"strength"`
	Price      float64                `json:"price"`
	Confidence float64                `json:"confidence"`
	Reason     string                 `json:"reason"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}
