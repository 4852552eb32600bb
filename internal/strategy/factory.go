package strategy

import (
	"strings"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
	sig "github.com/GarrickPinon/hft-engine/internal/signal"
)

// Strategy defines behaviour shared by strategy implementations. The engine
// does not use this interface; it is generic over its own OnTrade-only bound
// (engine.Strategy), which every Strategy also satisfies.
type Strategy interface {
	OnTrade(t marketdata.TradeUpdate) sig.Signal
	Name() string
}

// Params expresses the tunable knobs strategy constructors need.
type Params struct {
	SymbolID  core.SymbolID
	Threshold float64
}

// Build returns the strategy implementation matching the configured mode.
// Mean reversion is the only implementation, so unknown modes also get it.
func Build(mode string, params Params) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "mean_reversion", "meanreversion", "stat_arb":
		return NewMeanReversion(params.SymbolID, params.Threshold)
	default:
		return NewMeanReversion(params.SymbolID, params.Threshold)
	}
}
