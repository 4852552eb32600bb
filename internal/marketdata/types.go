// Package marketdata defines the normalized market data records flowing out
// of feeders, and the per-symbol L2 book built from level updates.
package marketdata

import "github.com/GarrickPinon/hft-engine/internal/core"

// UpdateType tags a market data record.
type UpdateType uint8

const (
	UpdateTrade    UpdateType = 0
	UpdateBBO      UpdateType = 1 // best bid/offer (L1)
	UpdateLevel    UpdateType = 2 // depth update (L2)
	UpdateSnapshot UpdateType = 3 // full book snapshot
)

// MDHeader is common to every market data record.
type MDHeader struct {
	ExchangeTS core.Timestamp // venue timestamp
	LocalTS    core.Timestamp // local receipt timestamp
	SymbolID   core.SymbolID
	Type       UpdateType
}

// TradeUpdate is one trade print. Side is the aggressor side.
type TradeUpdate struct {
	Header MDHeader
	Price  core.Price
	Qty    core.Quantity
	Side   core.Side
}

// LevelUpdate replaces the resting quantity at one price. Qty zero deletes
// the level.
type LevelUpdate struct {
	Header MDHeader
	Price  core.Price
	Qty    core.Quantity
	Side   core.Side
}
