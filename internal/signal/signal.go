// Package signal standardizes the payload handed from strategies to the
// execution engine.
package signal

import "github.com/GarrickPinon/hft-engine/internal/core"

// Signal is a strategy's verdict on one trade print. When ShouldTrade is set,
// Side is Buy or Sell, Qty is positive, and RefPrice carries the fair value
// the risk gate checks price deviation against.
type Signal struct {
	ShouldTrade bool
	SymbolID    core.SymbolID
	Side        core.Side
	Price       core.Price
	Qty         core.Quantity
	RefPrice    core.Price
}
