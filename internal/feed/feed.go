// Package feed hosts market data ingest: the feeder contract and the stub and
// Binance implementations. Feeders normalize venue ticks into fixed-point
// TradeUpdates and hand them to a sink owned by the engine side, usually a
// closure pushing into the inbound SPSC ring.
package feed

import "github.com/GarrickPinon/hft-engine/internal/marketdata"

// TradeSink receives normalized trades from a feeder. The feeder holds the
// sink by reference and invokes it from its own goroutine; the sink decides
// how to cross the thread boundary.
type TradeSink interface {
	OnTrade(t marketdata.TradeUpdate)
}

// TradeSinkFunc adapts a function to the TradeSink contract.
type TradeSinkFunc func(t marketdata.TradeUpdate)

func (f TradeSinkFunc) OnTrade(t marketdata.TradeUpdate) { f(t) }

// Feeder is the ingest boundary. Start spawns the feeder's worker and returns
// once it is running; Stop signals it down and joins. SetOnTrade must be
// called before Start.
type Feeder interface {
	Start() error
	Stop()
	SetOnTrade(sink TradeSink)
}
