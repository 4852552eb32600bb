// Package engine composes strategy, risk gate, and gateway into the hot path:
// one trade in, at most one order command out. The engine owns order id
// assignment and the audit trail.
package engine

import (
	"strconv"

	"github.com/GarrickPinon/hft-engine/internal/alog"
	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/gateway"
	"github.com/GarrickPinon/hft-engine/internal/latency"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
	"github.com/GarrickPinon/hft-engine/internal/metrics"
	"github.com/GarrickPinon/hft-engine/internal/risk"
	sig "github.com/GarrickPinon/hft-engine/internal/signal"
)

// Strategy is the signal-generation bound. The engine is generic over it so
// the concrete OnTrade call is devirtualized at compile time.
type Strategy interface {
	OnTrade(t marketdata.TradeUpdate) sig.Signal
}

// Gateway is the egress bound; SendOrder must not block.
type Gateway interface {
	SendOrder(cmd gateway.OrderCommand)
}

// Engine is owned by a single consumer goroutine, typically the one draining
// the market-data ring. It is not safe for concurrent OnTrade calls.
type Engine[S Strategy, G Gateway] struct {
	strategy S
	gw       G
	gate     *risk.Gate
	audit    *alog.Logger
	tracker  *latency.Tracker
	nextID   core.OrderID
}

// Option tweaks engine construction.
type Option[S Strategy, G Gateway] func(*Engine[S, G])

// WithTracker samples NowNanos at OnTrade entry and egress and records the
// delta.
func WithTracker[S Strategy, G Gateway](t *latency.Tracker) Option[S, G] {
	return func(e *Engine[S, G]) { e.tracker = t }
}

// New wires the pipeline. audit may be nil in harnesses that do not keep an
// audit trail.
func New[S Strategy, G Gateway](strategy S, gw G, gate *risk.Gate, audit *alog.Logger, opts ...Option[S, G]) *Engine[S, G] {
	e := &Engine[S, G]{
		strategy: strategy,
		gw:       gw,
		gate:     gate,
		audit:    audit,
		nextID:   1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnTrade is the hot path: strategy, then risk, then gateway. An order id is
// consumed for every signal considered, rejected or not, so ids stay a strict
// total order on this thread.
func (e *Engine[S, G]) OnTrade(t marketdata.TradeUpdate) {
	var start core.Timestamp
	if e.tracker != nil {
		start = core.NowNanos()
	}

	s := e.strategy.OnTrade(t)
	if s.ShouldTrade {
		e.executeSignal(s)
	}

	if e.tracker != nil {
		e.tracker.Record(core.NowNanos() - start)
	}
}

func (e *Engine[S, G]) executeSignal(s sig.Signal) {
	cmd := gateway.OrderCommand{
		SymbolID: s.SymbolID,
		OrderID:  e.nextID,
		Price:    s.Price,
		Qty:      s.Qty,
		Side:     s.Side,
	}
	e.nextID++

	if e.gate.CheckNewOrder(cmd, s.RefPrice) {
		e.gw.SendOrder(cmd)
		metrics.OrdersTotal.WithLabelValues(symbolLabel(cmd.SymbolID), cmd.Side.String()).Inc()
		if e.audit != nil {
			e.audit.Logf(alog.LevelInfo, "ORDER_SENT id=%d sym=%d px=%f qty=%f",
				uint64(cmd.OrderID), uint32(cmd.SymbolID), cmd.Price.Float64(), cmd.Qty.Float64())
		}
	} else {
		metrics.RiskRejectsTotal.WithLabelValues(symbolLabel(cmd.SymbolID)).Inc()
		if e.audit != nil {
			e.audit.Logf(alog.LevelWarn, "RISK_REJECT id=%d sym=%d",
				uint64(cmd.OrderID), uint32(cmd.SymbolID))
		}
	}
}

// NextOrderID exposes the id counter for diagnostics; the next signal
// considered will consume this id.
func (e *Engine[S, G]) NextOrderID() core.OrderID { return e.nextID }

func symbolLabel(id core.SymbolID) string {
	return strconv.FormatUint(uint64(id), 10)
}
