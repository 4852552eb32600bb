package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
	"github.com/GarrickPinon/hft-engine/internal/metrics"
)

// StubFeeder emits deterministic synthetic trades, useful for tests and
// offline wiring.
type StubFeeder struct {
	symbolID core.SymbolID
	symbol   string
	interval time.Duration
	log      zerolog.Logger
	sink     TradeSink
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewStubFeeder builds a feeder printing a slow upward drift on one symbol.
func NewStubFeeder(symbolID core.SymbolID, symbol string, interval time.Duration, log zerolog.Logger) *StubFeeder {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &StubFeeder{
		symbolID: symbolID,
		symbol:   symbol,
		interval: interval,
		log:      log,
	}
}

// SetOnTrade registers the sink; must precede Start.
func (f *StubFeeder) SetOnTrade(sink TradeSink) { f.sink = sink }

// Start spawns the synthetic print loop.
func (f *StubFeeder) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.done = make(chan struct{})
	go f.run(ctx)
	return nil
}

// Stop signals the loop down and joins it.
func (f *StubFeeder) Stop() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
}

func (f *StubFeeder) run(ctx context.Context) {
	defer close(f.done)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	px := 100.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			px += 0.1
			if f.sink == nil {
				continue
			}
			now := core.NowNanos()
			f.sink.OnTrade(marketdata.TradeUpdate{
				Header: marketdata.MDHeader{
					ExchangeTS: now,
					LocalTS:    now,
					SymbolID:   f.symbolID,
					Type:       marketdata.UpdateTrade,
				},
				Price: core.PriceFromFloat(px),
				Qty:   core.QuantityFromFloat(1),
				Side:  core.SideBuy,
			})
			metrics.TicksTotal.WithLabelValues(f.symbol).Inc()
		}
	}
}
