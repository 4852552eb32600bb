package strategy

import (
	"math"
	"testing"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
)

func trade(symbolID core.SymbolID, px float64) marketdata.TradeUpdate {
	return marketdata.TradeUpdate{
		Header: marketdata.MDHeader{SymbolID: symbolID, Type: marketdata.UpdateTrade},
		Price:  core.PriceFromFloat(px),
		Qty:    core.QuantityFromFloat(1),
		Side:   core.SideBuy,
	}
}

func TestFiresLongBelowFairValue(t *testing.T) {
	strat := NewMeanReversion(1, 0.5)
	for i := 0; i < 5; i++ {
		if s := strat.OnTrade(trade(1, 100)); s.ShouldTrade {
			t.Fatalf("flat stream fired at i=%d", i)
		}
	}
	s := strat.OnTrade(trade(1, 99.0))
	if !s.ShouldTrade {
		t.Fatalf("expected buy signal on dip")
	}
	if s.Side != core.SideBuy {
		t.Fatalf("side = %s, want BUY", s.Side)
	}
	if s.Price != core.PriceFromFloat(99.0) {
		t.Fatalf("signal price %v, want the print", s.Price.Float64())
	}
	if s.Qty != core.QuantityFromFloat(0.01) {
		t.Fatalf("qty %v, want 0.01", s.Qty.Float64())
	}
	// EWMA of five 100s then one 99 print: 0.1*99 + 0.9*100 = 99.9.
	if ref := s.RefPrice.Float64(); math.Abs(ref-99.9) > 1e-6 {
		t.Fatalf("ref price %v, want ~99.9", ref)
	}
}

func TestFiresShortAboveFairValue(t *testing.T) {
	strat := NewMeanReversion(1, 0.5)
	for i := 0; i < 5; i++ {
		strat.OnTrade(trade(1, 100))
	}
	s := strat.OnTrade(trade(1, 101.0))
	if !s.ShouldTrade || s.Side != core.SideSell {
		t.Fatalf("expected sell signal, got %+v", s)
	}
}

func TestIgnoresOtherSymbols(t *testing.T) {
	strat := NewMeanReversion(1, 0.5)
	for i := 0; i < 5; i++ {
		strat.OnTrade(trade(2, 100))
	}
	if s := strat.OnTrade(trade(2, 50.0)); s.ShouldTrade {
		t.Fatalf("fired on a foreign symbol")
	}
	// The filter must not have been seeded by the foreign prints.
	s := strat.OnTrade(trade(1, 50.0))
	if s.ShouldTrade {
		t.Fatalf("first print on target symbol fired")
	}
}

func TestFirstTradeNeverFires(t *testing.T) {
	strat := NewMeanReversion(7, 0.0001)
	if s := strat.OnTrade(trade(7, 12345.678)); s.ShouldTrade {
		t.Fatalf("deviation is zero on the seeding print, must not fire")
	}
}

func TestWithinThresholdStaysQuiet(t *testing.T) {
	strat := NewMeanReversion(1, 0.5)
	strat.OnTrade(trade(1, 100))
	// 100.4 print: ewma moves to 100.04, deviation 0.36 < 0.5.
	if s := strat.OnTrade(trade(1, 100.4)); s.ShouldTrade {
		t.Fatalf("fired inside the threshold band")
	}
}

func TestBuildFactoryDefaults(t *testing.T) {
	for _, mode := range []string{"", "mean_reversion", "STAT_ARB", "unknown"} {
		s := Build(mode, Params{SymbolID: 1, Threshold: 0.5})
		if s.Name() != "MeanReversion" {
			t.Fatalf("mode %q built %s", mode, s.Name())
		}
	}
}
