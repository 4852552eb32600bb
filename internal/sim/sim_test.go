package sim

import (
	"math"
	"testing"

	"github.com/GarrickPinon/hft-engine/internal/core"
)

func TestMarketStaysPositiveAndReverts(t *testing.T) {
	cfg := DefaultMarketConfig()
	m := NewMarket(cfg, 42)

	var sum float64
	const steps = 20_000
	for i := 0; i < steps; i++ {
		trade := m.NextStep()
		px := trade.Price.Float64()
		if px <= 0 {
			t.Fatalf("non-positive price %v at step %d", px, i)
		}
		if trade.Header.SymbolID != cfg.SymbolID {
			t.Fatalf("wrong symbol id %d", trade.Header.SymbolID)
		}
		sum += px
	}
	mean := sum / steps
	// theta=0.1 pulls hard toward mu=100; the long-run mean lands close.
	if math.Abs(mean-cfg.LongTermMean) > 5 {
		t.Fatalf("long-run mean %v too far from %v", mean, cfg.LongTermMean)
	}
}

func TestMarketDeterministicUnderSeed(t *testing.T) {
	a := NewMarket(DefaultMarketConfig(), 7)
	b := NewMarket(DefaultMarketConfig(), 7)
	for i := 0; i < 100; i++ {
		if a.NextStep().Price != b.NextStep().Price {
			t.Fatalf("same seed diverged at step %d", i)
		}
	}
}

func TestPortfolioRoundTrip(t *testing.T) {
	p := NewPortfolio(10_000)
	buyPx := core.PriceFromFloat(100)
	sellPx := core.PriceFromFloat(110)
	qty := core.QuantityFromFloat(2)

	p.Fill(core.SideBuy, buyPx, qty)
	if p.Position() != 2 {
		t.Fatalf("position %v, want 2", p.Position())
	}
	if p.Cash() != 10_000-200 {
		t.Fatalf("cash %v, want 9800", p.Cash())
	}

	p.Fill(core.SideSell, sellPx, qty)
	if p.Position() != 0 {
		t.Fatalf("position %v, want flat", p.Position())
	}
	if got := p.Cash(); got != 10_000+20 {
		t.Fatalf("cash %v, want 10020", got)
	}
	// 1 bps on each side: 200*0.0001 + 220*0.0001.
	if got := p.Fees(); math.Abs(got-0.042) > 1e-12 {
		t.Fatalf("fees %v, want 0.042", got)
	}
	if got := p.Equity(105); got != p.Cash() {
		t.Fatalf("flat book equity %v should equal cash %v", got, p.Cash())
	}
}

func TestPortfolioEquityMarksInventory(t *testing.T) {
	p := NewPortfolio(1000)
	p.Fill(core.SideBuy, core.PriceFromFloat(50), core.QuantityFromFloat(4))
	if got := p.Equity(60); got != 800+240 {
		t.Fatalf("equity %v, want 1040", got)
	}
}
