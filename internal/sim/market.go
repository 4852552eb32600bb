// Package sim is the backtest harness: a mean-reverting synthetic market and
// a simple portfolio tracker. None of it runs on the hot path.
package sim

import (
	"math"
	"math/rand"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
)

// MarketConfig parameterizes the Ornstein-Uhlenbeck process,
// dP = theta*(mu - P)*dt + sigma*dW.
type MarketConfig struct {
	SymbolID      core.SymbolID
	InitialPrice  float64
	Volatility    float64 // sigma
	MeanReversion float64 // theta, speed of reversion
	LongTermMean  float64 // mu
	Dt            float64
	Steps         int
}

// DefaultMarketConfig mirrors the tuning the backtest binary ships with.
func DefaultMarketConfig() MarketConfig {
	return MarketConfig{
		SymbolID:      1,
		InitialPrice:  100.0,
		Volatility:    0.5,
		MeanReversion: 0.1,
		LongTermMean:  100.0,
		Dt:            1.0,
		Steps:         5000,
	}
}

// Market generates a mean-reverting trade stream.
type Market struct {
	cfg   MarketConfig
	price float64
	rng   *rand.Rand
}

// NewMarket seeds the process; pass a fixed seed for reproducible runs.
func NewMarket(cfg MarketConfig, seed int64) *Market {
	return &Market{
		cfg:   cfg,
		price: cfg.InitialPrice,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// NextStep advances the process one dt and returns the resulting print.
func (m *Market) NextStep() marketdata.TradeUpdate {
	dw := m.rng.NormFloat64() * math.Sqrt(m.cfg.Dt)
	dp := m.cfg.MeanReversion*(m.cfg.LongTermMean-m.price)*m.cfg.Dt + m.cfg.Volatility*dw
	m.price += dp
	if m.price < 0.01 {
		m.price = 0.01
	}

	now := core.NowNanos()
	return marketdata.TradeUpdate{
		Header: marketdata.MDHeader{
			ExchangeTS: now,
			LocalTS:    now,
			SymbolID:   m.cfg.SymbolID,
			Type:       marketdata.UpdateTrade,
		},
		Price: core.PriceFromFloat(m.price),
		Qty:   core.QuantityFromFloat(1.0),
		Side:  core.SideBuy,
	}
}

// Price returns the current simulated price.
func (m *Market) Price() float64 { return m.price }
