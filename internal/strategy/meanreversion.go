// Package strategy contains signal generation logic wired into trade prints.
package strategy

import (
	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/feature"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
	sig "github.com/GarrickPinon/hft-engine/internal/signal"
)

// ewmaAlpha weights the fair-value filter; 0.1 spans roughly the last 19
// prints.
const ewmaAlpha = 0.1

// clipQty is the fixed order size per signal.
var clipQty = core.QuantityFromFloat(0.01)

// MeanReversion sells when price runs above its EWMA fair value by more than
// the threshold, buys when it runs below. The first print on the target
// symbol seeds the EWMA and can never fire (deviation is zero).
type MeanReversion struct {
	targetID  core.SymbolID
	threshold float64 // in price units
	fairValue *feature.EWMA
}

// NewMeanReversion builds the strategy for one target symbol. threshold is in
// price units; how tight to set it depends on the instrument's volatility.
func NewMeanReversion(targetID core.SymbolID, threshold float64) *MeanReversion {
	ewma, err := feature.NewEWMA(ewmaAlpha)
	if err != nil {
		panic(err) // unreachable, alpha is a compile-time constant in range
	}
	return &MeanReversion{
		targetID:  targetID,
		threshold: threshold,
		fairValue: ewma,
	}
}

// Name returns the identifier used in logs.
func (m *MeanReversion) Name() string { return "MeanReversion" }

// OnTrade folds one print into the fair value and returns at most one signal.
// Prints for other symbols are ignored without touching the filter.
func (m *MeanReversion) OnTrade(t marketdata.TradeUpdate) sig.Signal {
	var s sig.Signal
	if t.Header.SymbolID != m.targetID {
		return s
	}

	px := t.Price.Float64()
	m.fairValue.Update(px)

	fairness := m.fairValue.Value()
	deviation := px - fairness

	switch {
	case deviation > m.threshold:
		// Rich vs fair value: sell at the print, expect reversion down.
		s.ShouldTrade = true
		s.Side = core.SideSell
	case deviation < -m.threshold:
		s.ShouldTrade = true
		s.Side = core.SideBuy
	default:
		return s
	}

	s.SymbolID = m.targetID
	s.Price = t.Price // aggressive: cross at the observed print
	s.Qty = clipQty
	s.RefPrice = core.PriceFromFloat(fairness)
	return s
}
