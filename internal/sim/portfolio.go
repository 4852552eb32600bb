package sim

import "github.com/GarrickPinon/hft-engine/internal/core"

// feeRate is 1 bps per fill.
const feeRate = 0.0001

// Portfolio tracks cash and inventory under an instant-fill assumption.
// Monetary products happen here in float64, off the hot path.
type Portfolio struct {
	cash     float64
	position float64
	fees     float64
}

// NewPortfolio starts with the given bankroll.
func NewPortfolio(startingCash float64) *Portfolio {
	return &Portfolio{cash: startingCash}
}

// Fill applies one execution at price for qty.
func (p *Portfolio) Fill(side core.Side, price core.Price, qty core.Quantity) {
	px := price.Float64()
	q := qty.Float64()
	notional := px * q

	if side == core.SideBuy {
		p.position += q
		p.cash -= notional
	} else {
		p.position -= q
		p.cash += notional
	}
	p.fees += notional * feeRate
}

// Equity marks the book at the given price. Fees are tracked separately and
// not deducted here.
func (p *Portfolio) Equity(currentPrice float64) float64 {
	return p.cash + p.position*currentPrice
}

// Position returns the signed inventory in base units.
func (p *Portfolio) Position() float64 { return p.position }

// Cash returns the free cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Fees returns cumulative fees paid.
func (p *Portfolio) Fees() float64 { return p.fees }
