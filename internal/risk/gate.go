// Package risk holds the pre-trade gate and the process kill switch. Checks
// are silent booleans; the engine owns the audit trail for rejections.
package risk

import (
	"fmt"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/gateway"
)

// Config encodes the guard-rails for order flow.
type Config struct {
	MaxOrderQty       core.Quantity
	MaxPriceDeviation core.Price // vs the signal's reference price
	MaxOrdersPerSec   int64
}

// Gate runs the stateful pre-trade checks. It is owned by the engine thread;
// only the kill switch is shared with other threads.
type Gate struct {
	cfg    Config
	kill   *KillSwitch
	bucket tokenBucket
}

// NewGate validates the limits and binds the gate to a kill switch handle.
func NewGate(cfg Config, kill *KillSwitch, now func() core.Timestamp) (*Gate, error) {
	if cfg.MaxOrderQty.Amount <= 0 {
		return nil, fmt.Errorf("max_order_qty %d must be positive: %w", cfg.MaxOrderQty.Amount, core.ErrInvalidConfig)
	}
	if cfg.MaxPriceDeviation.Ticks <= 0 {
		return nil, fmt.Errorf("max_price_deviation %d must be positive: %w", cfg.MaxPriceDeviation.Ticks, core.ErrInvalidConfig)
	}
	if cfg.MaxOrdersPerSec <= 0 {
		return nil, fmt.Errorf("max_orders_per_sec %d must be positive: %w", cfg.MaxOrdersPerSec, core.ErrInvalidConfig)
	}
	if now == nil {
		now = core.NowNanos
	}
	return &Gate{
		cfg:  cfg,
		kill: kill,
		bucket: tokenBucket{
			rate:   float64(cfg.MaxOrdersPerSec),
			cap:    float64(cfg.MaxOrdersPerSec),
			tokens: float64(cfg.MaxOrdersPerSec),
			now:    now,
		},
	}, nil
}

// CheckNewOrder returns true when the command clears every limit: order size,
// price deviation against the reference, kill switch, and order rate.
// Rejections are silent; one rate token is consumed only on a fully clean
// pass through the first three checks.
func (g *Gate) CheckNewOrder(cmd gateway.OrderCommand, refPrice core.Price) bool {
	if cmd.Qty.Amount > g.cfg.MaxOrderQty.Amount {
		return false
	}

	// Fat finger: deviation from reference, on raw ticks.
	diff := cmd.Price.Ticks - refPrice.Ticks
	if diff < 0 {
		diff = -diff
	}
	if diff > g.cfg.MaxPriceDeviation.Ticks {
		return false
	}

	if g.kill != nil && g.kill.IsActive() {
		return false
	}

	return g.bucket.take()
}

// tokenBucket refills continuously at rate tokens/sec up to cap. Single
// threaded: only the engine thread takes from it.
type tokenBucket struct {
	rate   float64
	cap    float64
	tokens float64
	last   core.Timestamp
	now    func() core.Timestamp
}

func (b *tokenBucket) take() bool {
	ts := b.now()
	if b.last != 0 {
		elapsed := float64(ts-b.last) / 1e9
		if elapsed > 0 {
			b.tokens += elapsed * b.rate
			if b.tokens > b.cap {
				b.tokens = b.cap
			}
		}
	}
	b.last = ts
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
