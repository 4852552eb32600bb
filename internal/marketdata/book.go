package marketdata

import (
	"github.com/tidwall/btree"

	"github.com/GarrickPinon/hft-engine/internal/core"
)

// MaxDepth is the default snapshot depth.
const MaxDepth = 10

// Level is one price rung of the book.
type Level struct {
	Price core.Price
	Qty   core.Quantity
}

// OrderBook is a per-symbol L2 view keyed by price. It is owned by the engine
// thread and uses no locking; crossing it between goroutines is on the caller.
// Levels live on btree ladders so updates are O(log L) and BBO/snapshot reads
// walk in price order.
type OrderBook struct {
	bids         *btree.BTreeG[Level]
	asks         *btree.BTreeG[Level]
	lastUpdateTS core.Timestamp
}

func levelLess(a, b Level) bool { return a.Price.Less(b.Price) }

// NewOrderBook returns an empty book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: btree.NewBTreeG[Level](levelLess),
		asks: btree.NewBTreeG[Level](levelLess),
	}
}

// ApplyUpdate inserts, overwrites, or (qty zero) deletes the level at the
// update's price. Deleting an absent level is a no-op, so replaying a delete
// is idempotent.
func (b *OrderBook) ApplyUpdate(u LevelUpdate) {
	ladder := b.asks
	if u.Side == core.SideBuy {
		ladder = b.bids
	}
	if u.Qty.IsZero() {
		ladder.Delete(Level{Price: u.Price})
	} else {
		ladder.Set(Level{Price: u.Price, Qty: u.Qty})
	}
	b.lastUpdateTS = u.Header.LocalTS
}

// BBO returns the best bid and ask. ok is false unless both sides have at
// least one level. A crossed book (bid >= ask) is still reported; exchanges
// cross transiently and filtering is the consumer's call.
func (b *OrderBook) BBO() (bid, ask core.Price, ok bool) {
	bestBid, okB := b.bids.Max()
	bestAsk, okA := b.asks.Min()
	if !okB || !okA {
		return core.Price{}, core.Price{}, false
	}
	return bestBid.Price, bestAsk.Price, true
}

// Snapshot copies up to n levels per side: bids in descending price order,
// asks ascending. n < 1 falls back to MaxDepth.
func (b *OrderBook) Snapshot(n int) (bids, asks []Level) {
	if n < 1 {
		n = MaxDepth
	}
	bids = make([]Level, 0, n)
	b.bids.Reverse(func(l Level) bool {
		bids = append(bids, l)
		return len(bids) < n
	})
	asks = make([]Level, 0, n)
	b.asks.Scan(func(l Level) bool {
		asks = append(asks, l)
		return len(asks) < n
	})
	return bids, asks
}

// Depth returns the number of levels per side.
func (b *OrderBook) Depth() (bids, asks int) {
	return b.bids.Len(), b.asks.Len()
}

// LastUpdateTS returns the local timestamp of the most recent applied update.
func (b *OrderBook) LastUpdateTS() core.Timestamp { return b.lastUpdateTS }
