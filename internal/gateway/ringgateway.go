package gateway

import (
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/ring"
)

// Sender transmits one message to the venue; implementations own the wire
// protocol. The egress worker calls it off the engine thread.
type Sender func(Message) error

// RingGateway satisfies the Gateway contract by enqueueing commands onto an
// SPSC ring drained by a dedicated egress goroutine. SendOrder/CancelOrder
// never block; a full ring drops the command and bumps a counter, which the
// egress worker logs when it stops. Order flow loss is severe, so size the ring for the
// burst you expect from the rate limiter.
type RingGateway struct {
	queue   *ring.Buffer[Message]
	send    Sender
	log     zerolog.Logger
	running atomic.Bool
	drops   atomic.Int64
	done    chan struct{}
}

// NewRingGateway starts the egress worker. capacity must be a power of two.
// A nil sender logs each message instead of transmitting, which is the paper
// wiring.
func NewRingGateway(capacity int, send Sender, log zerolog.Logger) (*RingGateway, error) {
	q, err := ring.New[Message](capacity)
	if err != nil {
		return nil, err
	}
	g := &RingGateway{
		queue: q,
		send:  send,
		log:   log,
		done:  make(chan struct{}),
	}
	g.running.Store(true)
	go g.egress()
	return g, nil
}

// SendOrder enqueues a new-order command. Engine thread only.
func (g *RingGateway) SendOrder(cmd OrderCommand) {
	g.enqueue(Message{Type: CommandNewOrder, Command: cmd, Timestamp: core.NowNanos()})
}

// CancelOrder enqueues a cancel for a previously sent order. Engine thread
// only.
func (g *RingGateway) CancelOrder(orderID core.OrderID, symbolID core.SymbolID) {
	g.enqueue(Message{
		Type:      CommandCancel,
		Command:   OrderCommand{SymbolID: symbolID, OrderID: orderID},
		Timestamp: core.NowNanos(),
	})
}

func (g *RingGateway) enqueue(m Message) {
	if !g.queue.Push(m) {
		g.drops.Add(1)
	}
}

// Drops reports commands lost to a full egress ring.
func (g *RingGateway) Drops() int64 { return g.drops.Load() }

// Stop drains outstanding messages and joins the egress worker.
func (g *RingGateway) Stop() {
	if !g.running.CompareAndSwap(true, false) {
		return
	}
	<-g.done
}

func (g *RingGateway) egress() {
	defer close(g.done)
	var m Message
	for {
		progressed := false
		for g.queue.Pop(&m) {
			progressed = true
			g.transmit(m)
		}
		if !g.running.Load() {
			for g.queue.Pop(&m) {
				g.transmit(m)
			}
			if d := g.drops.Load(); d > 0 {
				g.log.Warn().Int64("drops", d).Msg("egress ring full, commands dropped")
			}
			return
		}
		if !progressed {
			runtime.Gosched()
		}
	}
}

func (g *RingGateway) transmit(m Message) {
	if g.send == nil {
		g.log.Info().
			Uint64("id", uint64(m.Command.OrderID)).
			Uint32("sym", uint32(m.Command.SymbolID)).
			Str("side", m.Command.Side.String()).
			Float64("px", m.Command.Price.Float64()).
			Float64("qty", m.Command.Qty.Float64()).
			Uint8("type", uint8(m.Type)).
			Msg("egress order")
		return
	}
	if err := g.send(m); err != nil {
		g.log.Error().Err(err).Uint64("id", uint64(m.Command.OrderID)).Msg("gateway send failed")
	}
}
