package engine

import (
	"strings"
	"sync"
	"testing"

	"github.com/GarrickPinon/hft-engine/internal/alog"
	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/gateway"
	"github.com/GarrickPinon/hft-engine/internal/latency"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
	"github.com/GarrickPinon/hft-engine/internal/risk"
	"github.com/GarrickPinon/hft-engine/internal/strategy"
)

// collectGateway records sent commands in memory.
type collectGateway struct {
	sent []gateway.OrderCommand
}

func (g *collectGateway) SendOrder(cmd gateway.OrderCommand) {
	g.sent = append(g.sent, cmd)
}

// syncBuffer lets the test read what the audit worker wrote.
type syncBuffer struct {
	mu  sync.Mutex
	b   strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func trade(px float64) marketdata.TradeUpdate {
	return marketdata.TradeUpdate{
		Header: marketdata.MDHeader{SymbolID: 1, Type: marketdata.UpdateTrade},
		Price:  core.PriceFromFloat(px),
		Qty:    core.QuantityFromFloat(1),
		Side:   core.SideSell,
	}
}

func riskConfig() risk.Config {
	return risk.Config{
		MaxOrderQty:       core.QuantityFromFloat(1.0),
		MaxPriceDeviation: core.PriceFromFloat(2.00),
		MaxOrdersPerSec:   100,
	}
}

func newTestEngine(t *testing.T, kill *risk.KillSwitch, buf *syncBuffer) (*Engine[*strategy.MeanReversion, *collectGateway], *collectGateway, *alog.Logger) {
	t.Helper()
	gate, err := risk.NewGate(riskConfig(), kill, nil)
	if err != nil {
		t.Fatal(err)
	}
	audit, err := alog.NewWithWriter(buf, 256)
	if err != nil {
		t.Fatal(err)
	}
	gw := &collectGateway{}
	strat := strategy.NewMeanReversion(1, 0.5)
	return New[*strategy.MeanReversion, *collectGateway](strat, gw, gate, audit), gw, audit
}

// settle feeds enough flat prints to pin the EWMA at px.
func settle(e *Engine[*strategy.MeanReversion, *collectGateway], px float64, n int) {
	for i := 0; i < n; i++ {
		e.OnTrade(trade(px))
	}
}

func TestSignalPassesRiskAndReachesGateway(t *testing.T) {
	var buf syncBuffer
	e, gw, audit := newTestEngine(t, risk.NewKillSwitch(), &buf)

	settle(e, 100, 5)
	e.OnTrade(trade(99.7)) // dips below fair value minus threshold? dev = -0.27, no
	if len(gw.sent) != 0 {
		t.Fatalf("fired inside threshold band")
	}
	e.OnTrade(trade(99.0)) // deviation well past 0.5
	audit.Stop()

	if len(gw.sent) != 1 {
		t.Fatalf("sent %d orders, want 1", len(gw.sent))
	}
	cmd := gw.sent[0]
	if cmd.OrderID != 1 {
		t.Fatalf("first order id %d, want 1", cmd.OrderID)
	}
	if cmd.Side != core.SideBuy {
		t.Fatalf("side %s, want BUY", cmd.Side)
	}
	if cmd.Price != core.PriceFromFloat(99.0) {
		t.Fatalf("price %v, want the print", cmd.Price.Float64())
	}
	if !strings.Contains(buf.String(), "ORDER_SENT id=1 sym=1") {
		t.Fatalf("missing ORDER_SENT audit record: %q", buf.String())
	}
}

func TestFatFingerRejectLogsAndConsumesID(t *testing.T) {
	var buf syncBuffer
	kill := risk.NewKillSwitch()
	gate, _ := risk.NewGate(risk.Config{
		MaxOrderQty:       core.QuantityFromFloat(1.0),
		MaxPriceDeviation: core.PriceFromFloat(0.50),
		MaxOrdersPerSec:   100,
	}, kill, nil)
	audit, _ := alog.NewWithWriter(&buf, 256)
	gw := &collectGateway{}
	// A strategy threshold wider than the risk band guarantees that every
	// signal which fires is a fat finger relative to its own reference.
	strat := strategy.NewMeanReversion(1, 4.0)
	e := New[*strategy.MeanReversion, *collectGateway](strat, gw, gate, audit)

	settle(e, 100, 10)
	e.OnTrade(trade(105.0)) // EWMA moves to 100.5, deviation 4.5 > risk band 0.5
	audit.Stop()

	if len(gw.sent) != 0 {
		t.Fatalf("rejected order reached the gateway")
	}
	if !strings.Contains(buf.String(), "RISK_REJECT id=1 sym=1") {
		t.Fatalf("missing RISK_REJECT audit record: %q", buf.String())
	}
	if e.NextOrderID() != 2 {
		t.Fatalf("order id not consumed on reject: next=%d", e.NextOrderID())
	}
}

func TestKillSwitchHaltsTrading(t *testing.T) {
	var buf syncBuffer
	kill := risk.NewKillSwitch()
	e, gw, audit := newTestEngine(t, kill, &buf)

	settle(e, 100, 5)
	kill.Trigger("test halt")
	e.OnTrade(trade(99.0))
	audit.Stop()

	if len(gw.sent) != 0 {
		t.Fatalf("order sent with kill switch armed")
	}
	if !strings.Contains(buf.String(), "RISK_REJECT") {
		t.Fatalf("missing RISK_REJECT record: %q", buf.String())
	}
}

func TestOrderIDsIncrementOncePerSignal(t *testing.T) {
	var buf syncBuffer
	e, gw, audit := newTestEngine(t, risk.NewKillSwitch(), &buf)

	settle(e, 100, 5)
	if e.NextOrderID() != 1 {
		t.Fatalf("ids consumed without signals: next=%d", e.NextOrderID())
	}
	// Alternate between a fresh settle and a dip so each dip fires.
	fired := 0
	for i := 0; i < 3; i++ {
		e.OnTrade(trade(99.0))
		fired++
		settle(e, 100, 40)
	}
	audit.Stop()

	if e.NextOrderID() != core.OrderID(1+fired) {
		t.Fatalf("next id %d after %d signals", e.NextOrderID(), fired)
	}
	for i, cmd := range gw.sent {
		if cmd.OrderID != core.OrderID(i+1) {
			t.Fatalf("order %d has id %d", i, cmd.OrderID)
		}
	}
}

func TestTrackerRecordsPerTrade(t *testing.T) {
	var buf syncBuffer
	kill := risk.NewKillSwitch()
	gate, _ := risk.NewGate(riskConfig(), kill, nil)
	audit, _ := alog.NewWithWriter(&buf, 256)
	gw := &collectGateway{}
	strat := strategy.NewMeanReversion(1, 0.5)
	tr := latency.NewTracker(1024)
	e := New[*strategy.MeanReversion, *collectGateway](strat, gw, gate, audit, WithTracker[*strategy.MeanReversion, *collectGateway](tr))

	for i := 0; i < 100; i++ {
		e.OnTrade(trade(100))
	}
	audit.Stop()
	if tr.Histogram().Count() != 100 {
		t.Fatalf("tracker recorded %d samples, want 100", tr.Histogram().Count())
	}
}
