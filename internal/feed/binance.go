package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
	"github.com/GarrickPinon/hft-engine/internal/metrics"
)

const defaultBinanceURL = "wss://stream.binance.com:9443/stream"

type binanceEnvelope struct {
	Stream string       `json:"stream"`
	Data   binanceTrade `json:"data"`
}

type binanceTrade struct {
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}

// BinanceFeeder streams live trades from Binance public websockets and
// normalizes them into fixed-point TradeUpdates. Venue symbols map to engine
// SymbolIDs through the provided table.
type BinanceFeeder struct {
	baseURL string
	symbols map[string]core.SymbolID // venue symbol -> id
	log     zerolog.Logger
	sink    TradeSink
	cancel  context.CancelFunc
	done    chan struct{}
}

// BinanceOption adjusts feeder construction.
type BinanceOption func(*BinanceFeeder)

// WithBinanceURL overrides the stream endpoint, mainly for tests.
func WithBinanceURL(u string) BinanceOption {
	return func(f *BinanceFeeder) {
		if u != "" {
			f.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// NewBinanceFeeder builds a feeder for the given symbol table.
func NewBinanceFeeder(symbols map[string]core.SymbolID, log zerolog.Logger, opts ...BinanceOption) *BinanceFeeder {
	f := &BinanceFeeder{
		baseURL: defaultBinanceURL,
		symbols: make(map[string]core.SymbolID, len(symbols)),
		log:     log,
	}
	for sym, id := range symbols {
		f.symbols[strings.ToUpper(strings.TrimSpace(sym))] = id
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetOnTrade registers the sink; must precede Start.
func (f *BinanceFeeder) SetOnTrade(sink TradeSink) { f.sink = sink }

// Start validates the symbol table and spawns the stream worker.
func (f *BinanceFeeder) Start() error {
	if len(f.symbols) == 0 {
		return fmt.Errorf("binance feed requires at least one symbol")
	}
	if f.sink == nil {
		return fmt.Errorf("binance feed requires a trade sink")
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.done = make(chan struct{})
	go f.run(ctx)
	return nil
}

// Stop signals the worker down and joins it.
func (f *BinanceFeeder) Stop() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
}

func (f *BinanceFeeder) run(ctx context.Context) {
	defer close(f.done)

	streams := make([]string, 0, len(f.symbols))
	for sym := range f.symbols {
		streams = append(streams, strings.ToLower(sym)+"@trade")
	}
	url := fmt.Sprintf("%s?streams=%s", f.baseURL, strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		if err := f.consumeStream(ctx, url); err != nil {
			if ctx.Err() != nil {
				return
			}
			f.log.Warn().Err(err).Msg("binance feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return
	}
}

func (f *BinanceFeeder) consumeStream(ctx context.Context, url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("url", f.baseURL).Int("symbols", len(f.symbols)).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if update, symbol, ok := f.normalize(message); ok {
			f.sink.OnTrade(update)
			metrics.TicksTotal.WithLabelValues(symbol).Inc()
		}
	}
}

// normalize converts one raw stream message into a TradeUpdate. Unknown
// symbols and malformed payloads are dropped with a warning.
func (f *BinanceFeeder) normalize(message []byte) (marketdata.TradeUpdate, string, bool) {
	var env binanceEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		f.log.Warn().Err(err).Msg("failed to decode binance message")
		return marketdata.TradeUpdate{}, "", false
	}

	symbol := parseStreamSymbol(env.Stream)
	id, ok := f.symbols[symbol]
	if !ok {
		f.log.Warn().Str("symbol", symbol).Msg("trade for unmapped symbol")
		return marketdata.TradeUpdate{}, "", false
	}
	px, err := strconv.ParseFloat(env.Data.Price, 64)
	if err != nil {
		f.log.Warn().Err(err).Msg("invalid price from binance")
		return marketdata.TradeUpdate{}, "", false
	}
	qty, err := strconv.ParseFloat(env.Data.Quantity, 64)
	if err != nil {
		f.log.Warn().Err(err).Msg("invalid quantity from binance")
		return marketdata.TradeUpdate{}, "", false
	}

	// Buyer-maker means the seller crossed the spread.
	side := core.SideBuy
	if env.Data.IsBuyerMaker {
		side = core.SideSell
	}
	return marketdata.TradeUpdate{
		Header: marketdata.MDHeader{
			ExchangeTS: env.Data.TradeTime * int64(time.Millisecond),
			LocalTS:    core.NowNanos(),
			SymbolID:   id,
			Type:       marketdata.UpdateTrade,
		},
		Price: core.PriceFromFloat(px),
		Qty:   core.QuantityFromFloat(qty),
		Side:  side,
	}, symbol, true
}

func parseStreamSymbol(stream string) string {
	parts := strings.Split(stream, "@")
	if len(parts) == 0 || parts[0] == "" {
		return strings.ToUpper(stream)
	}
	return strings.ToUpper(parts[0])
}
