package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/GarrickPinon/hft-engine/internal/alog"
	"github.com/GarrickPinon/hft-engine/internal/config"
	"github.com/GarrickPinon/hft-engine/internal/engine"
	"github.com/GarrickPinon/hft-engine/internal/feed"
	"github.com/GarrickPinon/hft-engine/internal/gateway"
	"github.com/GarrickPinon/hft-engine/internal/latency"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
	"github.com/GarrickPinon/hft-engine/internal/metrics"
	"github.com/GarrickPinon/hft-engine/internal/ring"
	"github.com/GarrickPinon/hft-engine/internal/risk"
	"github.com/GarrickPinon/hft-engine/internal/strategy"
	"github.com/GarrickPinon/hft-engine/internal/util"
)

const defaultQueueSize = 8192

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("HFT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	audit, err := alog.New(cfg.Engine.AuditLogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open audit log")
	}

	kill := risk.NewKillSwitch()
	gate, err := risk.NewGate(cfg.Risk.Limits(), kill, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("risk config")
	}

	gw, err := gateway.NewRingGateway(defaultQueueSize, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("gateway")
	}

	strat := strategy.NewMeanReversion(cfg.Engine.SymbolID, cfg.Engine.Threshold)
	tracker := latency.NewTracker(latency.DefaultMaxSamples)
	eng := engine.New[*strategy.MeanReversion, *gateway.RingGateway](
		strat, gw, gate, audit,
		engine.WithTracker[*strategy.MeanReversion, *gateway.RingGateway](tracker),
	)

	queueSize := cfg.Engine.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	inbound, err := ring.New[marketdata.TradeUpdate](queueSize)
	if err != nil {
		log.Fatal().Err(err).Msg("inbound ring")
	}

	feeder := buildFeeder(cfg, log)
	feeder.SetOnTrade(feed.TradeSinkFunc(func(t marketdata.TradeUpdate) {
		if !inbound.Push(t) {
			log.Warn().Msg("inbound ring full, trade dropped")
		}
	}))

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Engine loop: single consumer of the inbound ring.
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		var t marketdata.TradeUpdate
		for {
			progressed := false
			for inbound.Pop(&t) {
				progressed = true
				eng.OnTrade(t)
			}
			select {
			case <-ctx.Done():
				for inbound.Pop(&t) {
					eng.OnTrade(t)
				}
				return
			default:
			}
			if !progressed {
				runtime.Gosched()
			}
		}
	}()

	if err := feeder.Start(); err != nil {
		log.Fatal().Err(err).Msg("start feeder")
	}
	log.Info().Str("provider", cfg.Feed.Provider).Msg("engine started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	// Halt new orders first, then stop the pipeline front to back: feeder,
	// engine, gateway, audit log.
	kill.Trigger("shutdown")
	feeder.Stop()
	<-engineDone
	// The engine thread is gone, so main is now the sole audit producer.
	audit.Log(alog.LevelWarn, "KILL_SWITCH armed: shutdown")
	gw.Stop()
	audit.Stop()
	if drops := audit.Drops(); drops > 0 {
		log.Warn().Int64("drops", drops).Msg("audit records dropped")
	}

	hist := tracker.Histogram()
	if hist.Count() > 0 {
		log.Info().
			Int64("trades", hist.Count()).
			Float64("p50_ns", tracker.P50()).
			Float64("p99_ns", tracker.P99()).
			Int64("max_ns", hist.Max()).
			Msg("hot path latency")
	}
}

func buildFeeder(cfg *config.Config, log zerolog.Logger) feed.Feeder {
	switch cfg.Feed.Provider {
	case "binance":
		return feed.NewBinanceFeeder(cfg.Feed.SymbolTable(), log)
	default:
		symbol := "SYNTH"
		if len(cfg.Feed.Symbols) > 0 {
			symbol = cfg.Feed.Symbols[0].Name
		}
		interval := time.Duration(cfg.Feed.StubIntervalMs) * time.Millisecond
		return feed.NewStubFeeder(cfg.Engine.SymbolID, symbol, interval, log)
	}
}
