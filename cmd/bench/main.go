// The bench binary measures strategy hot-path latency over a synthetic trade
// stream and exports the distribution as JSON.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/latency"
	"github.com/GarrickPinon/hft-engine/internal/marketdata"
	"github.com/GarrickPinon/hft-engine/internal/strategy"
)

func simulateHotPath(tracker *latency.Tracker, iterations int) {
	const symbolID core.SymbolID = 1
	strat := strategy.NewMeanReversion(symbolID, 1.5)
	rng := rand.New(rand.NewSource(1))
	price := 50000.0

	for i := 0; i < iterations; i++ {
		start := core.NowNanos()

		var trade marketdata.TradeUpdate
		trade.Header.SymbolID = symbolID
		trade.Header.ExchangeTS = core.NowNanos()
		trade.Header.LocalTS = core.NowNanos()
		trade.Header.Type = marketdata.UpdateTrade

		price += float64(rng.Intn(100)-50) * 0.01
		trade.Price = core.PriceFromFloat(price)
		trade.Qty = core.QuantityFromFloat(0.1)
		trade.Side = core.SideBuy
		if rng.Intn(2) == 0 {
			trade.Side = core.SideSell
		}

		_ = strat.OnTrade(trade)

		tracker.Record(core.NowNanos() - start)
	}
}

func main() {
	iterations := flag.Int("iterations", 100000, "number of measured iterations")
	warmup := flag.Int("warmup", 1000, "warmup iterations")
	output := flag.String("output", "latency.json", "output JSON file")
	flag.Parse()

	fmt.Println("=== HFT Engine Latency Benchmark ===")
	fmt.Printf("Warmup iterations: %d\n", *warmup)
	fmt.Printf("Benchmark iterations: %d\n\n", *iterations)

	warmupTracker := latency.NewTracker(latency.DefaultMaxSamples)
	fmt.Print("Running warmup...")
	simulateHotPath(warmupTracker, *warmup)
	fmt.Println(" done")

	tracker := latency.NewTracker(latency.DefaultMaxSamples)
	fmt.Print("Running benchmark...")
	simulateHotPath(tracker, *iterations)
	fmt.Println(" done")

	hist := tracker.Histogram()
	fmt.Printf("\nSamples: %d\n", hist.Count())
	fmt.Printf("Min:  %d ns\n", hist.Min())
	fmt.Printf("Max:  %d ns\n", hist.Max())
	fmt.Printf("Mean: %.1f ns\n", hist.Mean())
	fmt.Printf("p50:  %.1f ns\n", tracker.P50())
	fmt.Printf("p95:  %.1f ns\n", tracker.P95())
	fmt.Printf("p99:  %.1f ns\n", tracker.P99())
	fmt.Printf("p999: %.1f ns\n", tracker.P999())

	if err := tracker.ExportJSON(*output); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nResults written to %s\n", *output)
}
