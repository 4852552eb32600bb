// The backtest binary replays the mean-reversion strategy against an
// Ornstein-Uhlenbeck market and writes the equity curve to CSV.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/GarrickPinon/hft-engine/internal/sim"
	"github.com/GarrickPinon/hft-engine/internal/strategy"
)

// maxInventory clips the simulated position at +/- 5 lots.
const maxInventory = 5.0

func main() {
	steps := flag.Int("steps", 5000, "simulation steps")
	threshold := flag.Float64("threshold", 0.5, "strategy entry threshold")
	output := flag.String("output", "equity_curve.csv", "equity curve CSV file")
	seed := flag.Int64("seed", time.Now().UnixNano(), "simulation seed")
	flag.Parse()

	fmt.Println("=== HFT Backtester ===")
	fmt.Println("Strategy: Mean Reversion")
	fmt.Println("Market: Ornstein-Uhlenbeck Process (Theta=0.1, Vol=0.5)")
	fmt.Println()

	cfg := sim.DefaultMarketConfig()
	cfg.Steps = *steps
	market := sim.NewMarket(cfg, *seed)
	portfolio := sim.NewPortfolio(10_000)
	strat := strategy.NewMeanReversion(cfg.SymbolID, *threshold)

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *output, err)
		os.Exit(1)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "step,price,inventory,equity")

	trades := 0
	for t := 0; t < cfg.Steps; t++ {
		trade := market.NextStep()
		px := trade.Price.Float64()

		s := strat.OnTrade(trade)

		// Instant fill assumption, clipped by inventory.
		if s.ShouldTrade && math.Abs(portfolio.Position()) < maxInventory {
			portfolio.Fill(s.Side, s.Price, s.Qty)
			trades++
		}

		fmt.Fprintf(w, "%d,%v,%v,%v\n", t, px, portfolio.Position(), portfolio.Equity(px))
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *output, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close %s: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Println("Simulation Complete.")
	fmt.Printf("Trades Executed: %d\n", trades)
	fmt.Printf("Final Equity: $%.2f\n", portfolio.Equity(market.Price()))
	fmt.Printf("Data exported to %s\n", *output)
}
