// Package config exposes strongly typed application configuration structs
// loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GarrickPinon/hft-engine/internal/core"
	"github.com/GarrickPinon/hft-engine/internal/risk"
)

// App captures process-wide runtime settings.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// FeedSymbol maps a venue symbol to the engine's numeric id.
type FeedSymbol struct {
	Name string        `yaml:"name"`
	ID   core.SymbolID `yaml:"id"`
}

// Feed selects and parameterizes the market data source.
type Feed struct {
	Provider       string       `yaml:"provider"` // stub | binance
	Symbols        []FeedSymbol `yaml:"symbols"`
	StubIntervalMs int          `yaml:"stub_interval_ms"`
}

// SymbolTable returns the venue-symbol to id mapping.
func (f Feed) SymbolTable() map[string]core.SymbolID {
	table := make(map[string]core.SymbolID, len(f.Symbols))
	for _, s := range f.Symbols {
		table[s.Name] = s.ID
	}
	return table
}

// Engine selects the traded symbol and strategy tuning.
type Engine struct {
	SymbolID     core.SymbolID `yaml:"symbol_id"`
	StrategyMode string        `yaml:"strategy_mode"`
	Threshold    float64       `yaml:"threshold"`
	AuditLogPath string        `yaml:"audit_log_path"`
	QueueSize    int           `yaml:"queue_size"`
}

// Risk encodes the pre-trade guard-rails in human units; Limits converts to
// the gate's fixed-point config.
type Risk struct {
	MaxOrderQty       float64 `yaml:"max_order_qty"`
	MaxPriceDeviation float64 `yaml:"max_price_deviation"`
	MaxOrdersPerSec   int64   `yaml:"max_orders_per_sec"`
}

// Limits converts to the risk gate's fixed-point configuration.
func (r Risk) Limits() risk.Config {
	return risk.Config{
		MaxOrderQty:       core.QuantityFromFloat(r.MaxOrderQty),
		MaxPriceDeviation: core.PriceFromFloat(r.MaxPriceDeviation),
		MaxOrdersPerSec:   r.MaxOrdersPerSec,
	}
}

// Backtest parameterizes the Ornstein-Uhlenbeck simulation.
type Backtest struct {
	InitialPrice  float64 `yaml:"initial_price"`
	Volatility    float64 `yaml:"volatility"`
	MeanReversion float64 `yaml:"mean_reversion"`
	LongTermMean  float64 `yaml:"long_term_mean"`
	Steps         int     `yaml:"steps"`
	Dt            float64 `yaml:"dt"`
	Output        string  `yaml:"output"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Feed     Feed     `yaml:"feed"`
	Engine   Engine   `yaml:"engine"`
	Risk     Risk     `yaml:"risk"`
	Backtest Backtest `yaml:"backtest"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
