// Package config holds the typed simulation configuration. It is
// constructed once (file or defaults) and passed explicitly into the
// engine's entry point; nothing reads ambient global state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/WRMELO/PortfolioZero/pricing"
)

// Config is the complete simulation configuration.
type Config struct {
	Portfolio PortfolioConfig `json:"portfolio" yaml:"portfolio"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	WeeklyBuy WeeklyBuyConfig `json:"weekly_buy" yaml:"weekly_buy"`
	Dates     DateConfig      `json:"dates" yaml:"dates"`
	Data      DataConfig      `json:"data" yaml:"data"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

// PortfolioConfig sizes the portfolio.
type PortfolioConfig struct {
	InitialCapital  float64 `json:"initial_capital" yaml:"initial_capital"`
	TargetPositions int     `json:"target_positions" yaml:"target_positions"`
}

// ExecutionConfig models fees, settlement, and re-entry quarantine.
type ExecutionConfig struct {
	FeePercentPerOrder float64 `json:"fee_percent_per_order" yaml:"fee_percent_per_order"`
	FeeFixedPerOrder   float64 `json:"fee_fixed_per_order" yaml:"fee_fixed_per_order"`
	SellSettlementDays int     `json:"sell_settlement_days" yaml:"sell_settlement_days"`
	QuarantineSessions int     `json:"quarantine_sessions_after_zero" yaml:"quarantine_sessions_after_zero"`
}

// WeeklyBuyConfig drives the calendar-based allocation pass.
type WeeklyBuyConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	DayOfWeek string `json:"day_of_week" yaml:"day_of_week"` // MON..FRI
}

// DateConfig bounds the run. Values are YYYY-MM-DD strings so a malformed
// end date can degrade to the documented fallback instead of failing the
// load.
type DateConfig struct {
	WarmupStart string `json:"history_warmup_start" yaml:"history_warmup_start"`
	Start       string `json:"start_date" yaml:"start_date"`
	End         string `json:"end_date" yaml:"end_date"`
}

// DataConfig points at the market-data contract on disk.
type DataConfig struct {
	PricesDir       string `json:"prices_dir" yaml:"prices_dir"`
	UniverseFile    string `json:"universe_supervised_file" yaml:"universe_supervised_file"`
	BenchmarkTicker string `json:"benchmark_ticker" yaml:"benchmark_ticker"`
}

// JournalConfig selects order/equity persistence.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "csv" or "sqlite"
	OutDir string `json:"out_dir,omitempty" yaml:"out_dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Fallbacks used when the configured dates are absent or malformed.
const (
	defaultWarmupStart = "2022-01-01"
	defaultStart       = "2023-01-02"
	defaultEnd         = "2026-01-22"
)

var weekdays = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
}

// LoadFromFile loads configuration from a YAML or JSON file, chosen by
// extension (YAML tried first otherwise).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if jerr := json.Unmarshal(data, cfg); jerr != nil {
				return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields a run cannot proceed without. Date fallbacks
// are intentionally not validated here; Window applies them and reports.
func (c *Config) Validate() error {
	if c.Portfolio.InitialCapital <= 0 {
		return fmt.Errorf("portfolio.initial_capital must be positive")
	}
	if c.Portfolio.TargetPositions <= 0 {
		return fmt.Errorf("portfolio.target_positions must be positive")
	}
	if c.Execution.FeePercentPerOrder < 0 || c.Execution.FeeFixedPerOrder < 0 {
		return fmt.Errorf("execution fees must not be negative")
	}
	if c.Execution.SellSettlementDays < 0 {
		return fmt.Errorf("execution.sell_settlement_days must not be negative")
	}
	if c.Execution.QuarantineSessions < 0 {
		return fmt.Errorf("execution.quarantine_sessions_after_zero must not be negative")
	}
	if c.Journal.Type != "" && c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	return nil
}

// Weekday resolves the weekly-buy day, defaulting to Monday for unknown
// values.
func (c *Config) Weekday() time.Weekday {
	if wd, ok := weekdays[c.WeeklyBuy.DayOfWeek]; ok {
		return wd
	}
	return time.Monday
}

// Window resolves the warmup/simulation date bounds. Malformed or missing
// values fall back to the documented defaults; notes lists the fallbacks
// applied so the caller can record them as diagnostics.
func (c *Config) Window() (warmupStart, start, end time.Time, notes []string) {
	var err error
	warmupStart, err = pricing.ParseDay(orDefault(c.Dates.WarmupStart, defaultWarmupStart))
	if err != nil {
		warmupStart, _ = pricing.ParseDay(defaultWarmupStart)
		notes = append(notes, "invalid_warmup_start_fallback")
	}
	start, err = pricing.ParseDay(orDefault(c.Dates.Start, defaultStart))
	if err != nil {
		start, _ = pricing.ParseDay(defaultStart)
		notes = append(notes, "invalid_start_date_fallback")
	}
	end, err = pricing.ParseDay(orDefault(c.Dates.End, defaultEnd))
	if err != nil {
		end, _ = pricing.ParseDay(defaultEnd)
		notes = append(notes, "invalid_end_date_fallback")
	}
	return warmupStart, start, end, notes
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Default mirrors the frozen experiment parameters.
func Default() *Config {
	return &Config{
		Portfolio: PortfolioConfig{
			InitialCapital:  500000,
			TargetPositions: 10,
		},
		Execution: ExecutionConfig{
			SellSettlementDays: 2,
			QuarantineSessions: 10,
		},
		WeeklyBuy: WeeklyBuyConfig{
			Enabled:   true,
			DayOfWeek: "MON",
		},
		Dates: DateConfig{
			WarmupStart: defaultWarmupStart,
			Start:       defaultStart,
			End:         defaultEnd,
		},
		Journal: JournalConfig{
			Type:   "csv",
			OutDir: "./out",
		},
	}
}
