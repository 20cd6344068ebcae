package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WRMELO/PortfolioZero/pricing"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500000.0, cfg.Portfolio.InitialCapital)
	assert.Equal(t, 10, cfg.Portfolio.TargetPositions)
	assert.Equal(t, 2, cfg.Execution.SellSettlementDays)
	assert.Equal(t, 10, cfg.Execution.QuarantineSessions)
	assert.True(t, cfg.WeeklyBuy.Enabled)
	assert.Equal(t, time.Monday, cfg.Weekday())
	assert.Equal(t, "csv", cfg.Journal.Type)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero capital", func(c *Config) { c.Portfolio.InitialCapital = 0 }, "initial_capital"},
		{"zero positions", func(c *Config) { c.Portfolio.TargetPositions = 0 }, "target_positions"},
		{"negative fee", func(c *Config) { c.Execution.FeeFixedPerOrder = -1 }, "fees"},
		{"negative settlement", func(c *Config) { c.Execution.SellSettlementDays = -1 }, "sell_settlement_days"},
		{"negative quarantine", func(c *Config) { c.Execution.QuarantineSessions = -1 }, "quarantine_sessions"},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestWeekday(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.WeeklyBuy.DayOfWeek = "THU"
	assert.Equal(t, time.Thursday, cfg.Weekday())

	cfg.WeeklyBuy.DayOfWeek = "SATURDAY"
	assert.Equal(t, time.Monday, cfg.Weekday())
}

func TestWindowDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	warmup, start, end, notes := cfg.Window()
	assert.Empty(t, notes)
	assert.Equal(t, pricing.Day(2022, 1, 1), warmup)
	assert.Equal(t, pricing.Day(2023, 1, 2), start)
	assert.Equal(t, pricing.Day(2026, 1, 22), end)
}

func TestWindowFallbacks(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Dates.End = "22/01/2026"
	_, _, end, notes := cfg.Window()
	assert.Equal(t, []string{"invalid_end_date_fallback"}, notes)
	assert.Equal(t, pricing.Day(2026, 1, 22), end)

	cfg = Default()
	cfg.Dates.WarmupStart = "garbage"
	cfg.Dates.Start = ""
	warmup, start, _, notes := cfg.Window()
	assert.Equal(t, []string{"invalid_warmup_start_fallback"}, notes)
	assert.Equal(t, pricing.Day(2022, 1, 1), warmup)
	// Empty dates take the default silently.
	assert.Equal(t, pricing.Day(2023, 1, 2), start)
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	doc := `
portfolio:
  initial_capital: 250000
  target_positions: 5
execution:
  fee_fixed_per_order: 2.5
weekly_buy:
  enabled: true
  day_of_week: WED
dates:
  start_date: "2024-01-02"
journal:
  type: sqlite
  db_path: runs.db
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250000.0, cfg.Portfolio.InitialCapital)
	assert.Equal(t, 5, cfg.Portfolio.TargetPositions)
	assert.Equal(t, 2.5, cfg.Execution.FeeFixedPerOrder)
	assert.Equal(t, time.Wednesday, cfg.Weekday())
	assert.Equal(t, "2024-01-02", cfg.Dates.Start)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	// Unset fields keep their defaults.
	assert.Equal(t, 2, cfg.Execution.SellSettlementDays)
}

func TestLoadFromFileJSON(t *testing.T) {
	t.Parallel()

	doc := `{"portfolio": {"initial_capital": 100000, "target_positions": 3}}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, cfg.Portfolio.InitialCapital)
	assert.Equal(t, 3, cfg.Portfolio.TargetPositions)
}

func TestLoadFromFileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("portfolio:\n  initial_capital: -5\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoadFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
