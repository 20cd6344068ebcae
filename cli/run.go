package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/WRMELO/PortfolioZero/config"
	"github.com/WRMELO/PortfolioZero/journal"
	"github.com/WRMELO/PortfolioZero/pricing"
	"github.com/WRMELO/PortfolioZero/rules"
	"github.com/WRMELO/PortfolioZero/sim"
	"github.com/WRMELO/PortfolioZero/universe"
)

func newRunCmd() *cobra.Command {
	var (
		configPath  string
		rulesetPath string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and write the audit outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(configPath, rulesetPath, outDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "simulation config file (YAML or JSON)")
	cmd.Flags().StringVar(&rulesetPath, "ruleset", "", "ruleset document (JSON or YAML)")
	cmd.Flags().StringVar(&outDir, "out", "./out", "output directory")
	_ = cmd.MarkFlagRequired("ruleset")

	return cmd
}

func runSimulation(configPath, rulesetPath, outDir string) error {
	log := logger()
	startedAt := time.Now()

	// Setup problems accumulate here and are merged into the run's
	// diagnostics: the run always produces a report, even a failing one.
	var setupErrors, setupWarnings []string

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cfg.Journal.OutDir != "" && outDir == "./out" {
		outDir = cfg.Journal.OutDir
	}

	// A missing or invalid ruleset is a configuration error, not an abort:
	// the run proceeds without rules and the report carries the verdict.
	rs, err := rules.LoadFile(rulesetPath)
	if err != nil {
		rs = nil
		if errors.Is(err, os.ErrNotExist) {
			setupErrors = append(setupErrors, fmt.Sprintf("ruleset_not_found:%s", rulesetPath))
		} else {
			setupErrors = append(setupErrors, fmt.Sprintf("ruleset_invalid:%v", err))
		}
	}

	var u *universe.Universe
	if cfg.Data.UniverseFile != "" {
		u, err = universe.LoadFile(cfg.Data.UniverseFile)
		if err != nil {
			return err
		}
	} else {
		u = universe.New(nil)
		setupWarnings = append(setupWarnings, "universe_file_not_configured")
	}
	log.Info().Int("tickers", u.Len()).Msg("supervised universe loaded")

	prices := pricing.NewHistory()
	if cfg.Data.PricesDir != "" {
		loaded, missing, err := pricing.LoadHistory(cfg.Data.PricesDir, u.Tickers())
		if err != nil {
			return err
		}
		prices = loaded
		for _, t := range missing {
			setupErrors = append(setupErrors, fmt.Sprintf("price_file_not_found:%s", t))
		}
	}

	var benchmark *pricing.History
	if cfg.Data.BenchmarkTicker != "" && cfg.Data.PricesDir != "" {
		benchmark = pricing.NewHistory()
		found, err := pricing.LoadSeries(cfg.Data.PricesDir, cfg.Data.BenchmarkTicker, benchmark)
		if err != nil {
			return err
		}
		if !found {
			benchmark = nil
			setupWarnings = append(setupWarnings, fmt.Sprintf("benchmark_not_found:%s", cfg.Data.BenchmarkTicker))
		}
	}

	log.Info().
		Int("price_tickers", len(prices.Tickers())).
		Int("trading_dates", len(prices.Dates())).
		Msg("price history loaded")

	res := sim.Run(cfg, rs, prices, benchmark, u)
	res.Diagnostics.Errors = append(setupErrors, res.Diagnostics.Errors...)
	res.Diagnostics.Warnings = append(setupWarnings, res.Diagnostics.Warnings...)

	if err := writeOutputs(outDir, cfg, rs, rulesetPath, &res, startedAt); err != nil {
		return err
	}

	log.Info().
		Str("run_id", res.RunID).
		Float64("final_value", res.Summary.FinalValue).
		Float64("max_drawdown", res.Summary.MaxDrawdown).
		Int("orders", res.Summary.Orders).
		Int("quarantine_events", res.Summary.QuarantineEvents).
		Bool("overall_pass", res.Diagnostics.OverallPass()).
		Msg("simulation finished")

	if !res.Diagnostics.OverallPass() {
		for _, e := range res.Diagnostics.Errors {
			log.Error().Msg(e)
		}
		return fmt.Errorf("run %s failed: %d errors", res.RunID, len(res.Diagnostics.Errors))
	}
	return nil
}

func writeOutputs(outDir string, cfg *config.Config, rs *rules.RuleSet, rulesetPath string, res *sim.Result, startedAt time.Time) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	var j journal.Journal
	var err error
	switch cfg.Journal.Type {
	case "sqlite":
		dbPath := cfg.Journal.DBPath
		if dbPath == "" {
			dbPath = filepath.Join(outDir, "run.sqlite")
		}
		j, err = journal.NewSQLite(dbPath)
	default:
		j, err = journal.NewCSV(
			filepath.Join(outDir, "orders.csv"),
			filepath.Join(outDir, "equity.csv"),
		)
	}
	if err != nil {
		return err
	}
	defer j.Close()

	if err := journal.RecordRun(j, res); err != nil {
		return err
	}
	if err := journal.WriteSummary(filepath.Join(outDir, "portfolio_summary.json"), res); err != nil {
		return err
	}
	rulesetID := ""
	if rs != nil {
		rulesetID = rs.ID
	}
	return journal.WriteReport(filepath.Join(outDir, "run_report.json"), res, startedAt, rulesetID, rulesetPath)
}
