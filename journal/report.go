package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/WRMELO/PortfolioZero/sim"
)

// SummaryDoc is the portfolio_summary.json document ruleset sweeps compare.
type SummaryDoc struct {
	FinalValue        float64 `json:"final_value"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	NOrders           int     `json:"n_orders"`
	NReduce           int     `json:"n_reduce"`
	NZero             int     `json:"n_zero"`
	NQuarantineEvents int     `json:"n_quarantine_events"`
}

// ReportDoc is the run report: the pass/fail verdict plus everything an
// auditor needs to reproduce the run.
type ReportDoc struct {
	OverallPass         bool       `json:"overall_pass"`
	RunID               string     `json:"run_id"`
	StartedAt           string     `json:"started_at"`
	FinishedAt          string     `json:"finished_at"`
	Errors              []string   `json:"errors"`
	Warnings            []string   `json:"warnings"`
	DecisionMetricsAsOf string     `json:"decision_metrics_asof"`
	Counts              CountsDoc  `json:"counts"`
	Ruleset             RulesetDoc `json:"ruleset_info"`
}

type CountsDoc struct {
	Hold             int `json:"hold"`
	Reduce           int `json:"reduce"`
	Zero             int `json:"zero"`
	QuarantineEvents int `json:"quarantine_events"`
}

type RulesetDoc struct {
	RulesetID   string `json:"ruleset_id"`
	RulesetPath string `json:"ruleset_path"`
}

// WriteSummary writes the summary JSON for a result.
func WriteSummary(path string, res *sim.Result) error {
	doc := SummaryDoc{
		FinalValue:        res.Summary.FinalValue,
		MaxDrawdown:       res.Summary.MaxDrawdown,
		NOrders:           res.Summary.Orders,
		NReduce:           res.Summary.Reduces,
		NZero:             res.Summary.Zeros,
		NQuarantineEvents: res.Summary.QuarantineEvents,
	}
	return writeJSON(path, doc)
}

// WriteReport writes the run report JSON.
func WriteReport(path string, res *sim.Result, startedAt time.Time, rulesetID, rulesetPath string) error {
	doc := ReportDoc{
		OverallPass:         res.Diagnostics.OverallPass(),
		RunID:               res.RunID,
		StartedAt:           startedAt.UTC().Format(time.RFC3339),
		FinishedAt:          time.Now().UTC().Format(time.RFC3339),
		Errors:              emptyIfNil(res.Diagnostics.Errors),
		Warnings:            emptyIfNil(res.Diagnostics.Warnings),
		DecisionMetricsAsOf: "D-1",
		Counts: CountsDoc{
			Hold:             res.Summary.Holds,
			Reduce:           res.Summary.Reduces,
			Zero:             res.Summary.Zeros,
			QuarantineEvents: res.Summary.QuarantineEvents,
		},
		Ruleset: RulesetDoc{RulesetID: rulesetID, RulesetPath: rulesetPath},
	}
	return writeJSON(path, doc)
}

func writeJSON(path string, doc interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
