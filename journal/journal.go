// Package journal persists the simulation's audit outputs: the order log
// and the equity curve, as CSV files for downstream reconciliation or as a
// SQLite database for ad-hoc queries.
package journal

import "github.com/WRMELO/PortfolioZero/sim"

// Journal records a run's outputs. Implementations must preserve insertion
// order for orders; the log is append-only.
type Journal interface {
	RecordOrder(sim.Order) error
	RecordEquity(sim.EquityPoint) error
	Close() error
}

// RecordRun writes a complete result through a journal.
func RecordRun(j Journal, res *sim.Result) error {
	for _, o := range res.Orders {
		if err := j.RecordOrder(o); err != nil {
			return err
		}
	}
	for _, e := range res.Equity {
		if err := j.RecordEquity(e); err != nil {
			return err
		}
	}
	return nil
}
