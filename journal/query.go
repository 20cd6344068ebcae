package journal

import (
	"time"

	"github.com/WRMELO/PortfolioZero/pricing"
	"github.com/WRMELO/PortfolioZero/sim"
)

// ListOrdersBetween returns orders traded within [start, end], in log
// order.
func (j *SQLiteJournal) ListOrdersBetween(start, end time.Time) ([]sim.Order, error) {
	rows, err := j.db.Query(`
		SELECT date, action, ticker, qty, price, fee_total, cash_delta_date, settlement_date, rule_id_or_reason
		FROM orders
		WHERE date >= ? AND date <= ?
		ORDER BY seq ASC`, day(start), day(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CountOrdersByAction tallies orders per action over the whole log.
func (j *SQLiteJournal) CountOrdersByAction() (map[string]int, error) {
	rows, err := j.db.Query(`SELECT action, COUNT(*) FROM orders GROUP BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		out[action] = n
	}
	return out, rows.Err()
}

// ListEquityBetween returns the stored equity points within [start, end],
// ordered by date.
func (j *SQLiteJournal) ListEquityBetween(start, end time.Time) ([]sim.EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT date, equity FROM equity
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC`, day(start), day(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.EquityPoint
	for rows.Next() {
		var date string
		var e sim.EquityPoint
		if err := rows.Scan(&date, &e.Equity); err != nil {
			return nil, err
		}
		if e.Date, err = pricing.ParseDay(date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
