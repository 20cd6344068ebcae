package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/WRMELO/PortfolioZero/pricing"
	"github.com/WRMELO/PortfolioZero/sim"
)

// SQLiteJournal stores orders and equity in a SQLite database so audit
// tooling can query them without re-parsing CSVs.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordOrder(o sim.Order) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(date, action, ticker, qty, price, fee_total, cash_delta_date, settlement_date, rule_id_or_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		day(o.Date), o.Action, o.Ticker, o.Qty, o.Price, o.FeeTotal,
		day(o.CashDeltaDate), day(o.SettlementDate), o.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e sim.EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO equity (date, equity) VALUES (?, ?)`,
		day(e.Date), e.Equity,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func scanOrder(rows *sql.Rows) (sim.Order, error) {
	var o sim.Order
	var date, cashDelta, settle string
	if err := rows.Scan(&date, &o.Action, &o.Ticker, &o.Qty, &o.Price, &o.FeeTotal, &cashDelta, &settle, &o.Reason); err != nil {
		return sim.Order{}, err
	}
	var err error
	if o.Date, err = pricing.ParseDay(date); err != nil {
		return sim.Order{}, err
	}
	if o.CashDeltaDate, err = pricing.ParseDay(cashDelta); err != nil {
		return sim.Order{}, err
	}
	if o.SettlementDate, err = pricing.ParseDay(settle); err != nil {
		return sim.Order{}, err
	}
	return o, nil
}
