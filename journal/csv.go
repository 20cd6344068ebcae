package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/WRMELO/PortfolioZero/sim"
)

// Column layout of orders.csv. Downstream reconciliation depends on this
// exact order and formatting; change it and the audits break.
var orderHeader = []string{
	"date", "action", "ticker", "qty", "price", "fee_total",
	"cash_delta_date", "settlement_date", "rule_id_or_reason",
}

var equityHeader = []string{"date", "equity"}

// CSVJournal writes orders and equity to two CSV files.
type CSVJournal struct {
	orders *csv.Writer
	equity *csv.Writer
	of, ef *os.File
}

// NewCSV creates the two files and writes their headers.
func NewCSV(ordersPath, equityPath string) (*CSVJournal, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		of.Close()
		return nil, err
	}

	ow := csv.NewWriter(of)
	ew := csv.NewWriter(ef)

	if err := ow.Write(orderHeader); err != nil {
		return nil, err
	}
	if err := ew.Write(equityHeader); err != nil {
		return nil, err
	}
	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{orders: ow, equity: ew, of: of, ef: ef}, nil
}

func (j *CSVJournal) RecordOrder(o sim.Order) error {
	err := j.orders.Write([]string{
		day(o.Date),
		o.Action,
		o.Ticker,
		strconv.FormatInt(o.Qty, 10),
		f4(o.Price),
		f4(o.FeeTotal),
		day(o.CashDeltaDate),
		day(o.SettlementDate),
		o.Reason,
	})
	if err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSVJournal) RecordEquity(e sim.EquityPoint) error {
	err := j.equity.Write([]string{day(e.Date), f2(e.Equity)})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.of.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func day(t time.Time) string { return t.Format("2006-01-02") }

func f4(x float64) string { return strconv.FormatFloat(x, 'f', 4, 64) }
func f2(x float64) string { return strconv.FormatFloat(x, 'f', 2, 64) }
