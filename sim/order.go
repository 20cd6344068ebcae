package sim

import "time"

// Order is one executed trade in the append-only log. Field order and
// formatting are part of the downstream reconciliation contract; orders are
// never mutated after creation.
type Order struct {
	Date           time.Time
	Action         string // "BUY" or "SELL"
	Ticker         string
	Qty            int64
	Price          float64
	FeeTotal       float64
	CashDeltaDate  time.Time
	SettlementDate time.Time
	Reason         string
}

const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// WeeklyBuyReason tags calendar-driven allocation buys, which never consult
// the rule engine.
const WeeklyBuyReason = "WEEKLY_BUY"
