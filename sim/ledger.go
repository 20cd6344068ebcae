package sim

import (
	"sort"
	"time"

	"github.com/WRMELO/PortfolioZero/pricing"
)

// FeeModel is the per-order fee: notional * Percent + Fixed.
type FeeModel struct {
	Percent float64
	Fixed   float64
}

func (f FeeModel) Fee(notional float64) float64 {
	return notional*f.Percent + f.Fixed
}

type settlement struct {
	settleDate time.Time
	amount     float64
}

// Ledger owns the portfolio state: cash, positions, pending sell
// settlements, the re-entry quarantine, and the append-only order log. It
// has a single owner (the simulation loop) and is mutated sequentially, so
// it carries no locking.
//
// Invariants it enforces: cash never goes negative (a buy that would
// overdraw is rejected whole, not partially filled), quantities never go
// negative, and sell proceeds only reach cash on or after their settlement
// date.
type Ledger struct {
	cash       float64
	positions  map[string]int64
	pending    []settlement
	quarantine map[string]int
	orders     []Order

	fees           FeeModel
	cal            *pricing.Calendar
	settlementDays int
}

// NewLedger creates a ledger with the initial capital and no positions.
// cal provides the trading-session arithmetic for settlement dates.
func NewLedger(initialCash float64, fees FeeModel, cal *pricing.Calendar, settlementDays int) *Ledger {
	return &Ledger{
		cash:           initialCash,
		positions:      make(map[string]int64),
		quarantine:     make(map[string]int),
		fees:           fees,
		cal:            cal,
		settlementDays: settlementDays,
	}
}

func (l *Ledger) Cash() float64 { return l.cash }

// Position returns the held quantity for ticker, zero when not held.
func (l *Ledger) Position(ticker string) int64 { return l.positions[ticker] }

// Held returns the currently held tickers in sorted order.
func (l *Ledger) Held() []string {
	out := make([]string, 0, len(l.positions))
	for t := range l.positions {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Orders returns the order log accumulated so far.
func (l *Ledger) Orders() []Order { return l.orders }

// PendingTotal is the sum of not-yet-settled sell proceeds.
func (l *Ledger) PendingTotal() float64 {
	total := 0.0
	for _, s := range l.pending {
		total += s.amount
	}
	return total
}

// ApplySell sells qty shares at price on date. Proceeds net of fees are
// scheduled for settlement settlementDays trading sessions later (clamped to
// the calendar end); cash is not touched now. Returns false without side
// effects when qty is not positive or exceeds the held quantity.
func (l *Ledger) ApplySell(date time.Time, ticker string, qty int64, price float64, reason string) bool {
	if qty <= 0 || qty > l.positions[ticker] {
		return false
	}
	notional := float64(qty) * price
	fee := l.fees.Fee(notional)
	settleDate, ok := l.cal.Shift(date, l.settlementDays)
	if !ok {
		settleDate = date
	}
	l.pending = append(l.pending, settlement{settleDate: settleDate, amount: notional - fee})
	l.positions[ticker] -= qty
	if l.positions[ticker] == 0 {
		delete(l.positions, ticker)
	}
	l.orders = append(l.orders, Order{
		Date:           date,
		Action:         ActionSell,
		Ticker:         ticker,
		Qty:            qty,
		Price:          price,
		FeeTotal:       fee,
		CashDeltaDate:  settleDate,
		SettlementDate: settleDate,
		Reason:         reason,
	})
	return true
}

// ApplyBuy buys qty shares at price on date, deducting cash immediately.
// A buy whose total cost exceeds available cash is silently rejected: no
// order is logged and no position changes.
func (l *Ledger) ApplyBuy(date time.Time, ticker string, qty int64, price float64, reason string) bool {
	if qty <= 0 {
		return false
	}
	notional := float64(qty) * price
	fee := l.fees.Fee(notional)
	totalCost := notional + fee
	if totalCost > l.cash {
		return false
	}
	l.cash -= totalCost
	l.positions[ticker] += qty
	l.orders = append(l.orders, Order{
		Date:           date,
		Action:         ActionBuy,
		Ticker:         ticker,
		Qty:            qty,
		Price:          price,
		FeeTotal:       fee,
		CashDeltaDate:  date,
		SettlementDate: date,
		Reason:         reason,
	})
	return true
}

// SettleCash moves every pending amount whose settlement date has arrived
// into cash.
func (l *Ledger) SettleCash(current time.Time) {
	current = pricing.Canonical(current)
	remaining := l.pending[:0]
	for _, s := range l.pending {
		if !s.settleDate.After(current) {
			l.cash += s.amount
		} else {
			remaining = append(remaining, s)
		}
	}
	l.pending = remaining
}

// SetQuarantine starts (or restarts) a ticker's re-entry quarantine.
func (l *Ledger) SetQuarantine(ticker string, sessions int) {
	if sessions > 0 {
		l.quarantine[ticker] = sessions
	}
}

// Quarantined reports whether a ticker is still in its cool-down.
func (l *Ledger) Quarantined(ticker string) bool {
	_, ok := l.quarantine[ticker]
	return ok
}

// AdvanceQuarantine burns one session off every quarantined ticker, freeing
// those that reach zero.
func (l *Ledger) AdvanceQuarantine() {
	for t := range l.quarantine {
		l.quarantine[t]--
		if l.quarantine[t] <= 0 {
			delete(l.quarantine, t)
		}
	}
}

// Equity marks the portfolio at the asof date: cash plus held positions at
// their asof closes plus unsettled proceeds. Positions without an asof
// quote contribute nothing to the mark.
func (l *Ledger) Equity(asof time.Time, h *pricing.History) float64 {
	value := 0.0
	for t, qty := range l.positions {
		if price, ok := h.Price(asof, t); ok {
			value += float64(qty) * price
		}
	}
	return l.cash + value + l.PendingTotal()
}
