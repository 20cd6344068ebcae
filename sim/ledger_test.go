package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WRMELO/PortfolioZero/pricing"
)

func weekdayCalendar(t *testing.T, n int) *pricing.Calendar {
	t.Helper()
	dates := make([]time.Time, 0, n)
	d := pricing.Day(2023, 1, 2)
	for len(dates) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return pricing.NewCalendar(dates)
}

func TestFeeModel(t *testing.T) {
	t.Parallel()

	f := FeeModel{Percent: 0.001, Fixed: 2.5}
	assert.InDelta(t, 12.5, f.Fee(10000), 1e-12)
	assert.InDelta(t, 2.5, FeeModel{Fixed: 2.5}.Fee(0), 1e-12)
}

func TestBuyRejectedWhenCostExceedsCash(t *testing.T) {
	t.Parallel()

	cal := weekdayCalendar(t, 10)
	l := NewLedger(1000, FeeModel{Fixed: 5}, cal, 2)

	// 10 * 100 + 5 = 1005 > 1000: the whole order is rejected.
	ok := l.ApplyBuy(cal.At(0), "AAA", 10, 100, WeeklyBuyReason)
	assert.False(t, ok)
	assert.Equal(t, 1000.0, l.Cash())
	assert.Equal(t, int64(0), l.Position("AAA"))
	assert.Empty(t, l.Orders())

	// 9 * 100 + 5 = 905 fits.
	ok = l.ApplyBuy(cal.At(0), "AAA", 9, 100, WeeklyBuyReason)
	require.True(t, ok)
	assert.InDelta(t, 95, l.Cash(), 1e-9)
	assert.Equal(t, int64(9), l.Position("AAA"))
	require.Len(t, l.Orders(), 1)
	assert.Equal(t, cal.At(0), l.Orders()[0].CashDeltaDate)
}

func TestSellSettlesTwoSessionsLater(t *testing.T) {
	t.Parallel()

	cal := weekdayCalendar(t, 10)
	l := NewLedger(100000, FeeModel{Percent: 0.001}, cal, 2)
	require.True(t, l.ApplyBuy(cal.At(0), "AAA", 100, 100, WeeklyBuyReason))
	cashAfterBuy := l.Cash()

	require.True(t, l.ApplySell(cal.At(3), "AAA", 100, 110, "HARD_STOP"))
	assert.Equal(t, int64(0), l.Position("AAA"))
	assert.Empty(t, l.Held())

	// Proceeds are pending, not cash, until two sessions pass.
	proceeds := 100*110.0 - 0.001*100*110.0
	assert.Equal(t, cashAfterBuy, l.Cash())
	assert.InDelta(t, proceeds, l.PendingTotal(), 1e-9)

	order := l.Orders()[1]
	assert.Equal(t, ActionSell, order.Action)
	assert.Equal(t, cal.At(5), order.SettlementDate)
	assert.Equal(t, cal.At(5), order.CashDeltaDate)

	l.SettleCash(cal.At(4))
	assert.Equal(t, cashAfterBuy, l.Cash())

	l.SettleCash(cal.At(5))
	assert.InDelta(t, cashAfterBuy+proceeds, l.Cash(), 1e-9)
	assert.Zero(t, l.PendingTotal())
}

func TestSellSettlementClampsToCalendarEnd(t *testing.T) {
	t.Parallel()

	cal := weekdayCalendar(t, 5)
	l := NewLedger(100000, FeeModel{}, cal, 2)
	require.True(t, l.ApplyBuy(cal.At(0), "AAA", 10, 100, WeeklyBuyReason))

	// Selling on the last session: T+2 runs off the calendar, so it clamps.
	require.True(t, l.ApplySell(cal.At(4), "AAA", 10, 100, "HARD_STOP"))
	assert.Equal(t, cal.At(4), l.Orders()[1].SettlementDate)
}

func TestSellRejectsBadQuantities(t *testing.T) {
	t.Parallel()

	cal := weekdayCalendar(t, 10)
	l := NewLedger(100000, FeeModel{}, cal, 2)
	require.True(t, l.ApplyBuy(cal.At(0), "AAA", 10, 100, WeeklyBuyReason))

	assert.False(t, l.ApplySell(cal.At(1), "AAA", 0, 100, "HARD_STOP"))
	assert.False(t, l.ApplySell(cal.At(1), "AAA", 11, 100, "HARD_STOP"))
	assert.False(t, l.ApplySell(cal.At(1), "ZZZ", 1, 100, "HARD_STOP"))
	assert.Equal(t, int64(10), l.Position("AAA"))
	assert.Len(t, l.Orders(), 1)
}

func TestQuarantineLifecycle(t *testing.T) {
	t.Parallel()

	cal := weekdayCalendar(t, 10)
	l := NewLedger(1000, FeeModel{}, cal, 2)

	l.SetQuarantine("AAA", 2)
	assert.True(t, l.Quarantined("AAA"))

	l.AdvanceQuarantine()
	assert.True(t, l.Quarantined("AAA"))
	l.AdvanceQuarantine()
	assert.False(t, l.Quarantined("AAA"))

	// Zero or negative sessions never quarantine.
	l.SetQuarantine("BBB", 0)
	assert.False(t, l.Quarantined("BBB"))
}

func TestEquityMark(t *testing.T) {
	t.Parallel()

	cal := weekdayCalendar(t, 10)
	l := NewLedger(10000, FeeModel{}, cal, 2)
	require.True(t, l.ApplyBuy(cal.At(0), "AAA", 10, 100, WeeklyBuyReason))
	require.True(t, l.ApplyBuy(cal.At(0), "BBB", 10, 100, WeeklyBuyReason))

	h := pricing.NewHistory()
	h.Add("AAA", cal.At(1), 120)
	// BBB has no quote on the mark date and contributes nothing.

	assert.InDelta(t, 8000+10*120, l.Equity(cal.At(1), h), 1e-9)
}

func TestEquityIncludesPendingProceeds(t *testing.T) {
	t.Parallel()

	cal := weekdayCalendar(t, 10)
	l := NewLedger(10000, FeeModel{}, cal, 2)
	require.True(t, l.ApplyBuy(cal.At(0), "AAA", 10, 100, WeeklyBuyReason))
	require.True(t, l.ApplySell(cal.At(1), "AAA", 10, 110, "HARD_STOP"))

	h := pricing.NewHistory()
	// Cash 9000 plus 1100 pending: selling never dents the mark.
	assert.InDelta(t, 10100, l.Equity(cal.At(2), h), 1e-9)
}

func TestHeldSorted(t *testing.T) {
	t.Parallel()

	cal := weekdayCalendar(t, 10)
	l := NewLedger(100000, FeeModel{}, cal, 2)
	require.True(t, l.ApplyBuy(cal.At(0), "CCC", 1, 10, WeeklyBuyReason))
	require.True(t, l.ApplyBuy(cal.At(0), "AAA", 1, 10, WeeklyBuyReason))
	require.True(t, l.ApplyBuy(cal.At(0), "BBB", 1, 10, WeeklyBuyReason))
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, l.Held())
}
