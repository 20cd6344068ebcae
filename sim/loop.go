package sim

import (
	"math"
	"time"

	"github.com/WRMELO/PortfolioZero/config"
	"github.com/WRMELO/PortfolioZero/internal/id"
	"github.com/WRMELO/PortfolioZero/metrics"
	"github.com/WRMELO/PortfolioZero/pricing"
	"github.com/WRMELO/PortfolioZero/rules"
	"github.com/WRMELO/PortfolioZero/universe"
)

type decision struct {
	ticker string
	action rules.Action
	ruleID string
}

// Run replays the ruleset over the price history and returns the full
// audit output. It never panics on data-quality problems: missing data
// degrades to diagnostics and empty or partial output.
//
// The pass is strictly sequential: every day's decisions depend on the
// cash, positions, and quarantine state left by the previous day. All
// decision metrics are taken at the prior trading day (asof), so no
// information from the current day leaks into its own decisions. Trades
// also execute at the asof close; that asymmetry is deliberate and audited
// downstream.
func Run(
	cfg *config.Config,
	rs *rules.RuleSet,
	prices *pricing.History,
	benchmark *pricing.History,
	u *universe.Universe,
) Result {
	res := Result{RunID: id.New()}
	diags := &res.Diagnostics

	warmupStart, cfgStart, end, notes := cfg.Window()
	for _, n := range notes {
		diags.Errorf("%s", n)
	}

	if prices == nil || prices.Empty() {
		diags.Errorf("no_prices_loaded")
		prices = pricing.NewHistory()
	}

	var calDates []time.Time
	for _, d := range prices.Dates() {
		if d.Before(warmupStart) || d.After(end) {
			continue
		}
		calDates = append(calDates, d)
	}
	cal := pricing.NewCalendar(calDates)
	if cal.Len() == 0 {
		diags.Errorf("no_trading_dates")
		cal = pricing.SyntheticWeekdays(warmupStart, end)
	}

	start, ok := cal.FirstOnOrAfter(cfgStart)
	if !ok {
		diags.Errorf("start_date_not_found")
		start = cfgStart
		cal = pricing.NewCalendar(append(cal.Dates(), start))
	}

	simDates := cal.Between(start, end)
	if len(simDates) == 0 {
		diags.Errorf("no_simulation_dates")
	}

	// The metrics matrix is materialized up front; the sequential ledger
	// pass below only reads it.
	panel := metrics.ComputePanel(prices, benchmark, cfg.Data.BenchmarkTicker)

	initialCapital := cfg.Portfolio.InitialCapital
	fees := FeeModel{Percent: cfg.Execution.FeePercentPerOrder, Fixed: cfg.Execution.FeeFixedPerOrder}
	ledger := NewLedger(initialCapital, fees, cal, cfg.Execution.SellSettlementDays)

	quarantineSessions := cfg.Execution.QuarantineSessions
	if rs != nil && rs.QuarantineSessions > 0 {
		quarantineSessions = rs.QuarantineSessions
	}

	// Warmup dates carry the initial capital so early portfolio drawdown
	// windows have a flat baseline to measure against.
	equityHistory := make(map[time.Time]float64)
	for _, d := range cal.Dates() {
		if !d.Before(start) {
			break
		}
		equityHistory[d] = initialCapital
	}

	buyWeekday := cfg.Weekday()

	for _, current := range simDates {
		idx, _ := cal.Index(current)
		if idx == 0 {
			// No prior session to take metrics from.
			continue
		}
		asof := cal.At(idx - 1)

		ledger.AdvanceQuarantine()
		ledger.SettleCash(current)

		pm := metrics.ComputePortfolio(equityHistory, asof)

		var decisions []decision
		for _, ticker := range ledger.Held() {
			tm, _ := panel.At(asof, ticker)
			action, ruleID := rules.Evaluate(ticker, tm, pm, rs, u)
			decisions = append(decisions, decision{ticker: ticker, action: action, ruleID: ruleID})
			switch action {
			case rules.Hold:
				res.Summary.Holds++
			case rules.Reduce:
				res.Summary.Reduces++
			case rules.Zero:
				res.Summary.Zeros++
			}
		}

		for _, dec := range decisions {
			price, ok := prices.Price(asof, dec.ticker)
			if !ok {
				// No quote at the asof date: the action is skipped for the
				// day, not an error.
				continue
			}
			qty := ledger.Position(dec.ticker)
			switch dec.action {
			case rules.Zero:
				if qty > 0 && ledger.ApplySell(current, dec.ticker, qty, price, dec.ruleID) {
					ledger.SetQuarantine(dec.ticker, quarantineSessions)
					res.Summary.QuarantineEvents++
				}
			case rules.Reduce:
				if qty > 0 {
					fraction := rs.FractionFor(rules.ID(dec.ruleID))
					sellQty := int64(math.Floor(float64(qty) * fraction))
					if sellQty > 0 {
						ledger.ApplySell(current, dec.ticker, sellQty, price, dec.ruleID)
					}
				}
			}
		}

		doWeeklyBuy := cfg.WeeklyBuy.Enabled && current.Weekday() == buyWeekday
		if current.Equal(simDates[0]) {
			// The first simulated day always allocates, regardless of
			// weekday, so the portfolio starts invested.
			doWeeklyBuy = true
		}
		if doWeeklyBuy {
			runWeeklyBuy(cfg, ledger, prices, u, current, asof)
		}

		equityHistory[current] = ledger.Equity(asof, prices)
	}

	res.Orders = ledger.Orders()
	res.Equity = make([]EquityPoint, 0, len(simDates))
	equityValues := make([]float64, 0, len(simDates))
	for _, d := range simDates {
		v, ok := equityHistory[d]
		if !ok {
			v = initialCapital
		}
		res.Equity = append(res.Equity, EquityPoint{Date: d, Equity: v})
		equityValues = append(equityValues, v)
	}

	res.Summary.Orders = len(res.Orders)
	res.Summary.FinalValue = initialCapital
	if len(equityValues) > 0 {
		res.Summary.FinalValue = equityValues[len(equityValues)-1]
	}
	res.Summary.MaxDrawdown = MaxDrawdown(equityValues)

	return res
}

// runWeeklyBuy fills open slots with equal-cash allocations across the
// first eligible universe tickers, in universe order. Buys are purely
// calendar-driven; the rule engine is never consulted.
func runWeeklyBuy(
	cfg *config.Config,
	ledger *Ledger,
	prices *pricing.History,
	u *universe.Universe,
	current, asof time.Time,
) {
	if u == nil {
		return
	}
	missing := cfg.Portfolio.TargetPositions - len(ledger.Held())
	if missing <= 0 || ledger.Cash() <= 0 {
		return
	}

	var selected []string
	for _, ticker := range u.Tickers() {
		if len(selected) == missing {
			break
		}
		if ledger.Position(ticker) > 0 || ledger.Quarantined(ticker) {
			continue
		}
		selected = append(selected, ticker)
	}
	if len(selected) == 0 {
		return
	}

	feeFixed := cfg.Execution.FeeFixedPerOrder
	feePercent := cfg.Execution.FeePercentPerOrder
	alloc := ledger.Cash() / float64(len(selected))

	for _, ticker := range selected {
		price, ok := prices.Price(asof, ticker)
		if !ok || price <= 0 {
			continue
		}
		qty := int64(math.Floor(math.Max(alloc-feeFixed, 0) / price))
		if qty <= 0 {
			continue
		}
		notional := float64(qty) * price
		if notional+feeFixed+notional*feePercent > ledger.Cash() {
			qty = int64(math.Floor(math.Max(ledger.Cash()-feeFixed, 0) / price))
		}
		if qty <= 0 {
			continue
		}
		ledger.ApplyBuy(current, ticker, qty, price, WeeklyBuyReason)
	}
}
