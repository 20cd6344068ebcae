package metrics

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/WRMELO/PortfolioZero/pricing"
)

// Panel holds the fully materialized per-ticker metrics matrix. It is built
// once before the simulation loop starts and is read-only afterwards.
type Panel struct {
	index    map[time.Time]int
	byTicker map[string][]TickerMetrics
}

// At returns the metrics record for (date, ticker). The second return is
// false when the ticker or date is unknown to the panel; individual metrics
// inside a present record may still be NaN.
func (p *Panel) At(date time.Time, ticker string) (TickerMetrics, bool) {
	col, ok := p.byTicker[ticker]
	if !ok {
		return nanMetrics(), false
	}
	i, ok := p.index[pricing.Canonical(date)]
	if !ok {
		return nanMetrics(), false
	}
	return col[i], true
}

// ComputePanel computes the rolling indicator matrix for every ticker in the
// history, aligned to the history's date index. benchmark may be nil; beta
// and benchmark-vol columns are then NaN throughout.
//
// Each ticker's series is independent, so the work is spread over a bounded
// worker pool. The sequential ledger simulation only starts after the whole
// panel is materialized.
func ComputePanel(h *pricing.History, benchmark *pricing.History, benchmarkTicker string) *Panel {
	dates := h.Dates()
	tickers := h.Tickers()

	p := &Panel{
		index:    make(map[time.Time]int, len(dates)),
		byTicker: make(map[string][]TickerMetrics, len(tickers)),
	}
	for i, d := range dates {
		p.index[d] = i
	}

	var benchRets []float64
	benchVol60 := make([]float64, len(dates))
	for i := range benchVol60 {
		benchVol60[i] = math.NaN()
	}
	if benchmark != nil && benchmarkTicker != "" {
		benchCloses := benchmark.Column(dates, benchmarkTicker)
		benchRets = Returns(benchCloses)
		for i := range dates {
			benchVol60[i] = annualizedVolAt(benchRets, i, 60)
		}
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(tickers) {
		workers = len(tickers)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				col := computeTicker(h.Column(dates, ticker), benchRets, benchVol60)
				mu.Lock()
				p.byTicker[ticker] = col
				mu.Unlock()
			}
		}()
	}
	for _, t := range tickers {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	return p
}

func computeTicker(closes, benchRets, benchVol60 []float64) []TickerMetrics {
	rets := Returns(closes)
	out := make([]TickerMetrics, len(closes))
	for i := range closes {
		m := nanMetrics()
		m.Drawdown20 = drawdownAt(closes, i, 20)
		m.Drawdown60 = drawdownAt(closes, i, 60)
		m.VaR95 = varAt(rets, i, 252)
		m.CVaR95 = cvarAt(rets, i, 252)

		vol60 := annualizedVolAt(rets, i, 60)
		vol252 := annualizedVolAt(rets, i, 252)
		if !math.IsNaN(vol60) && !math.IsNaN(vol252) && vol252 != 0 {
			m.VolRatio60Over252 = vol60 / vol252
		}

		if sma := smaAt(closes, i, 100); !math.IsNaN(sma) && !math.IsNaN(closes[i]) {
			m.CloseBelowSMA100 = boolToFloat(closes[i] < sma)
		}
		if sma := smaAt(closes, i, 200); !math.IsNaN(sma) && !math.IsNaN(closes[i]) {
			m.CloseBelowSMA200 = boolToFloat(closes[i] < sma)
		}

		if benchRets != nil {
			m.BetaToBenchmark60 = betaAt(rets, benchRets, i, 60)
		}
		m.BenchmarkVol60 = benchVol60[i]
		out[i] = m
	}
	return out
}

// ComputePortfolio derives the portfolio-level record from the equity curve
// accumulated up to and including asof. All fields are NaN when asof is not
// in the history or the trailing window is too short.
func ComputePortfolio(equityHistory map[time.Time]float64, asof time.Time) PortfolioMetrics {
	asof = pricing.Canonical(asof)
	if _, ok := equityHistory[asof]; !ok {
		return NaNPortfolio()
	}

	dates := make([]time.Time, 0, len(equityHistory))
	for d := range equityHistory {
		if !d.After(asof) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = equityHistory[d]
	}

	out := NaNPortfolio()
	n := len(values)
	current := values[n-1]
	if n >= 20 {
		if max := winMax(values[n-20:]); max != 0 {
			out.Drawdown20 = 1 - current/max
		} else {
			out.Drawdown20 = 0
		}
	}
	if n >= 60 {
		if max := winMax(values[n-60:]); max != 0 {
			out.Drawdown60 = 1 - current/max
		} else {
			out.Drawdown60 = 0
		}
	}
	// VaR needs 252 daily returns, i.e. 253 equity points.
	if n >= 253 {
		rets := Returns(values)
		out.VaR95 = -winQuantile(rets[n-252:], 0.05)
	}
	return out
}
