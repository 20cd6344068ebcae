// Package metrics batch-computes the rolling risk indicators the ruleset
// conditions are written against: per-ticker drawdowns, VaR/CVaR, volatility
// ratio, SMA flags and benchmark beta, plus portfolio-level drawdown and VaR
// from the accumulated equity curve.
package metrics

import "math"

// Metric identifies one risk indicator. The set is closed: rulesets are
// validated against it at load time so evaluation never resolves metric
// names dynamically.
type Metric string

const (
	Drawdown20        Metric = "drawdown_20d"
	Drawdown60        Metric = "drawdown_60d"
	VaR95             Metric = "var_95_1d_252d"
	CVaR95            Metric = "cvar_95_1d_252d"
	VolRatio60Over252 Metric = "vol_60d_over_252d"
	CloseBelowSMA100  Metric = "close_below_sma_100"
	CloseBelowSMA200  Metric = "close_below_sma_200"
	BetaToBenchmark60 Metric = "beta_to_benchmark_60d"
	BenchmarkVol60    Metric = "benchmark_vol_60d"

	PortfolioDrawdown20 Metric = "portfolio_drawdown_20d"
	PortfolioDrawdown60 Metric = "portfolio_drawdown_60d"
	PortfolioVaR95      Metric = "portfolio_var_95_1d_252d"
)

// aliases maps legacy metric spellings from older ruleset documents onto
// the canonical identifiers.
var aliases = map[string]Metric{
	"vol_60d_over_vol_252d": VolRatio60Over252,
	"beta_to_ibov_60d":      BetaToBenchmark60,
	"ibov_vol_60d":          BenchmarkVol60,
}

var tickerMetrics = map[Metric]bool{
	Drawdown20:        true,
	Drawdown60:        true,
	VaR95:             true,
	CVaR95:            true,
	VolRatio60Over252: true,
	CloseBelowSMA100:  true,
	CloseBelowSMA200:  true,
	BetaToBenchmark60: true,
	BenchmarkVol60:    true,
}

var portfolioMetrics = map[Metric]bool{
	PortfolioDrawdown20: true,
	PortfolioDrawdown60: true,
	PortfolioVaR95:      true,
}

// Parse resolves a metric name (canonical or legacy alias) to its Metric.
func Parse(name string) (Metric, bool) {
	m := Metric(name)
	if tickerMetrics[m] || portfolioMetrics[m] {
		return m, true
	}
	if m, ok := aliases[name]; ok {
		return m, true
	}
	return "", false
}

// IsTickerScoped reports whether the metric belongs to the per-ticker panel.
func IsTickerScoped(m Metric) bool { return tickerMetrics[m] }

// IsPortfolioScoped reports whether the metric belongs to the portfolio set.
func IsPortfolioScoped(m Metric) bool { return portfolioMetrics[m] }

// TickerMetrics is one ticker's indicator record on one date. NaN marks a
// metric whose trailing window is not yet fully populated (or whose inputs
// are missing); rule conditions treat NaN as false.
type TickerMetrics struct {
	Drawdown20        float64
	Drawdown60        float64
	VaR95             float64
	CVaR95            float64
	VolRatio60Over252 float64
	CloseBelowSMA100  float64 // 1 or 0, NaN when the SMA window is short
	CloseBelowSMA200  float64
	BetaToBenchmark60 float64
	BenchmarkVol60    float64
}

// Value returns the metric's numeric value and whether it is present.
// Boolean indicators are exposed as 0/1 so comparison operators apply
// uniformly.
func (t TickerMetrics) Value(m Metric) (float64, bool) {
	var v float64
	switch m {
	case Drawdown20:
		v = t.Drawdown20
	case Drawdown60:
		v = t.Drawdown60
	case VaR95:
		v = t.VaR95
	case CVaR95:
		v = t.CVaR95
	case VolRatio60Over252:
		v = t.VolRatio60Over252
	case CloseBelowSMA100:
		v = t.CloseBelowSMA100
	case CloseBelowSMA200:
		v = t.CloseBelowSMA200
	case BetaToBenchmark60:
		v = t.BetaToBenchmark60
	case BenchmarkVol60:
		v = t.BenchmarkVol60
	default:
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// PortfolioMetrics is the portfolio-level indicator record at one asof date.
type PortfolioMetrics struct {
	Drawdown20 float64
	Drawdown60 float64
	VaR95      float64
}

// Value returns the portfolio metric's value and whether it is present.
func (p PortfolioMetrics) Value(m Metric) (float64, bool) {
	var v float64
	switch m {
	case PortfolioDrawdown20:
		v = p.Drawdown20
	case PortfolioDrawdown60:
		v = p.Drawdown60
	case PortfolioVaR95:
		v = p.VaR95
	default:
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func nanMetrics() TickerMetrics {
	nan := math.NaN()
	return TickerMetrics{
		Drawdown20:        nan,
		Drawdown60:        nan,
		VaR95:             nan,
		CVaR95:            nan,
		VolRatio60Over252: nan,
		CloseBelowSMA100:  nan,
		CloseBelowSMA200:  nan,
		BetaToBenchmark60: nan,
		BenchmarkVol60:    nan,
	}
}

// NaNPortfolio is the all-null portfolio record used when the equity history
// is too short or the asof date is absent.
func NaNPortfolio() PortfolioMetrics {
	nan := math.NaN()
	return PortfolioMetrics{Drawdown20: nan, Drawdown60: nan, VaR95: nan}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
