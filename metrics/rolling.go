package metrics

import (
	"math"
	"sort"
)

// TradingDaysPerYear is the annualization base for volatility figures.
const TradingDaysPerYear = 252

// Returns computes simple daily returns from a close series. Index 0 has no
// prior close and is NaN; any NaN input propagates into the affected return.
func Returns(closes []float64) []float64 {
	out := make([]float64, len(closes))
	if len(out) > 0 {
		out[0] = math.NaN()
	}
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = cur/prev - 1
	}
	return out
}

// window returns values[i-w+1..i] when the full window exists and every
// value in it is finite, else nil. The full-window requirement is what makes
// early-history metrics null instead of partially computed.
func window(values []float64, i, w int) []float64 {
	if i+1 < w {
		return nil
	}
	win := values[i-w+1 : i+1]
	for _, v := range win {
		if math.IsNaN(v) {
			return nil
		}
	}
	return win
}

func winMax(win []float64) float64 {
	m := win[0]
	for _, v := range win[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func winMean(win []float64) float64 {
	sum := 0.0
	for _, v := range win {
		sum += v
	}
	return sum / float64(len(win))
}

// winStd is the sample standard deviation (ddof=1). Windows of length 1
// have no dispersion estimate and return NaN.
func winStd(win []float64) float64 {
	n := len(win)
	if n < 2 {
		return math.NaN()
	}
	mean := winMean(win)
	ss := 0.0
	for _, v := range win {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// winQuantile computes the empirical q-quantile with linear interpolation
// between order statistics, matching the behaviour audits were calibrated
// against.
func winQuantile(win []float64, q float64) float64 {
	n := len(win)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, win)
	sort.Float64s(sorted)
	h := q * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// winCov is the sample covariance (ddof=1) of two equal-length windows.
func winCov(x, y []float64) float64 {
	n := len(x)
	if n < 2 {
		return math.NaN()
	}
	mx, my := winMean(x), winMean(y)
	sum := 0.0
	for i := range x {
		sum += (x[i] - mx) * (y[i] - my)
	}
	return sum / float64(n-1)
}

// drawdownAt is 1 - close/rollingMax over the trailing w closes, or NaN
// without a full window.
func drawdownAt(closes []float64, i, w int) float64 {
	win := window(closes, i, w)
	if win == nil {
		return math.NaN()
	}
	max := winMax(win)
	if max == 0 {
		return math.NaN()
	}
	return 1 - closes[i]/max
}

// varAt is the 95% one-day VaR: the negated 5th percentile of the trailing
// w daily returns ending at index i.
func varAt(rets []float64, i, w int) float64 {
	win := window(rets, i, w)
	if win == nil {
		return math.NaN()
	}
	return -winQuantile(win, 0.05)
}

// cvarAt is the mean loss at or beyond the 5th percentile over the same
// trailing window, negated.
func cvarAt(rets []float64, i, w int) float64 {
	win := window(rets, i, w)
	if win == nil {
		return math.NaN()
	}
	q := winQuantile(win, 0.05)
	sum, n := 0.0, 0
	for _, v := range win {
		if v <= q {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return -sum / float64(n)
}

// annualizedVolAt is the sample stdev of the trailing w returns scaled by
// sqrt(252).
func annualizedVolAt(rets []float64, i, w int) float64 {
	win := window(rets, i, w)
	if win == nil {
		return math.NaN()
	}
	return winStd(win) * math.Sqrt(TradingDaysPerYear)
}

// smaAt is the simple moving average of the trailing w closes.
func smaAt(closes []float64, i, w int) float64 {
	win := window(closes, i, w)
	if win == nil {
		return math.NaN()
	}
	return winMean(win)
}

// betaAt regresses ticker returns on benchmark returns over the trailing w
// sessions: cov(ticker, bench) / var(bench). Both windows must be fully
// populated.
func betaAt(rets, bench []float64, i, w int) float64 {
	if len(bench) != len(rets) {
		return math.NaN()
	}
	x := window(rets, i, w)
	y := window(bench, i, w)
	if x == nil || y == nil {
		return math.NaN()
	}
	bvar := winCov(y, y)
	if bvar == 0 || math.IsNaN(bvar) {
		return math.NaN()
	}
	return winCov(x, y) / bvar
}
