package sim

import "time"

// EquityPoint is one day's portfolio valuation.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}

// Summary condenses a run for ruleset comparison sweeps.
type Summary struct {
	FinalValue       float64
	MaxDrawdown      float64
	Orders           int
	Holds            int
	Reduces          int
	Zeros            int
	QuarantineEvents int
}

// Result is everything a run produces. Orders and Equity are append-only
// outputs handed to report writers; nothing here is mutated after Run
// returns.
type Result struct {
	RunID       string
	Orders      []Order
	Equity      []EquityPoint
	Summary     Summary
	Diagnostics Diagnostics
}

// MaxDrawdown is the largest fractional peak-to-trough decline over the
// equity values, in order.
func MaxDrawdown(equity []float64) float64 {
	peak := 0.0
	maxDD := 0.0
	havePeak := false
	for _, v := range equity {
		if !havePeak || v > peak {
			peak = v
			havePeak = true
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
