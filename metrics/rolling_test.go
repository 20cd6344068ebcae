package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	t.Parallel()

	rets := Returns([]float64{100, 110, 99})
	require.Len(t, rets, 3)
	assert.True(t, math.IsNaN(rets[0]))
	assert.InDelta(t, 0.10, rets[1], 1e-12)
	assert.InDelta(t, -0.10, rets[2], 1e-12)
}

func TestReturnsPropagateNaN(t *testing.T) {
	t.Parallel()

	rets := Returns([]float64{100, math.NaN(), 99})
	assert.True(t, math.IsNaN(rets[1]))
	assert.True(t, math.IsNaN(rets[2]))
}

func TestWinQuantileLinearInterpolation(t *testing.T) {
	t.Parallel()

	// h = 0.05 * 3 = 0.15 between the first two order statistics.
	got := winQuantile([]float64{4, 2, 1, 3}, 0.05)
	assert.InDelta(t, 1.15, got, 1e-12)

	assert.InDelta(t, 2.5, winQuantile([]float64{1, 2, 3, 4}, 0.5), 1e-12)
	assert.InDelta(t, 4.0, winQuantile([]float64{1, 2, 3, 4}, 1.0), 1e-12)
}

func TestWinStdSample(t *testing.T) {
	t.Parallel()

	// Sample variance of 1..4 is 5/3.
	assert.InDelta(t, math.Sqrt(5.0/3.0), winStd([]float64{1, 2, 3, 4}), 1e-12)
	assert.True(t, math.IsNaN(winStd([]float64{1})))
}

func TestDrawdownAt(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	closes[19] = 80

	// Full 20-day window: trailing max 100, close 80.
	assert.InDelta(t, 0.20, drawdownAt(closes, 19, 20), 1e-12)
	// One day short of the window.
	assert.True(t, math.IsNaN(drawdownAt(closes, 18, 20)))
}

func TestVarAndCVaRAt(t *testing.T) {
	t.Parallel()

	rets := []float64{-0.10, 0.0, 0.05, 0.02}

	// Quantile05 = -0.10 + 0.15*(0 - -0.10) = -0.085.
	assert.InDelta(t, 0.085, varAt(rets, 3, 4), 1e-12)
	// Tail at or below the quantile is just -0.10.
	assert.InDelta(t, 0.10, cvarAt(rets, 3, 4), 1e-12)

	assert.True(t, math.IsNaN(varAt(rets, 3, 5)))
}

func TestAnnualizedVolAt(t *testing.T) {
	t.Parallel()

	rets := []float64{0.01, -0.01, 0.01, -0.01}
	want := winStd(rets) * math.Sqrt(252)
	assert.InDelta(t, want, annualizedVolAt(rets, 3, 4), 1e-12)
}

func TestBetaAt(t *testing.T) {
	t.Parallel()

	bench := []float64{0.01, -0.02, 0.03, -0.01, 0.02}
	rets := make([]float64, len(bench))
	for i, v := range bench {
		rets[i] = 2 * v
	}

	// Ticker returns are exactly twice the benchmark's.
	assert.InDelta(t, 2.0, betaAt(rets, bench, 4, 5), 1e-12)
}

func TestWindowRejectsNaN(t *testing.T) {
	t.Parallel()

	values := []float64{1, math.NaN(), 3, 4}
	assert.Nil(t, window(values, 3, 4))
	assert.NotNil(t, window(values, 3, 2))
}
