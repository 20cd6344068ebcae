// Package pricing holds historical daily close prices and the trading
// calendar derived from them. All dates are canonical UTC midnights so they
// can be compared and used as map keys directly.
package pricing

import (
	"math"
	"sort"
	"time"
)

// Day returns the canonical UTC midnight for a calendar day.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a canonical day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t.Year(), t.Month(), t.Day()), nil
}

// Canonical truncates an arbitrary timestamp to its UTC midnight.
func Canonical(t time.Time) time.Time {
	u := t.UTC()
	return Day(u.Year(), u.Month(), u.Day())
}

// History is a read-only date × ticker close matrix built from per-ticker
// series. Build it with Add calls, then treat it as immutable.
type History struct {
	closes  map[string]map[time.Time]float64
	tickers []string
	dates   []time.Time
	dirty   bool
}

func NewHistory() *History {
	return &History{closes: make(map[string]map[time.Time]float64)}
}

// Add records one (ticker, date, close) observation. Later adds for the same
// cell overwrite earlier ones.
func (h *History) Add(ticker string, date time.Time, close float64) {
	m, ok := h.closes[ticker]
	if !ok {
		m = make(map[time.Time]float64)
		h.closes[ticker] = m
	}
	m[Canonical(date)] = close
	h.dirty = true
}

// Price returns the close for (date, ticker), reporting whether a quote
// exists. NaN cells count as missing.
func (h *History) Price(date time.Time, ticker string) (float64, bool) {
	m, ok := h.closes[ticker]
	if !ok {
		return 0, false
	}
	v, ok := m[Canonical(date)]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Tickers returns the sorted ticker set.
func (h *History) Tickers() []string {
	h.reindex()
	out := make([]string, len(h.tickers))
	copy(out, h.tickers)
	return out
}

// Dates returns the sorted union of observation dates across all tickers.
func (h *History) Dates() []time.Time {
	h.reindex()
	out := make([]time.Time, len(h.dates))
	copy(out, h.dates)
	return out
}

// Column returns the ticker's closes aligned to the given date index, with
// NaN for dates the ticker has no quote on.
func (h *History) Column(dates []time.Time, ticker string) []float64 {
	col := make([]float64, len(dates))
	for i, d := range dates {
		if v, ok := h.Price(d, ticker); ok {
			col[i] = v
		} else {
			col[i] = math.NaN()
		}
	}
	return col
}

// Empty reports whether no observations were loaded at all.
func (h *History) Empty() bool {
	return len(h.closes) == 0
}

func (h *History) reindex() {
	if !h.dirty {
		return
	}
	h.tickers = h.tickers[:0]
	seen := make(map[time.Time]struct{})
	for t, m := range h.closes {
		h.tickers = append(h.tickers, t)
		for d := range m {
			seen[d] = struct{}{}
		}
	}
	sort.Strings(h.tickers)
	h.dates = h.dates[:0]
	for d := range seen {
		h.dates = append(h.dates, d)
	}
	sort.Slice(h.dates, func(i, j int) bool { return h.dates[i].Before(h.dates[j]) })
	h.dirty = false
}
