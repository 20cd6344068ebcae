package pricing

import (
	"sort"
	"time"
)

// Calendar is an ordered set of trading dates. It drives the simulation
// loop, the asof lookback, and settlement-date arithmetic.
type Calendar struct {
	dates []time.Time
	index map[time.Time]int
}

// NewCalendar builds a calendar from the given dates, deduplicated and
// sorted ascending.
func NewCalendar(dates []time.Time) *Calendar {
	seen := make(map[time.Time]struct{}, len(dates))
	uniq := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = Canonical(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].Before(uniq[j]) })
	c := &Calendar{dates: uniq, index: make(map[time.Time]int, len(uniq))}
	for i, d := range uniq {
		c.index[d] = i
	}
	return c
}

// SyntheticWeekdays builds a Monday-to-Friday calendar over [start, end].
// Used as a fallback when no price data yields any trading dates.
func SyntheticWeekdays(start, end time.Time) *Calendar {
	var dates []time.Time
	for d := Canonical(start); !d.After(Canonical(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, d)
		}
	}
	return NewCalendar(dates)
}

func (c *Calendar) Len() int { return len(c.dates) }

// At returns the i-th trading date.
func (c *Calendar) At(i int) time.Time { return c.dates[i] }

// Index returns the position of d in the calendar.
func (c *Calendar) Index(d time.Time) (int, bool) {
	i, ok := c.index[Canonical(d)]
	return i, ok
}

// Contains reports whether d is a trading date.
func (c *Calendar) Contains(d time.Time) bool {
	_, ok := c.index[Canonical(d)]
	return ok
}

// Shift returns the trading date offset sessions after d, clamped to the
// last calendar date. d must be a calendar member.
func (c *Calendar) Shift(d time.Time, offset int) (time.Time, bool) {
	i, ok := c.Index(d)
	if !ok {
		return time.Time{}, false
	}
	j := i + offset
	if j >= len(c.dates) {
		j = len(c.dates) - 1
	}
	if j < 0 {
		j = 0
	}
	return c.dates[j], true
}

// FirstOnOrAfter returns the earliest trading date >= d.
func (c *Calendar) FirstOnOrAfter(d time.Time) (time.Time, bool) {
	d = Canonical(d)
	i := sort.Search(len(c.dates), func(i int) bool { return !c.dates[i].Before(d) })
	if i == len(c.dates) {
		return time.Time{}, false
	}
	return c.dates[i], true
}

// Between returns the trading dates within [start, end], inclusive.
func (c *Calendar) Between(start, end time.Time) []time.Time {
	start, end = Canonical(start), Canonical(end)
	var out []time.Time
	for _, d := range c.dates {
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Dates returns a copy of all calendar dates in order.
func (c *Calendar) Dates() []time.Time {
	out := make([]time.Time, len(c.dates))
	copy(out, c.dates)
	return out
}
