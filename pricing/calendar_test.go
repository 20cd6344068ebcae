package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarShift(t *testing.T) {
	t.Parallel()

	cal := NewCalendar([]time.Time{
		Day(2023, 1, 2),
		Day(2023, 1, 3),
		Day(2023, 1, 4),
		Day(2023, 1, 5),
	})

	d, ok := cal.Shift(Day(2023, 1, 2), 2)
	require.True(t, ok)
	assert.Equal(t, Day(2023, 1, 4), d)

	// Shifts past the end clamp to the last session.
	d, ok = cal.Shift(Day(2023, 1, 4), 5)
	require.True(t, ok)
	assert.Equal(t, Day(2023, 1, 5), d)

	_, ok = cal.Shift(Day(2023, 1, 7), 1)
	assert.False(t, ok)
}

func TestCalendarDedupAndOrder(t *testing.T) {
	t.Parallel()

	cal := NewCalendar([]time.Time{
		Day(2023, 1, 4),
		Day(2023, 1, 2),
		Day(2023, 1, 4),
		Day(2023, 1, 3),
	})

	assert.Equal(t, 3, cal.Len())
	assert.Equal(t, Day(2023, 1, 2), cal.At(0))
	assert.Equal(t, Day(2023, 1, 4), cal.At(2))
}

func TestCalendarFirstOnOrAfter(t *testing.T) {
	t.Parallel()

	cal := NewCalendar([]time.Time{Day(2023, 1, 3), Day(2023, 1, 5)})

	d, ok := cal.FirstOnOrAfter(Day(2023, 1, 1))
	require.True(t, ok)
	assert.Equal(t, Day(2023, 1, 3), d)

	d, ok = cal.FirstOnOrAfter(Day(2023, 1, 4))
	require.True(t, ok)
	assert.Equal(t, Day(2023, 1, 5), d)

	_, ok = cal.FirstOnOrAfter(Day(2023, 1, 6))
	assert.False(t, ok)
}

func TestSyntheticWeekdays(t *testing.T) {
	t.Parallel()

	// 2023-01-01 is a Sunday; the first business day is Monday the 2nd.
	cal := SyntheticWeekdays(Day(2023, 1, 1), Day(2023, 1, 8))
	assert.Equal(t, 5, cal.Len())
	assert.Equal(t, Day(2023, 1, 2), cal.At(0))
	assert.Equal(t, Day(2023, 1, 6), cal.At(4))
	for _, d := range cal.Dates() {
		wd := d.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestCalendarBetween(t *testing.T) {
	t.Parallel()

	cal := SyntheticWeekdays(Day(2023, 1, 2), Day(2023, 1, 13))
	got := cal.Between(Day(2023, 1, 4), Day(2023, 1, 10))
	require.Len(t, got, 5)
	assert.Equal(t, Day(2023, 1, 4), got[0])
	assert.Equal(t, Day(2023, 1, 10), got[4])
}
