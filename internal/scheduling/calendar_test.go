package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", raw)
	require.NoError(t, err)
	return d
}

func TestWorkdaysSkipsExcludedWeekdays(t *testing.T) {
	// 2024-01-01 is a Monday.
	days := Workdays(date(t, "2024-01-01"), date(t, "2024-01-07"), []string{"Sat", "SUNDAY"})

	require.Len(t, days, 5)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, time.Friday, days[4].Weekday())
	for i := 1; i < len(days); i++ {
		assert.True(t, days[i].After(days[i-1]))
	}
}

func TestWorkdaysAllExcluded(t *testing.T) {
	days := Workdays(date(t, "2024-01-06"), date(t, "2024-01-07"), []string{"sat", "sun"})
	assert.Empty(t, days)
}

func TestWorkdaysInclusiveAndReversedRange(t *testing.T) {
	single := Workdays(date(t, "2024-01-03"), date(t, "2024-01-03"), nil)
	require.Len(t, single, 1)

	assert.Empty(t, Workdays(date(t, "2024-01-05"), date(t, "2024-01-01"), nil))
}

func TestWorkdaysIgnoresShortTags(t *testing.T) {
	days := Workdays(date(t, "2024-01-01"), date(t, "2024-01-02"), []string{"M", ""})
	assert.Len(t, days, 2)
}

func TestParseClockAndWindow(t *testing.T) {
	c, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, NewClock(9, 5), c)
	assert.Equal(t, "09:05", c.String())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("noon")
	assert.Error(t, err)

	w, err := ParseWindow("10:00", "17:00")
	require.NoError(t, err)
	assert.Equal(t, 420, w.Minutes())

	_, err = ParseWindow("17:00", "10:00")
	assert.Error(t, err)
}
