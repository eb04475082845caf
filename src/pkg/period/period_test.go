package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthRangeLastDay(t *testing.T) {
	cases := []struct {
		year    int
		month   time.Month
		lastDay int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
		{2024, time.January, 31},
	}

	for _, tc := range cases {
		t.Run(MonthName(tc.month), func(t *testing.T) {
			start, end := MonthRange(tc.year, tc.month, time.UTC)

			assert.Equal(t, time.Date(tc.year, tc.month, 1, 0, 0, 0, 0, time.UTC), start)
			assert.Equal(t, time.Date(tc.year, tc.month, tc.lastDay, 23, 59, 59, 999999999, time.UTC), end)
			assert.Equal(t, tc.lastDay, LastDay(tc.year, tc.month))
		})
	}
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Enero", MonthName(time.January))
	assert.Equal(t, "Septiembre", MonthName(time.September))
	assert.Equal(t, "Diciembre", MonthName(time.December))
	assert.Equal(t, "Enero", MonthName(0))
	assert.Equal(t, "Diciembre", MonthName(13))
}

func TestWeeksOfMonthAreContiguous(t *testing.T) {
	for _, month := range []time.Month{time.February, time.March, time.April} {
		weeks := WeeksOfMonth(2024, month, time.UTC)
		start, end := MonthRange(2024, month, time.UTC)

		require.NotEmpty(t, weeks)
		assert.Equal(t, start, weeks[0].Start)
		assert.Equal(t, end, weeks[len(weeks)-1].End)

		for i, week := range weeks {
			assert.Equal(t, i+1, week.Index)
			assert.True(t, week.End.Sub(week.Start) < 7*24*time.Hour)
			if i > 0 {
				assert.Equal(t, weeks[i-1].End.Add(time.Nanosecond), week.Start)
			}
		}
	}
}

func TestWeeksOfMonthLabels(t *testing.T) {
	weeks := WeeksOfMonth(2024, time.February, time.UTC)

	require.Len(t, weeks, 5)
	assert.Equal(t, "Semana 1 (1/2 - 7/2)", weeks[0].Label)
	assert.Equal(t, "Semana 5 (29/2 - 29/2)", weeks[4].Label)
}

func TestResolve(t *testing.T) {
	monthly, e := Resolve(2024, 1, 0, time.UTC)
	require.Nil(t, e)
	assert.Equal(t, KindMonthly, monthly.Kind)
	assert.Equal(t, "Enero 2024", monthly.Label)
	assert.Equal(t, "Enero 2024", monthly.FileLabel)

	weekly, e := Resolve(2024, 1, 2, time.UTC)
	require.Nil(t, e)
	assert.Equal(t, KindWeekly, weekly.Kind)
	assert.Equal(t, "Semana 2 (8/1 - 14/1) - Enero 2024", weekly.Label)
	assert.Equal(t, "Semana 2 Enero 2024", weekly.FileLabel)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), weekly.Start)

	_, e = Resolve(2024, 13, 0, time.UTC)
	assert.NotNil(t, e)
	_, e = Resolve(2024, 2, 6, time.UTC)
	assert.NotNil(t, e)
}

func TestContainsIsInclusive(t *testing.T) {
	p := Monthly(2024, time.March, time.UTC)

	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.Start.Add(-time.Second)))
	assert.False(t, p.Contains(p.End.Add(time.Second)))
}

func TestPreviousMonthCrossesYear(t *testing.T) {
	previous := Monthly(2024, time.January, time.UTC).PreviousMonth(time.UTC)

	assert.Equal(t, 2023, previous.Year)
	assert.Equal(t, time.December, previous.Month)
}
