package period

import (
	"fmt"
	"time"
)

const daysPerWeek = 7

// Week is a window of at most seven days inside one month.
type Week struct {
	Index int       `json:"index"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

/*
WeeksOfMonth splits the month into consecutive 7-day windows starting on day 1.
The last window is clipped to the last day of the month, so it may be shorter.

Weeks are not aligned to weekdays: week 1 is always days 1-7.
*/
func WeeksOfMonth(year int, month time.Month, loc *time.Location) []Week {
	if loc == nil {
		loc = time.Local
	}

	lastDay := LastDay(year, month)
	weeks := make([]Week, 0, 5)

	for firstDay, index := 1, 1; firstDay <= lastDay; firstDay, index = firstDay+daysPerWeek, index+1 {
		endDay := min(firstDay+daysPerWeek-1, lastDay)

		weeks = append(weeks, Week{
			Index: index,
			Start: time.Date(year, month, firstDay, 0, 0, 0, 0, loc),
			End:   time.Date(year, month, endDay, 23, 59, 59, lastNanosecond, loc),
			Label: fmt.Sprintf("Semana %d (%d/%d - %d/%d)", index, firstDay, int(month), endDay, int(month)),
		})
	}

	return weeks
}
