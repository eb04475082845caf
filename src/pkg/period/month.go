// Package period computes the month and week-of-month ranges reports cover.
package period

import (
	"time"

	"sima-reports/src/pkg/util"
)

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name of month; out-of-range values are clamped.
func MonthName(month time.Month) string {
	index := util.Clamp(int(month), 1, 12) - 1
	return monthNames[index]
}

/*
MonthRange returns the first instant of the month and the last nanosecond of
23:59:59 on its last calendar day, both in loc. Consecutive ranges leave no gap
for sub-second completion instants.

The last day comes from "day 0 of the next month", which time.Date normalizes
to the last day of this one; this covers every month length and leap years.
*/
func MonthRange(year int, month time.Month, loc *time.Location) (start time.Time, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end = time.Date(year, month+1, 0, 23, 59, 59, lastNanosecond, loc)
	return start, end
}

const lastNanosecond = int(time.Second - time.Nanosecond)

// LastDay returns the number of days in the month.
func LastDay(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
