package period

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tuumbleweed/xerr"
)

type Kind string

const (
	KindMonthly Kind = "monthly"
	KindWeekly  Kind = "weekly"
)

/*
Period is the time window a report covers: a whole month, or one week of it.

Label is shown inside documents; FileLabel is the form used in file names.
*/
type Period struct {
	Kind      Kind       `json:"kind"`
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	Week      int        `json:"week,omitempty"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Label     string     `json:"label"`
	FileLabel string     `json:"file_label"`
}

func Monthly(year int, month time.Month, loc *time.Location) Period {
	start, end := MonthRange(year, month, loc)
	label := MonthName(month) + " " + strconv.Itoa(year)

	return Period{
		Kind:      KindMonthly,
		Year:      year,
		Month:     month,
		Start:     start,
		End:       end,
		Label:     label,
		FileLabel: label,
	}
}

// Weekly returns week index (1-based) of the month.
func Weekly(year int, month time.Month, index int, loc *time.Location) (p Period, e *xerr.Error) {
	weeks := WeeksOfMonth(year, month, loc)
	if index < 1 || index > len(weeks) {
		err := fmt.Errorf("week %d is outside 1..%d", index, len(weeks))
		e = xerr.NewError(err, "resolve weekly period", fmt.Sprintf("%04d-%02d", year, int(month)))
		return p, e
	}

	week := weeks[index-1]
	monthLabel := MonthName(month) + " " + strconv.Itoa(year)

	p = Period{
		Kind:      KindWeekly,
		Year:      year,
		Month:     month,
		Week:      week.Index,
		Start:     week.Start,
		End:       week.End,
		Label:     week.Label + " - " + monthLabel,
		FileLabel: fmt.Sprintf("Semana %d %s", week.Index, monthLabel),
	}
	return p, nil
}

/*
Resolve builds the period for a year/month selection. week == 0 selects the
whole month.
*/
func Resolve(year int, month int, week int, loc *time.Location) (p Period, e *xerr.Error) {
	if month < 1 || month > 12 {
		err := fmt.Errorf("month %d is outside 1..12", month)
		e = xerr.NewError(err, "resolve period", strconv.Itoa(year))
		return p, e
	}
	if year < 1 {
		err := fmt.Errorf("year %d is not valid", year)
		e = xerr.NewError(err, "resolve period", strconv.Itoa(year))
		return p, e
	}

	if week == 0 {
		return Monthly(year, time.Month(month), loc), nil
	}
	return Weekly(year, time.Month(month), week, loc)
}

// Contains reports whether instant falls inside the period, both ends inclusive.
func (p Period) Contains(instant time.Time) bool {
	return !instant.Before(p.Start) && !instant.After(p.End)
}

// PreviousMonth returns the calendar month before p's month, as a monthly period.
func (p Period) PreviousMonth(loc *time.Location) Period {
	first := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Monthly(first.Year(), first.Month(), loc)
}
