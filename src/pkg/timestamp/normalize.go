package timestamp

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// JavaScript dates are valid within ±8.64e15 ms of the epoch; legacy values outside that never were real dates.
const maxEpochMillis = 8.64e15

// zonedLayouts carry their own offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon, 02 Jan 2006 15:04:05 GMT",
}

// localLayouts are read in the caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// "Tue Mar 05 2024 10:00:00 GMT-0500 (hora estándar de Colombia)"
var zoneNameSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

/*
Normalize returns the instant a raw timestamp stands for.

ok is false when the value is Absent, of an unsupported shape, or does not
describe a valid instant. It never panics. Layouts without an explicit offset
are read in loc (time.Local when nil); the result is expressed in loc.
*/
func Normalize(raw Raw, loc *time.Location) (instant time.Time, ok bool) {
	if loc == nil {
		loc = time.Local
	}

	switch value := raw.(type) {
	case Live:
		if value.Value == nil {
			return instant, false
		}
		instant = value.Value.ToTime()
	case Serialized:
		instant = time.Unix(value.Seconds, value.Nanoseconds)
	case Native:
		instant = value.Time
	case ISOString:
		parsed, parsedOK := parseString(string(value), loc)
		if !parsedOK {
			return instant, false
		}
		instant = parsed
	case EpochMillis:
		millis := float64(value)
		if math.IsNaN(millis) || math.IsInf(millis, 0) {
			return instant, false
		}
		instant = time.UnixMilli(int64(math.Trunc(millis)))
	case Absent, nil:
		return instant, false
	default:
		return instant, false
	}

	if !inRange(instant) {
		return time.Time{}, false
	}
	return instant.In(loc), true
}

// IsAvailable reports whether raw normalizes to a valid instant.
func IsAvailable(raw Raw) bool {
	_, ok := Normalize(raw, time.UTC)
	return ok
}

func inRange(instant time.Time) bool {
	if instant.IsZero() {
		return false
	}
	millis := float64(instant.Unix())*1000 + float64(instant.Nanosecond()/int(time.Millisecond))
	return math.Abs(millis) <= maxEpochMillis
}

func parseString(text string, loc *time.Location) (parsed time.Time, ok bool) {
	trimmed := strings.TrimSpace(zoneNameSuffix.ReplaceAllString(text, ""))
	if trimmed == "" {
		return parsed, false
	}

	for _, layout := range zonedLayouts {
		value, err := time.Parse(layout, trimmed)
		if err == nil {
			return value, true
		}
	}

	// ISO date-only forms are UTC midnight, as in ECMAScript Date parsing.
	if value, err := time.Parse("2006-01-02", trimmed); err == nil {
		return value, true
	}

	for _, layout := range localLayouts {
		value, err := time.ParseInLocation(layout, trimmed, loc)
		if err == nil {
			return value, true
		}
	}

	return parsed, false
}
