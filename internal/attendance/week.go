// Package attendance turns weekly attendance sheets into hour totals.
package attendance

import (
	"time"

	"github.com/jonathan/intelliconsult/internal/types"
)

// weekdayIndex maps weekday names to their day-of-week index (Sunday=0).
var weekdayIndex = map[string]int{
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
	"Saturday":  6,
	"Sunday":    0,
}

// dateLayouts are tried in order when parsing a date marker.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ResolveDate returns the calendar date a marker stands for. Weekday
// markers are placed in week weekNo of year; date markers are parsed as
// written. ok is false for unknown weekday names and unparseable dates.
func ResolveDate(m types.DayMarker, weekNo, year int) (time.Time, bool) {
	switch m.Kind {
	case types.DayMarkerDate:
		return parseDate(m.Value)
	case types.DayMarkerWeekday:
		target, ok := weekdayIndex[m.Value]
		if !ok {
			return time.Time{}, false
		}
		return weekStart(weekNo, year).AddDate(0, 0, target-1), true
	default:
		return time.Time{}, false
	}
}

// weekStart returns the Monday of week weekNo of year. Sunday is day 0,
// so a Sunday marker lands on the day before this Monday.
func weekStart(weekNo, year int) time.Time {
	d := time.Date(year, time.January, 1+(weekNo-1)*7, 0, 0, 0, 0, time.UTC)
	dow := int(d.Weekday())
	if dow <= 4 {
		return d.AddDate(0, 0, 1-dow)
	}
	return d.AddDate(0, 0, 8-dow)
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
