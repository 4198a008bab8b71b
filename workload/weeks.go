package workload

import (
	"time"

	"github.com/warp/staffing-engine/generic"
)

// GenerateWeekStartDates returns n consecutive weeks beginning with the week
// that contains anchor. Weeks start on weekStart.
func GenerateWeekStartDates(anchor generic.TimePoint, n int, weekStart time.Weekday) ([]WeekStartDate, error) {
	if n < 1 {
		return nil, generic.ErrInvalidWeekCount
	}

	first := anchor.StartOfWeek(weekStart)
	weeks := make([]WeekStartDate, n)
	for i := range weeks {
		d := first.AddWeeks(i)
		weeks[i] = WeekStartDate{Date: d, Key: d.String()}
	}
	return weeks, nil
}

// WeekKeyFor maps a calendar day to the key of the week containing it.
func WeekKeyFor(day generic.TimePoint, weekStart time.Weekday) string {
	return day.StartOfWeek(weekStart).String()
}

// WeekKeys extracts the keys of a week sequence.
func WeekKeys(weeks []WeekStartDate) []string {
	keys := make([]string, len(weeks))
	for i, w := range weeks {
		keys[i] = w.Key
	}
	return keys
}

// Horizon returns the inclusive day range covered by weeks, from the first
// week start to the last day of the last week.
func Horizon(weeks []WeekStartDate) generic.Period {
	if len(weeks) == 0 {
		return generic.Period{}
	}
	return generic.Period{
		Start: weeks[0].Date,
		End:   weeks[len(weeks)-1].Date.AddDays(6),
	}
}
