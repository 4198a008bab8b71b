package generic

import (
	"fmt"
	"time"
)

// DateLayout is the canonical day format used for week keys and stored dates.
const DateLayout = "2006-01-02"

// =============================================================================
// TIME POINT - Concrete day abstraction (this IS a calendar-week system)
// =============================================================================

// TimePoint is a UTC calendar day. Every constructor truncates to midnight.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates any time.Time to its calendar day in UTC.
func DayOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return DayOf(time.Now())
}

// ParseDate parses a yyyy-MM-dd string into a day TimePoint.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DayOf(t), nil
}

// MustParseDate is ParseDate for fixtures. Panics on malformed input.
func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, 0, n)}
}
func (tp TimePoint) AddWeeks(n int) TimePoint { return tp.AddDays(7 * n) }

// StartOfWeek returns the day on or before tp that falls on weekStart.
func (tp TimePoint) StartOfWeek(weekStart time.Weekday) TimePoint {
	day := DayOf(tp.Time)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDays(-offset)
}

// Properties
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (tp TimePoint) IsWorkday() bool { return !tp.IsWeekend() }
func (tp TimePoint) IsZero() bool    { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.Time.Format(DateLayout) }

// =============================================================================
// WEEKDAY PARSING - Company start-of-work-week setting
// =============================================================================

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts lower-case English day names ("monday").
// An empty string yields Monday.
func ParseWeekday(s string) (time.Weekday, error) {
	if s == "" {
		return time.Monday, nil
	}
	wd, ok := weekdays[s]
	if !ok {
		return time.Monday, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSetting, s)
	}
	return wd, nil
}

// WeekdayName is the inverse of ParseWeekday.
func WeekdayName(wd time.Weekday) string {
	for name, d := range weekdays {
		if d == wd {
			return name
		}
	}
	return "monday"
}

// DaysBetween returns whole days from "from" to "to".
func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }
