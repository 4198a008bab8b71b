package generic

import "time"

// =============================================================================
// PERIOD - Inclusive day range
// =============================================================================

// Period is an inclusive day range [Start, End].
//
// Examples:
//   - One week: Monday 2024-01-01 - Sunday 2024-01-07
//   - Holiday span: 2024-12-24 - 2024-12-26
//   - Fetch horizon: first week start - last week start + 6 days
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// IsValid reports whether End is not before Start.
func (p Period) IsValid() bool {
	return !p.End.Before(p.Start)
}

// Intersect returns the overlap of p and o. Disjoint periods yield an
// inverted period with no days.
func (p Period) Intersect(o Period) Period {
	out := p
	if o.Start.After(out.Start) {
		out.Start = o.Start
	}
	if o.End.Before(out.End) {
		out.End = o.End
	}
	return out
}

// Days returns all days in the period as a slice of TimePoints.
// An inverted period yields no days.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Workdays returns the Monday-Friday days of the period.
func (p Period) Workdays() []TimePoint {
	var days []TimePoint
	for _, d := range p.Days() {
		if d.IsWorkday() {
			days = append(days, d)
		}
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// WeekContaining returns the seven-day period starting on weekStart that holds t.
func WeekContaining(t TimePoint, weekStart time.Weekday) Period {
	start := t.StartOfWeek(weekStart)
	return Period{Start: start, End: start.AddDays(6)}
}
