// Package workload reduces allocations, leave and office holidays into weekly
// per-member breakdowns. It uses the generic package for day math and hours.
package workload

import (
	"time"

	"github.com/warp/staffing-engine/generic"
)

// DefaultWeeklyCapacity applies to members without a configured capacity.
const DefaultWeeklyCapacity = 40.0

// =============================================================================
// CATEGORIES
// =============================================================================

// Category names one of the four source collections.
type Category string

const (
	CategoryAllocations    Category = "allocations"
	CategoryAnnualLeave    Category = "annual_leave"
	CategoryOfficeHolidays Category = "office_holidays"
	CategoryOtherLeave     Category = "other_leave"
)

// Categories lists every source category in fold order.
var Categories = []Category{
	CategoryAllocations,
	CategoryAnnualLeave,
	CategoryOfficeHolidays,
	CategoryOtherLeave,
}

// =============================================================================
// WEEKS
// =============================================================================

// WeekStartDate pairs a normalized week start with its yyyy-MM-dd key.
type WeekStartDate struct {
	Date generic.TimePoint
	Key  string
}

// =============================================================================
// RAW RECORDS - Typed rows from the backing store
// =============================================================================

// TeamMember is the subset of a member needed for holiday apportionment.
type TeamMember struct {
	ID             string
	CompanyID      string
	Name           string
	LocationID     string
	WeeklyCapacity *float64 // nil = DefaultWeeklyCapacity
}

// Capacity returns the member's weekly hours, defaulting to 40.
func (m TeamMember) Capacity() float64 {
	if m.WeeklyCapacity == nil {
		return DefaultWeeklyCapacity
	}
	return *m.WeeklyCapacity
}

// Allocation is hours a member is scheduled on a project in one week.
type Allocation struct {
	ID        string
	CompanyID string
	MemberID  string // resource_id
	ProjectID string
	WeekKey   string // week_start_date
	Hours     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnnualLeave is day-grained personal leave.
type AnnualLeave struct {
	ID        string
	CompanyID string
	MemberID  string
	Date      generic.TimePoint
	Hours     float64
}

// OfficeHoliday is a non-working date range. Empty LocationID applies everywhere.
type OfficeHoliday struct {
	ID         string
	CompanyID  string
	Name       string
	Date       generic.TimePoint
	EndDate    *generic.TimePoint // nil = single day
	LocationID string
}

// Span returns the inclusive day range of the holiday.
func (h OfficeHoliday) Span() generic.Period {
	end := h.Date
	if h.EndDate != nil {
		end = *h.EndDate
	}
	return generic.Period{Start: h.Date, End: end}
}

// AppliesTo reports whether the holiday covers the member's location.
func (h OfficeHoliday) AppliesTo(m TeamMember) bool {
	return h.LocationID == "" || h.LocationID == m.LocationID
}

// OtherLeave is week-grained leave (sick, training, ...). LeaveType is carried, not aggregated.
type OtherLeave struct {
	ID        string
	CompanyID string
	MemberID  string
	WeekKey   string
	Hours     float64
	LeaveType string
}

// CompanySettings holds per-tenant settings that affect aggregation.
type CompanySettings struct {
	CompanyID       string
	Name            string
	StartOfWorkWeek time.Weekday
}

// Office is a location that holidays and members can reference.
type Office struct {
	ID        string
	CompanyID string
	Name      string
}

// =============================================================================
// PROCESSED OUTPUT
// =============================================================================

// WeeklyBreakdown holds the four accumulators of one member-week cell.
// Total is only meaningful after Processor.Process returns.
type WeeklyBreakdown struct {
	ProjectHours   generic.Amount
	AnnualLeave    generic.Amount
	OfficeHolidays generic.Amount
	OtherLeave     generic.Amount
	Total          generic.Amount
}

func newBreakdown() *WeeklyBreakdown {
	return &WeeklyBreakdown{
		ProjectHours:   generic.ZeroHours(),
		AnnualLeave:    generic.ZeroHours(),
		OfficeHolidays: generic.ZeroHours(),
		OtherLeave:     generic.ZeroHours(),
		Total:          generic.ZeroHours(),
	}
}

func (b *WeeklyBreakdown) add(c Category, h generic.Amount) {
	switch c {
	case CategoryAllocations:
		b.ProjectHours = b.ProjectHours.Add(h)
	case CategoryAnnualLeave:
		b.AnnualLeave = b.AnnualLeave.Add(h)
	case CategoryOfficeHolidays:
		b.OfficeHolidays = b.OfficeHolidays.Add(h)
	case CategoryOtherLeave:
		b.OtherLeave = b.OtherLeave.Add(h)
	}
}

func (b *WeeklyBreakdown) finalize() {
	b.Total = b.ProjectHours.Add(b.AnnualLeave).Add(b.OfficeHolidays).Add(b.OtherLeave)
}

// ProcessedData maps member id -> week key -> breakdown. It is dense over the
// member and week sets it was built for.
type ProcessedData map[string]map[string]*WeeklyBreakdown

// Cell returns the breakdown for (member, week) or nil.
func (d ProcessedData) Cell(memberID, weekKey string) *WeeklyBreakdown {
	weeks, ok := d[memberID]
	if !ok {
		return nil
	}
	return weeks[weekKey]
}

// CellCount returns the number of member-week cells.
func (d ProcessedData) CellCount() int {
	n := 0
	for _, weeks := range d {
		n += len(weeks)
	}
	return n
}
