/*
processor.go - Reduction of raw collections into weekly breakdowns

PURPOSE:
  Turns RawData into a dense ProcessedData: one zero-initialized cell per
  member x week, then each category adds its hours, then totals are
  computed.

FOLD RULES:
  allocations      hours -> ProjectHours   at (member, week key)
  annual leave     hours -> AnnualLeave    at (member, week of date)
  office holidays  capacity/5 per weekday  at (each matching member, week of day),
                   span clipped to the week horizon first
  other leave      hours -> OtherLeave     at (member, week key)

  Every rule is an iterator of Contributions. A single reducer adds them to
  cells. Contributions that land outside the structure are dropped, so stale
  or out-of-range rows never raise.

WEEK START:
  The processor's weekday is used for every date -> week key mapping,
  the same one used to generate the week sequence. Annual leave and holiday
  cells therefore line up with allocation cells for any company setting.

SEE ALSO:
  - fetcher.go: Produces RawData
  - weeks.go: Week sequence and WeekKeyFor
*/
package workload

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/generic"
)

var workdaysPerWeek = decimal.NewFromInt(5)

// Contribution is hours added to one cell by one rule.
type Contribution struct {
	MemberID string
	WeekKey  string
	Category Category
	Hours    generic.Amount
}

// Input bundles everything Process needs.
type Input struct {
	MemberIDs []string
	Weeks     []WeekStartDate
	Members   []TeamMember // used for holiday fan-out (location, capacity)
	Raw       RawData
}

type Processor struct {
	WeekStart time.Weekday
}

func NewProcessor(weekStart time.Weekday) *Processor {
	return &Processor{WeekStart: weekStart}
}

// Process builds a fresh ProcessedData for in. It never mutates in.
func (p *Processor) Process(in Input) ProcessedData {
	data := initialize(in.MemberIDs, in.Weeks)

	for c := range p.Contributions(in) {
		if cell := data.Cell(c.MemberID, c.WeekKey); cell != nil {
			cell.add(c.Category, c.Hours)
		}
	}

	for _, weeks := range data {
		for _, cell := range weeks {
			cell.finalize()
		}
	}
	return data
}

// Contributions yields every category's contributions in fold order.
func (p *Processor) Contributions(in Input) iter.Seq[Contribution] {
	return func(yield func(Contribution) bool) {
		seqs := []iter.Seq[Contribution]{
			allocationContributions(in.Raw.Allocations),
			p.annualLeaveContributions(in.Raw.AnnualLeave),
			p.holidayContributions(in.Raw.OfficeHolidays, in.Members, Horizon(in.Weeks)),
			otherLeaveContributions(in.Raw.OtherLeave),
		}
		for _, seq := range seqs {
			for c := range seq {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func initialize(memberIDs []string, weeks []WeekStartDate) ProcessedData {
	data := make(ProcessedData, len(memberIDs))
	for _, id := range memberIDs {
		cells := make(map[string]*WeeklyBreakdown, len(weeks))
		for _, w := range weeks {
			cells[w.Key] = newBreakdown()
		}
		data[id] = cells
	}
	return data
}

// =============================================================================
// FOLD RULES
// =============================================================================

func allocationContributions(rows []Allocation) iter.Seq[Contribution] {
	return func(yield func(Contribution) bool) {
		for _, a := range rows {
			if a.MemberID == "" || a.WeekKey == "" {
				continue
			}
			if !yield(Contribution{MemberID: a.MemberID, WeekKey: a.WeekKey, Category: CategoryAllocations, Hours: generic.Hours(a.Hours)}) {
				return
			}
		}
	}
}

func (p *Processor) annualLeaveContributions(rows []AnnualLeave) iter.Seq[Contribution] {
	return func(yield func(Contribution) bool) {
		for _, l := range rows {
			if l.MemberID == "" || l.Date.IsZero() {
				continue
			}
			key := WeekKeyFor(l.Date, p.WeekStart)
			if !yield(Contribution{MemberID: l.MemberID, WeekKey: key, Category: CategoryAnnualLeave, Hours: generic.Hours(l.Hours)}) {
				return
			}
		}
	}
}

// holidayContributions only walks the part of each span inside horizon.
// Days outside it would be dropped by the reducer anyway.
func (p *Processor) holidayContributions(rows []OfficeHoliday, members []TeamMember, horizon generic.Period) iter.Seq[Contribution] {
	return func(yield func(Contribution) bool) {
		for _, h := range rows {
			if h.Date.IsZero() {
				continue
			}
			for _, day := range h.Span().Intersect(horizon).Workdays() {
				key := WeekKeyFor(day, p.WeekStart)
				for _, m := range members {
					if !h.AppliesTo(m) {
						continue
					}
					perDay := generic.Hours(m.Capacity()).Div(workdaysPerWeek)
					if !yield(Contribution{MemberID: m.ID, WeekKey: key, Category: CategoryOfficeHolidays, Hours: perDay}) {
						return
					}
				}
			}
		}
	}
}

func otherLeaveContributions(rows []OtherLeave) iter.Seq[Contribution] {
	return func(yield func(Contribution) bool) {
		for _, l := range rows {
			if l.MemberID == "" || l.WeekKey == "" {
				continue
			}
			if !yield(Contribution{MemberID: l.MemberID, WeekKey: l.WeekKey, Category: CategoryOtherLeave, Hours: generic.Hours(l.Hours)}) {
				return
			}
		}
	}
}
