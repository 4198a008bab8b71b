package workload

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/generic"
)

var hundred = decimal.NewFromInt(100)

// MemberSummary is a member's utilization over a processed horizon.
type MemberSummary struct {
	MemberID    string
	Capacity    generic.Amount // weekly capacity x weeks
	Booked      generic.Amount // sum of cell totals
	Available   generic.Amount // Capacity - Booked, may be negative when overbooked
	Utilization decimal.Decimal
}

// Summarize computes one MemberSummary per member in data, sorted by member id.
// Members missing from members use DefaultWeeklyCapacity.
func Summarize(data ProcessedData, members []TeamMember, weekCount int) []MemberSummary {
	capacity := make(map[string]float64, len(members))
	for _, m := range members {
		capacity[m.ID] = m.Capacity()
	}

	summaries := make([]MemberSummary, 0, len(data))
	for memberID, weeks := range data {
		weekly, ok := capacity[memberID]
		if !ok {
			weekly = DefaultWeeklyCapacity
		}
		s := MemberSummary{
			MemberID:    memberID,
			Capacity:    generic.Hours(weekly).Mul(decimal.NewFromInt(int64(weekCount))),
			Booked:      generic.ZeroHours(),
			Utilization: decimal.Zero,
		}
		for _, cell := range weeks {
			s.Booked = s.Booked.Add(cell.Total)
		}
		s.Available = s.Capacity.Sub(s.Booked)
		if s.Capacity.IsPositive() {
			s.Utilization = s.Booked.Value.Div(s.Capacity.Value).Mul(hundred).Round(2)
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].MemberID < summaries[j].MemberID })
	return summaries
}
