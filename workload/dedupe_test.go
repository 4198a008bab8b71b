package workload_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/staffing-engine/workload"
)

func TestFindDuplicateAllocations(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	row := func(id, member, project, week string, updated, created time.Time) workload.Allocation {
		return workload.Allocation{ID: id, CompanyID: "c", MemberID: member, ProjectID: project, WeekKey: week, UpdatedAt: updated, CreatedAt: created}
	}

	tests := []struct {
		name       string
		rows       []workload.Allocation
		wantIDs    []string
		wantGroups int
	}{
		{
			name:    "no duplicates",
			rows:    []workload.Allocation{row("a", "m", "p", "w1", t0, t0), row("b", "m", "p", "w2", t0, t0), row("c", "m", "q", "w1", t0, t0)},
			wantIDs: []string{},
		},
		{
			name:       "latest update wins",
			rows:       []workload.Allocation{row("a", "m", "p", "w1", t0.Add(time.Hour), t0), row("b", "m", "p", "w1", t0, t0)},
			wantIDs:    []string{"b"},
			wantGroups: 1,
		},
		{
			name:       "created breaks update tie",
			rows:       []workload.Allocation{row("a", "m", "p", "w1", t0, t0), row("b", "m", "p", "w1", t0, t0.Add(time.Minute))},
			wantIDs:    []string{"a"},
			wantGroups: 1,
		},
		{
			name:       "id breaks full tie",
			rows:       []workload.Allocation{row("z", "m", "p", "w1", t0, t0), row("y", "m", "p", "w1", t0, t0), row("x", "m", "p", "w1", t0, t0)},
			wantIDs:    []string{"x", "y"},
			wantGroups: 1,
		},
		{
			name: "independent groups",
			rows: []workload.Allocation{
				row("1", "m", "p", "w1", t0, t0), row("2", "m", "p", "w1", t0.Add(time.Hour), t0),
				row("3", "n", "p", "w1", t0.Add(time.Hour), t0), row("4", "n", "p", "w1", t0, t0),
			},
			wantIDs:    []string{"1", "4"},
			wantGroups: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dups, groups := workload.FindDuplicateAllocations(tt.rows)
			assert.Equal(t, tt.wantGroups, groups)
			assert.Equal(t, tt.wantIDs, workload.IDs(dups))
		})
	}
}

func TestSummarize(t *testing.T) {
	w := weeks(t, "2024-01-01", 2, time.Monday)
	team := []workload.TeamMember{{ID: "a", WeeklyCapacity: capacity(30)}, {ID: "z", WeeklyCapacity: capacity(0)}}
	data := workload.NewProcessor(time.Monday).Process(workload.Input{
		MemberIDs: []string{"z", "b", "a"},
		Weeks:     w,
		Members:   team,
		Raw: workload.RawData{Allocations: []workload.Allocation{
			{MemberID: "a", WeekKey: "2024-01-01", Hours: 20},
			{MemberID: "a", WeekKey: "2024-01-08", Hours: 25},
			{MemberID: "z", WeekKey: "2024-01-01", Hours: 5},
		}},
	})

	got := workload.Summarize(data, team, len(w))
	require.Len(t, got, 3)

	assert.Equal(t, "a", got[0].MemberID)
	assert.Equal(t, 60.0, got[0].Capacity.Float64())
	assert.Equal(t, 45.0, got[0].Booked.Float64())
	assert.Equal(t, 15.0, got[0].Available.Float64())
	assert.Equal(t, "75", got[0].Utilization.String())

	// b has no member record: default capacity, nothing booked.
	assert.Equal(t, "b", got[1].MemberID)
	assert.Equal(t, 80.0, got[1].Capacity.Float64())
	assert.True(t, got[1].Utilization.IsZero())

	// z has zero capacity: utilization stays zero instead of dividing by zero.
	assert.Equal(t, "z", got[2].MemberID)
	assert.Equal(t, 5.0, got[2].Booked.Float64())
	assert.True(t, got[2].Utilization.IsZero())
}
