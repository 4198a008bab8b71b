package workload_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/store/memory"
	"github.com/warp/staffing-engine/workload"
)

// seededStore holds the single-week fixture for company "acme" plus noise
// rows that every query must filter out.
func seededStore() *memory.Memory {
	m := memory.NewMemory()
	m.AddCompany(workload.CompanySettings{CompanyID: "acme", Name: "Acme", StartOfWorkWeek: time.Monday})
	m.AddMember(workload.TeamMember{ID: "m1", CompanyID: "acme", LocationID: "NYC", WeeklyCapacity: capacity(40)})

	m.AddAllocation(workload.Allocation{ID: "a1", CompanyID: "acme", MemberID: "m1", ProjectID: "p1", WeekKey: "2024-01-01", Hours: 20})
	m.AddAnnualLeave(workload.AnnualLeave{ID: "al1", CompanyID: "acme", MemberID: "m1", Date: day("2024-01-02"), Hours: 8})
	m.AddOfficeHoliday(workload.OfficeHoliday{ID: "h1", CompanyID: "acme", Date: day("2024-01-03")})
	m.AddOtherLeave(workload.OtherLeave{ID: "ol1", CompanyID: "acme", MemberID: "m1", WeekKey: "2024-01-01", Hours: 4, LeaveType: "sick"})

	// Other tenant, other week, other member.
	m.AddAllocation(workload.Allocation{ID: "x1", CompanyID: "other", MemberID: "m1", WeekKey: "2024-01-01", Hours: 99})
	m.AddAllocation(workload.Allocation{ID: "x2", CompanyID: "acme", MemberID: "m1", WeekKey: "2024-01-08", Hours: 99})
	m.AddAnnualLeave(workload.AnnualLeave{ID: "x3", CompanyID: "acme", MemberID: "m9", Date: day("2024-01-02"), Hours: 99})
	m.AddOfficeHoliday(workload.OfficeHoliday{ID: "x4", CompanyID: "acme", Date: day("2024-01-10")})
	return m
}

func TestFetch_ReadsAllCategories(t *testing.T) {
	store := seededStore()
	f := workload.NewFetcher(store, zerolog.Nop())

	raw := f.Fetch(context.Background(), "acme", []string{"m1"}, weeks(t, "2024-01-01", 1, time.Monday))

	assert.Empty(t, raw.Errs)
	require.Len(t, raw.Allocations, 1)
	assert.Equal(t, "a1", raw.Allocations[0].ID)
	require.Len(t, raw.AnnualLeave, 1)
	assert.Equal(t, "al1", raw.AnnualLeave[0].ID)
	require.Len(t, raw.OfficeHolidays, 1)
	assert.Equal(t, "h1", raw.OfficeHolidays[0].ID)
	require.Len(t, raw.OtherLeave, 1)

	for _, c := range workload.Categories {
		assert.Equal(t, 1, store.Calls[c], c)
	}
}

func TestFetch_EmptyInputsDoNotQuery(t *testing.T) {
	w := weeks(t, "2024-01-01", 1, time.Monday)
	tests := []struct {
		name      string
		companyID string
		members   []string
		weeks     []workload.WeekStartDate
	}{
		{"no company", "", []string{"m1"}, w},
		{"no members", "acme", nil, w},
		{"no weeks", "acme", []string{"m1"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			raw := workload.NewFetcher(store, zerolog.Nop()).Fetch(context.Background(), tt.companyID, tt.members, tt.weeks)

			assert.Empty(t, raw.Allocations)
			assert.Empty(t, raw.AnnualLeave)
			assert.Empty(t, raw.OfficeHolidays)
			assert.Empty(t, raw.OtherLeave)
			assert.Empty(t, raw.Errs)
			assert.Empty(t, store.Calls)
		})
	}
}

func TestFetch_OneFailureDoesNotCancelOthers(t *testing.T) {
	// GIVEN: the holiday query fails
	// THEN: the other three categories still load, the failure is recorded and logged
	store := seededStore()
	boom := errors.New("connection reset")
	store.Fail[workload.CategoryOfficeHolidays] = boom

	var buf bytes.Buffer
	f := workload.NewFetcher(store, zerolog.New(&buf))

	raw := f.Fetch(context.Background(), "acme", []string{"m1"}, weeks(t, "2024-01-01", 1, time.Monday))

	assert.Len(t, raw.Allocations, 1)
	assert.Len(t, raw.AnnualLeave, 1)
	assert.Len(t, raw.OtherLeave, 1)
	assert.Empty(t, raw.OfficeHolidays)

	require.True(t, raw.Failed(workload.CategoryOfficeHolidays))
	assert.False(t, raw.Failed(workload.CategoryAllocations))
	assert.ErrorIs(t, raw.Errs[workload.CategoryOfficeHolidays], boom)

	var catErr *generic.CategoryError
	require.ErrorAs(t, raw.Errs[workload.CategoryOfficeHolidays], &catErr)
	assert.Equal(t, "office_holidays", catErr.Category)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"category":"office_holidays"`)
}

func TestFetch_AllFail(t *testing.T) {
	store := seededStore()
	for _, c := range workload.Categories {
		store.Fail[c] = errors.New("down")
	}

	raw := workload.NewFetcher(store, zerolog.Nop()).Fetch(context.Background(), "acme", []string{"m1"}, weeks(t, "2024-01-01", 1, time.Monday))

	assert.Len(t, raw.Errs, len(workload.Categories))
}
