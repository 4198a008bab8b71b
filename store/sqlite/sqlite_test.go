package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/store/sqlite"
	"github.com/warp/staffing-engine/workload"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(s string) generic.TimePoint { return generic.MustParseDate(s) }

func capacity(h float64) *float64 { return &h }

// seedAcme writes the single-week fixture plus rows each query must exclude.
func seedAcme(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.SaveCompany(ctx, workload.CompanySettings{CompanyID: "acme", Name: "Acme", StartOfWorkWeek: time.Monday}))
	require.NoError(t, store.SaveCompany(ctx, workload.CompanySettings{CompanyID: "other", Name: "Other"}))
	require.NoError(t, store.SaveTeamMember(ctx, workload.TeamMember{ID: "m1", CompanyID: "acme", Name: "Alice", LocationID: "NYC", WeeklyCapacity: capacity(40)}))
	require.NoError(t, store.SaveTeamMember(ctx, workload.TeamMember{ID: "m2", CompanyID: "acme", Name: "Bob"}))

	require.NoError(t, store.SaveAllocation(ctx, workload.Allocation{ID: "a1", CompanyID: "acme", MemberID: "m1", ProjectID: "p1", WeekKey: "2024-01-01", Hours: 20}))
	require.NoError(t, store.SaveAllocation(ctx, workload.Allocation{ID: "a2", CompanyID: "acme", MemberID: "m1", ProjectID: "p1", WeekKey: "2024-01-15", Hours: 5}))
	require.NoError(t, store.SaveAllocation(ctx, workload.Allocation{ID: "a3", CompanyID: "other", MemberID: "m1", ProjectID: "p1", WeekKey: "2024-01-01", Hours: 7}))

	require.NoError(t, store.SaveAnnualLeave(ctx, workload.AnnualLeave{ID: "l1", CompanyID: "acme", MemberID: "m1", Date: day("2024-01-02"), Hours: 8}))
	require.NoError(t, store.SaveAnnualLeave(ctx, workload.AnnualLeave{ID: "l2", CompanyID: "acme", MemberID: "m1", Date: day("2024-01-08"), Hours: 8}))

	end := day("2024-01-09")
	require.NoError(t, store.SaveOfficeHoliday(ctx, workload.OfficeHoliday{ID: "h1", CompanyID: "acme", Name: "Company Day", Date: day("2024-01-03")}))
	require.NoError(t, store.SaveOfficeHoliday(ctx, workload.OfficeHoliday{ID: "h2", CompanyID: "acme", Name: "Late", Date: day("2024-01-08"), EndDate: &end, LocationID: "NYC"}))
	// Starts before the horizon: excluded even though it overlaps.
	overlap := day("2024-01-02")
	require.NoError(t, store.SaveOfficeHoliday(ctx, workload.OfficeHoliday{ID: "h3", CompanyID: "acme", Name: "Early", Date: day("2023-12-29"), EndDate: &overlap}))

	require.NoError(t, store.SaveOtherLeave(ctx, workload.OtherLeave{ID: "o1", CompanyID: "acme", MemberID: "m1", WeekKey: "2024-01-01", Hours: 4, LeaveType: "sick"}))
	require.NoError(t, store.SaveOtherLeave(ctx, workload.OtherLeave{ID: "o2", CompanyID: "acme", MemberID: "m2", WeekKey: "2024-01-01", Hours: 2, LeaveType: "training"}))
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestCompanySettings_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCompany(ctx, workload.CompanySettings{CompanyID: "desert", Name: "Desert", StartOfWorkWeek: time.Sunday}))

	got, err := store.GetCompanySettings(ctx, "desert")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Sunday, got.StartOfWorkWeek)

	// Update
	require.NoError(t, store.SaveCompany(ctx, workload.CompanySettings{CompanyID: "desert", Name: "Desert Co", StartOfWorkWeek: time.Monday}))
	got, err = store.GetCompanySettings(ctx, "desert")
	require.NoError(t, err)
	assert.Equal(t, "Desert Co", got.Name)
	assert.Equal(t, time.Monday, got.StartOfWorkWeek)

	missing, err := store.GetCompanySettings(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListTeamMembers(t *testing.T) {
	store := newTestStore(t)
	seedAcme(t, store)
	ctx := context.Background()

	all, err := store.ListTeamMembers(ctx, "acme", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "m1", all[0].ID)
	require.NotNil(t, all[0].WeeklyCapacity)
	assert.Equal(t, 40.0, *all[0].WeeklyCapacity)
	assert.Nil(t, all[1].WeeklyCapacity, "unset capacity stays NULL")
	assert.Equal(t, workload.DefaultWeeklyCapacity, all[1].Capacity())

	some, err := store.ListTeamMembers(ctx, "acme", []string{"m2", "ghost"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "m2", some[0].ID)
}

// =============================================================================
// SOURCE QUERIES
// =============================================================================

func TestSourceQueries_Filters(t *testing.T) {
	store := newTestStore(t)
	seedAcme(t, store)
	ctx := context.Background()

	members := []string{"m1"}
	keys := []string{"2024-01-01", "2024-01-08"}
	from, to := day("2024-01-01"), day("2024-01-14")

	allocs, err := store.ListAllocations(ctx, "acme", members, keys)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, "a1", allocs[0].ID)
	assert.Equal(t, 20.0, allocs[0].Hours)
	assert.False(t, allocs[0].CreatedAt.IsZero())

	leave, err := store.ListAnnualLeave(ctx, "acme", members, from, to)
	require.NoError(t, err)
	require.Len(t, leave, 2)
	assert.Equal(t, "2024-01-02", leave[0].Date.String())

	holidays, err := store.ListOfficeHolidays(ctx, "acme", from, to)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "h1", holidays[0].ID)
	assert.Nil(t, holidays[0].EndDate)
	assert.Empty(t, holidays[0].LocationID)
	assert.Equal(t, "h2", holidays[1].ID)
	require.NotNil(t, holidays[1].EndDate)
	assert.Equal(t, "2024-01-09", holidays[1].EndDate.String())
	assert.Equal(t, "NYC", holidays[1].LocationID)

	other, err := store.ListOtherLeave(ctx, "acme", members, keys)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "sick", other[0].LeaveType)
}

func TestSourceQueries_EmptySelection(t *testing.T) {
	store := newTestStore(t)
	seedAcme(t, store)
	ctx := context.Background()

	allocs, err := store.ListAllocations(ctx, "acme", nil, []string{"2024-01-01"})
	assert.NoError(t, err)
	assert.Empty(t, allocs)

	other, err := store.ListOtherLeave(ctx, "acme", []string{"m1"}, nil)
	assert.NoError(t, err)
	assert.Empty(t, other)
}

func TestSaveRejectsNegativeHours(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveAllocation(ctx, workload.Allocation{ID: "a", CompanyID: "c", MemberID: "m", WeekKey: "2024-01-01", Hours: -1})
	assert.ErrorIs(t, err, generic.ErrInvalidHours)

	err = store.SaveAnnualLeave(ctx, workload.AnnualLeave{ID: "l", CompanyID: "c", MemberID: "m", Date: day("2024-01-01"), Hours: -8})
	assert.ErrorIs(t, err, generic.ErrInvalidHours)

	err = store.SaveOtherLeave(ctx, workload.OtherLeave{ID: "o", CompanyID: "c", MemberID: "m", WeekKey: "2024-01-01", Hours: -4})
	assert.ErrorIs(t, err, generic.ErrInvalidHours)
}

func TestSaveRejectsIDOwnedByAnotherCompany(t *testing.T) {
	// GIVEN: acme's fixture rows
	// WHEN: another company saves records reusing acme's ids
	// THEN: every write fails with ErrIDConflict and acme's rows are untouched
	store := newTestStore(t)
	seedAcme(t, store)
	ctx := context.Background()
	end := day("2024-01-31")

	writes := map[string]error{
		"allocation":  store.SaveAllocation(ctx, workload.Allocation{ID: "a1", CompanyID: "evil", MemberID: "m1", WeekKey: "2024-01-01", Hours: 999}),
		"member":      store.SaveTeamMember(ctx, workload.TeamMember{ID: "m1", CompanyID: "evil", Name: "Mallory", WeeklyCapacity: capacity(1)}),
		"annual":      store.SaveAnnualLeave(ctx, workload.AnnualLeave{ID: "l1", CompanyID: "evil", MemberID: "m1", Date: day("2024-01-02"), Hours: 99}),
		"holiday":     store.SaveOfficeHoliday(ctx, workload.OfficeHoliday{ID: "h1", CompanyID: "evil", Date: day("2024-01-01"), EndDate: &end}),
		"other leave": store.SaveOtherLeave(ctx, workload.OtherLeave{ID: "o1", CompanyID: "evil", MemberID: "m1", WeekKey: "2024-01-01", Hours: 99}),
	}
	for name, err := range writes {
		assert.ErrorIs(t, err, generic.ErrIDConflict, name)
		assert.True(t, generic.IsConflict(err), name)
	}

	require.NoError(t, store.SaveOffice(ctx, workload.Office{ID: "nyc", CompanyID: "acme", Name: "New York"}))
	assert.ErrorIs(t, store.SaveOffice(ctx, workload.Office{ID: "nyc", CompanyID: "evil", Name: "Taken"}), generic.ErrIDConflict)

	allocs, err := store.ListCompanyAllocations(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 20.0, allocs[0].Hours)

	members, err := store.ListTeamMembers(ctx, "acme", []string{"m1"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Alice", members[0].Name)
	assert.Equal(t, 40.0, *members[0].WeeklyCapacity)

	holidays, err := store.ListAllOfficeHolidays(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "Company Day", holidays[1].Name)
	assert.Nil(t, holidays[1].EndDate)

	evil, err := store.ListCompanyAllocations(ctx, "evil")
	require.NoError(t, err)
	assert.Empty(t, evil)

	// Same-company updates still go through.
	require.NoError(t, store.SaveAllocation(ctx, workload.Allocation{ID: "a1", CompanyID: "acme", MemberID: "m1", WeekKey: "2024-01-01", Hours: 24}))
	allocs, err = store.ListCompanyAllocations(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 24.0, allocs[0].Hours)
}

// =============================================================================
// CLEANER
// =============================================================================

func TestDeleteAllocations_ScopedToCompany(t *testing.T) {
	store := newTestStore(t)
	seedAcme(t, store)
	ctx := context.Background()

	n, err := store.DeleteAllocations(ctx, "acme", []string{"a1", "a3"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a3 belongs to another company")

	left, err := store.ListCompanyAllocations(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, workload.IDs(left))

	n, err = store.DeleteAllocations(ctx, "acme", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHolidayDelete(t *testing.T) {
	store := newTestStore(t)
	seedAcme(t, store)
	ctx := context.Background()

	require.NoError(t, store.DeleteOfficeHoliday(ctx, "acme", "h1"))

	all, err := store.ListAllOfficeHolidays(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, h := range all {
		assert.NotEqual(t, "h1", h.ID)
	}
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	seedAcme(t, store)
	ctx := context.Background()

	require.NoError(t, store.Reset(ctx))

	companies, err := store.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Empty(t, companies)
}

// =============================================================================
// END TO END
// =============================================================================

func TestWorkloadAgainstSQLite(t *testing.T) {
	// GIVEN: the single-week fixture in SQLite
	// WHEN: the service aggregates two weeks for m1
	// THEN: the concurrent reads share the one in-memory connection and week one totals 40h
	store := newTestStore(t)
	seedAcme(t, store)

	svc := workload.NewService(store, workload.Options{FetchTimeout: 5 * time.Second, Strict: true}, zerolog.Nop())
	rep, err := svc.Workload(context.Background(), workload.Request{
		CompanyID: "acme",
		MemberIDs: []string{"m1"},
		Anchor:    day("2024-01-01"),
		Weeks:     2,
	})
	require.NoError(t, err)

	c := rep.Data.Cell("m1", "2024-01-01")
	require.NotNil(t, c)
	assert.Equal(t, 20.0, c.ProjectHours.Float64())
	assert.Equal(t, 8.0, c.AnnualLeave.Float64())
	assert.Equal(t, 8.0, c.OfficeHolidays.Float64())
	assert.Equal(t, 4.0, c.OtherLeave.Float64())
	assert.Equal(t, 40.0, c.Total.Float64())

	// Week two: l2 (8h) plus h2 on Mon+Tue for NYC (16h).
	c = rep.Data.Cell("m1", "2024-01-08")
	require.NotNil(t, c)
	assert.Equal(t, 24.0, c.Total.Float64())
}
