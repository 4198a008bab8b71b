package workload_test

import (
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

func newService(store workload.Store, strict bool) *workload.Service {
	return workload.NewService(store, workload.Options{FetchTimeout: time.Second, Strict: strict}, zerolog.Nop())
}

func TestService_Workload_EndToEnd(t *testing.T) {
	svc := newService(seededStore(), false)

	rep, err := svc.Workload(context.Background(), workload.Request{
		CompanyID: "acme",
		Anchor:    day("2024-01-03"),
		Weeks:     2,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Monday, rep.WeekStart)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08"}, workload.WeekKeys(rep.Weeks))
	assert.Equal(t, []string{"m1"}, rep.MemberIDs)
	assert.Empty(t, rep.Failures)

	assert.Equal(t, [5]float64{20, 8, 8, 4, 40}, cellHours(t, rep.Data, "m1", "2024-01-01"))
	// x2 (99h) and x4 (8h holiday) land in week two.
	assert.Equal(t, [5]float64{99, 0, 8, 0, 107}, cellHours(t, rep.Data, "m1", "2024-01-08"))

	require.Len(t, rep.Summaries, 1)
	s := rep.Summaries[0]
	assert.Equal(t, 80.0, s.Capacity.Float64())
	assert.Equal(t, 147.0, s.Booked.Float64())
	assert.Equal(t, -67.0, s.Available.Float64())
	assert.Equal(t, "183.75", s.Utilization.String())
}

func TestService_Workload_Validation(t *testing.T) {
	svc := newService(seededStore(), false)
	ctx := context.Background()

	_, err := svc.Workload(ctx, workload.Request{Weeks: 1})
	assert.ErrorIs(t, err, generic.ErrCompanyRequired)

	_, err = svc.Workload(ctx, workload.Request{CompanyID: "acme", Weeks: 0})
	assert.ErrorIs(t, err, generic.ErrInvalidWeekCount)
	assert.True(t, generic.IsClientError(err))

	_, err = svc.Workload(ctx, workload.Request{CompanyID: "nope", Weeks: 1})
	assert.ErrorIs(t, err, generic.ErrCompanyNotFound)
	assert.True(t, generic.IsNotFound(err))
}

func TestService_Workload_MemberSelectionIsDedupedAndSorted(t *testing.T) {
	store := seededStore()
	store.AddMember(workload.TeamMember{ID: "m0", CompanyID: "acme", WeeklyCapacity: capacity(30)})
	svc := newService(store, false)

	rep, err := svc.Workload(context.Background(), workload.Request{
		CompanyID: "acme",
		MemberIDs: []string{"m1", "m0", "m1"},
		Anchor:    day("2024-01-01"),
		Weeks:     1,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"m0", "m1"}, rep.MemberIDs)
	assert.Equal(t, 2, rep.Data.CellCount())
	assert.Equal(t, 6.0, rep.Data.Cell("m0", "2024-01-01").OfficeHolidays.Float64())
}

func TestService_Workload_UnknownMemberGetsEmptyRow(t *testing.T) {
	svc := newService(seededStore(), false)

	rep, err := svc.Workload(context.Background(), workload.Request{
		CompanyID: "acme",
		MemberIDs: []string{"ghost"},
		Anchor:    day("2024-01-01"),
		Weeks:     1,
	})
	require.NoError(t, err)

	assert.Equal(t, [5]float64{}, cellHours(t, rep.Data, "ghost", "2024-01-01"))
}

func TestService_Workload_NoMembers(t *testing.T) {
	store := memory.NewMemory()
	store.AddCompany(workload.CompanySettings{CompanyID: "empty"})
	svc := newService(store, false)

	rep, err := svc.Workload(context.Background(), workload.Request{CompanyID: "empty", Weeks: 4})
	require.NoError(t, err)

	assert.Empty(t, rep.Data)
	assert.Len(t, rep.Weeks, 4)
	assert.Empty(t, store.Calls)
}

func TestService_Workload_LenientDegradesFailedCategory(t *testing.T) {
	store := seededStore()
	store.Fail[workload.CategoryAnnualLeave] = errors.New("timeout")
	svc := newService(store, false)

	rep, err := svc.Workload(context.Background(), workload.Request{CompanyID: "acme", Anchor: day("2024-01-01"), Weeks: 1})
	require.NoError(t, err)

	assert.Contains(t, rep.Failures, workload.CategoryAnnualLeave)
	assert.Equal(t, [5]float64{20, 0, 8, 4, 32}, cellHours(t, rep.Data, "m1", "2024-01-01"))
}

func TestService_Workload_StrictFailsWholeRequest(t *testing.T) {
	store := seededStore()
	boom := errors.New("timeout")
	store.Fail[workload.CategoryOtherLeave] = boom
	svc := newService(store, true)

	rep, err := svc.Workload(context.Background(), workload.Request{CompanyID: "acme", Anchor: day("2024-01-01"), Weeks: 1})
	require.Error(t, err)
	assert.Nil(t, rep)

	var fetchErr *workload.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Errs, workload.CategoryOtherLeave)
	assert.ErrorIs(t, err, generic.ErrFetchFailed)
	assert.ErrorIs(t, err, boom)
}

func TestService_Workload_SundayCompany(t *testing.T) {
	store := memory.NewMemory()
	store.AddCompany(workload.CompanySettings{CompanyID: "desert", StartOfWorkWeek: time.Sunday})
	store.AddMember(workload.TeamMember{ID: "omar", CompanyID: "desert"})
	store.AddAllocation(workload.Allocation{ID: "a", CompanyID: "desert", MemberID: "omar", WeekKey: "2023-12-31", Hours: 10})
	store.AddAnnualLeave(workload.AnnualLeave{ID: "l", CompanyID: "desert", MemberID: "omar", Date: day("2024-01-06"), Hours: 8})
	svc := newService(store, false)

	rep, err := svc.Workload(context.Background(), workload.Request{CompanyID: "desert", Anchor: day("2024-01-02"), Weeks: 1})
	require.NoError(t, err)

	assert.Equal(t, "2023-12-31", rep.Weeks[0].Key)
	assert.Equal(t, [5]float64{10, 8, 0, 0, 18}, cellHours(t, rep.Data, "omar", "2023-12-31"))
}

func TestService_Workload_DefaultsAnchorToToday(t *testing.T) {
	svc := newService(seededStore(), false)

	rep, err := svc.Workload(context.Background(), workload.Request{CompanyID: "acme", Weeks: 1})
	require.NoError(t, err)

	assert.Equal(t, generic.Today().StartOfWeek(time.Monday).String(), rep.Weeks[0].Key)
}

func TestService_CleanupDuplicates(t *testing.T) {
	store := memory.NewMemory()
	store.AddCompany(workload.CompanySettings{CompanyID: "dupes"})
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "newest", "older"} {
		stamp := base.Add(time.Duration([]int{1, 3, 0}[i]) * time.Hour)
		store.AddAllocation(workload.Allocation{ID: id, CompanyID: "dupes", MemberID: "sam", ProjectID: "p", WeekKey: "2024-01-01", Hours: 8, UpdatedAt: stamp})
	}
	store.AddAllocation(workload.Allocation{ID: "solo", CompanyID: "dupes", MemberID: "sam", ProjectID: "q", WeekKey: "2024-01-01", Hours: 4})
	svc := newService(store, false)
	ctx := context.Background()

	res, err := svc.CleanupDuplicates(ctx, "dupes")
	require.NoError(t, err)
	assert.Equal(t, workload.CleanupResult{CompanyID: "dupes", Scanned: 4, Groups: 1, Deleted: 2}, res)

	left, err := store.ListCompanyAllocations(ctx, "dupes")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"newest", "solo"}, workload.IDs(left))

	// Second run is a no-op.
	res, err = svc.CleanupDuplicates(ctx, "dupes")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Deleted)

	_, err = svc.CleanupDuplicates(ctx, "")
	assert.ErrorIs(t, err, generic.ErrCompanyRequired)
}
