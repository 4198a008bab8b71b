/*
fetcher.go - Concurrent retrieval of the four workload source collections

PURPOSE:
  Reads allocations, annual leave, office holidays and other leave for one
  company, a member set and a week sequence. The four reads run
  concurrently and each reports its own outcome.

FILTERS:
  allocations      company, member IN, week key IN           (week grain)
  annual leave     company, member IN, date in [start, end]  (day grain)
  office holidays  company, start date in [start, end]       (day range)
  other leave      company, member IN, week key IN           (week grain)

  [start, end] is the first week start to the last week start + 6 days.

PARTIAL FAILURE:
  A failing read never cancels the others. Its error lands in
  RawData.Errs and its rows stay empty. Whether a failure aborts the whole
  aggregation is decided by Service, not here.

SEE ALSO:
  - processor.go: Folds RawData into ProcessedData
  - service.go: Failure policy and timeouts
  - store/sqlite/sqlite.go: Source implementation
*/
package workload

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/warp/staffing-engine/generic"
)

// =============================================================================
// SOURCE - Read contract of the backing store
// =============================================================================

// Source is read by Fetcher. Implementations must be safe for concurrent use.
type Source interface {
	ListAllocations(ctx context.Context, companyID string, memberIDs, weekKeys []string) ([]Allocation, error)
	ListAnnualLeave(ctx context.Context, companyID string, memberIDs []string, from, to generic.TimePoint) ([]AnnualLeave, error)
	ListOfficeHolidays(ctx context.Context, companyID string, from, to generic.TimePoint) ([]OfficeHoliday, error)
	ListOtherLeave(ctx context.Context, companyID string, memberIDs, weekKeys []string) ([]OtherLeave, error)
}

// =============================================================================
// RAW DATA
// =============================================================================

// RawData is the result of one fetch. A category present in Errs failed and
// contributes no rows.
type RawData struct {
	Allocations    []Allocation
	AnnualLeave    []AnnualLeave
	OfficeHolidays []OfficeHoliday
	OtherLeave     []OtherLeave
	Errs           map[Category]error
}

// Failed reports whether the category's read failed.
func (r RawData) Failed(c Category) bool {
	_, ok := r.Errs[c]
	return ok
}

// =============================================================================
// FETCHER
// =============================================================================

type Fetcher struct {
	source Source
	logger zerolog.Logger
}

func NewFetcher(source Source, logger zerolog.Logger) *Fetcher {
	return &Fetcher{source: source, logger: logger}
}

// Fetch issues the four reads concurrently and waits for all of them.
// Empty company, members or weeks return empty RawData without querying.
func (f *Fetcher) Fetch(ctx context.Context, companyID string, memberIDs []string, weeks []WeekStartDate) RawData {
	raw := RawData{Errs: make(map[Category]error)}
	if companyID == "" || len(memberIDs) == 0 || len(weeks) == 0 {
		return raw
	}

	keys := WeekKeys(weeks)
	horizon := Horizon(weeks)

	var mu sync.Mutex
	record := func(c Category, n int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			raw.Errs[c] = &generic.CategoryError{Category: string(c), Err: err}
			f.logger.Warn().Err(err).Str("company_id", companyID).Str("category", string(c)).Msg("workload fetch failed")
			return
		}
		f.logger.Debug().Str("company_id", companyID).Str("category", string(c)).Int("rows", n).Msg("workload fetch")
	}

	// Every goroutine returns nil so one failure never cancels the others.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		rows, err := f.source.ListAllocations(egCtx, companyID, memberIDs, keys)
		if err == nil {
			raw.Allocations = rows
		}
		record(CategoryAllocations, len(rows), err)
		return nil
	})

	eg.Go(func() error {
		rows, err := f.source.ListAnnualLeave(egCtx, companyID, memberIDs, horizon.Start, horizon.End)
		if err == nil {
			raw.AnnualLeave = rows
		}
		record(CategoryAnnualLeave, len(rows), err)
		return nil
	})

	eg.Go(func() error {
		rows, err := f.source.ListOfficeHolidays(egCtx, companyID, horizon.Start, horizon.End)
		if err == nil {
			raw.OfficeHolidays = rows
		}
		record(CategoryOfficeHolidays, len(rows), err)
		return nil
	})

	eg.Go(func() error {
		rows, err := f.source.ListOtherLeave(egCtx, companyID, memberIDs, keys)
		if err == nil {
			raw.OtherLeave = rows
		}
		record(CategoryOtherLeave, len(rows), err)
		return nil
	})

	_ = eg.Wait()
	return raw
}
