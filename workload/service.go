/*
service.go - Fetch-then-process entry point used by the API

PURPOSE:
  Resolves company settings and team members, generates the week
  sequence, fetches raw data under a timeout and processes it. Also runs
  the duplicate-allocation cleanup.

FAILURE POLICY:
  Lenient (default): a failed category degrades to "no data" and is
  listed in Report.Failures so callers can tell empty from failed.
  Strict: any failed category aborts with a *FetchError.

SEE ALSO:
  - fetcher.go, processor.go, summary.go, dedupe.go
*/
package workload

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/staffing-engine/generic"
)

// =============================================================================
// STORE CONTRACTS
// =============================================================================

// Directory resolves tenants and members.
type Directory interface {
	// GetCompanySettings returns nil, nil when the company doesn't exist.
	GetCompanySettings(ctx context.Context, companyID string) (*CompanySettings, error)

	// ListTeamMembers returns the company's members; all of them when memberIDs is empty.
	ListTeamMembers(ctx context.Context, companyID string, memberIDs []string) ([]TeamMember, error)

	ListCompanies(ctx context.Context) ([]CompanySettings, error)
}

// Cleaner supports the duplicate-allocation job.
type Cleaner interface {
	ListCompanyAllocations(ctx context.Context, companyID string) ([]Allocation, error)

	// DeleteAllocations removes the rows atomically and returns how many were deleted.
	DeleteAllocations(ctx context.Context, companyID string, ids []string) (int, error)
}

// Store is everything Service needs from persistence.
type Store interface {
	Source
	Directory
	Cleaner
}

// =============================================================================
// SERVICE
// =============================================================================

type Options struct {
	FetchTimeout time.Duration // 0 = no timeout
	Strict       bool
}

type Service struct {
	store   Store
	fetcher *Fetcher
	opts    Options
	logger  zerolog.Logger
}

func NewService(store Store, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		fetcher: NewFetcher(store, logger),
		opts:    opts,
		logger:  logger,
	}
}

// Request selects what to aggregate. Empty MemberIDs means every member of the company.
type Request struct {
	CompanyID string
	MemberIDs []string
	Anchor    generic.TimePoint
	Weeks     int
}

// Report is the processed result plus its context.
type Report struct {
	CompanyID string
	WeekStart time.Weekday
	Weeks     []WeekStartDate
	MemberIDs []string
	Members   []TeamMember
	Data      ProcessedData
	Summaries []MemberSummary
	Failures  map[Category]error
}

// FetchError is returned in strict mode.
type FetchError struct {
	Errs map[Category]error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v: %v", generic.ErrFetchFailed, e.joined())
}

func (e *FetchError) Unwrap() []error {
	return []error{generic.ErrFetchFailed, e.joined()}
}

func (e *FetchError) joined() error {
	var errs []error
	for _, c := range Categories {
		if err, ok := e.Errs[c]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Workload aggregates the requested horizon.
func (s *Service) Workload(ctx context.Context, req Request) (*Report, error) {
	if req.CompanyID == "" {
		return nil, generic.ErrCompanyRequired
	}
	if req.Weeks < 1 {
		return nil, generic.ErrInvalidWeekCount
	}

	settings, err := s.store.GetCompanySettings(ctx, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company settings: %w", err)
	}
	if settings == nil {
		return nil, fmt.Errorf("%w: %s", generic.ErrCompanyNotFound, req.CompanyID)
	}

	members, err := s.store.ListTeamMembers(ctx, req.CompanyID, req.MemberIDs)
	if err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}

	memberIDs := req.MemberIDs
	if len(memberIDs) == 0 {
		memberIDs = make([]string, len(members))
		for i, m := range members {
			memberIDs[i] = m.ID
		}
	}
	memberIDs = slices.Compact(slices.Sorted(slices.Values(memberIDs)))

	anchor := req.Anchor
	if anchor.IsZero() {
		anchor = generic.Today()
	}
	weeks, err := GenerateWeekStartDates(anchor, req.Weeks, settings.StartOfWorkWeek)
	if err != nil {
		return nil, err
	}

	fetchCtx := ctx
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}
	raw := s.fetcher.Fetch(fetchCtx, req.CompanyID, memberIDs, weeks)

	if len(raw.Errs) > 0 && s.opts.Strict {
		return nil, &FetchError{Errs: raw.Errs}
	}

	data := NewProcessor(settings.StartOfWorkWeek).Process(Input{
		MemberIDs: memberIDs,
		Weeks:     weeks,
		Members:   members,
		Raw:       raw,
	})

	s.logger.Debug().
		Str("company_id", req.CompanyID).
		Int("members", len(memberIDs)).
		Int("weeks", len(weeks)).
		Int("failed_categories", len(raw.Errs)).
		Msg("workload processed")

	return &Report{
		CompanyID: req.CompanyID,
		WeekStart: settings.StartOfWorkWeek,
		Weeks:     weeks,
		MemberIDs: memberIDs,
		Members:   members,
		Data:      data,
		Summaries: Summarize(data, members, len(weeks)),
		Failures:  raw.Errs,
	}, nil
}

// =============================================================================
// DUPLICATE CLEANUP
// =============================================================================

type CleanupResult struct {
	CompanyID string
	Scanned   int
	Groups    int
	Deleted   int
}

// CleanupDuplicates deletes every allocation that duplicates a newer one.
func (s *Service) CleanupDuplicates(ctx context.Context, companyID string) (CleanupResult, error) {
	result := CleanupResult{CompanyID: companyID}
	if companyID == "" {
		return result, generic.ErrCompanyRequired
	}

	rows, err := s.store.ListCompanyAllocations(ctx, companyID)
	if err != nil {
		return result, fmt.Errorf("list allocations: %w", err)
	}
	result.Scanned = len(rows)

	dups, groups := FindDuplicateAllocations(rows)
	result.Groups = groups
	if len(dups) == 0 {
		return result, nil
	}

	deleted, err := s.store.DeleteAllocations(ctx, companyID, IDs(dups))
	if err != nil {
		return result, fmt.Errorf("delete duplicate allocations: %w", err)
	}
	result.Deleted = deleted

	s.logger.Info().
		Str("company_id", companyID).
		Int("scanned", result.Scanned).
		Int("groups", groups).
		Int("deleted", deleted).
		Msg("duplicate allocations removed")

	return result, nil
}

// Companies lists every tenant, for jobs that sweep all of them.
func (s *Service) Companies(ctx context.Context) ([]CompanySettings, error) {
	return s.store.ListCompanies(ctx)
}
