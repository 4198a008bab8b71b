/*
errors.go - Centralized error types for the staffing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors - Malformed dates, week counts, settings
  2. Lookup errors - Missing companies or members
  3. Conflict errors - Writes that would touch another company's row
  4. Fetch errors - Backing store reads that failed

USAGE:
  if errors.Is(err, generic.ErrCompanyNotFound) {
      // 404
  }

SEE ALSO:
  - workload/fetcher.go: Produces per-category fetch errors
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidWeekCount is returned when fewer than one week is requested.
	ErrInvalidWeekCount = errors.New("week count must be at least 1")

	// ErrInvalidDate is returned when a date is not in yyyy-MM-dd form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidSetting is returned for unusable company settings values.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrInvalidHours is returned when a written record carries negative hours.
	ErrInvalidHours = errors.New("hours must not be negative")

	// ErrCompanyRequired is returned when an operation has no company scope.
	ErrCompanyRequired = errors.New("company id is required")

	// ErrCompanyNotFound is returned when a referenced company doesn't exist.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrMemberNotFound is returned when a referenced team member doesn't exist.
	ErrMemberNotFound = errors.New("team member not found")

	// ErrIDConflict is returned when a write reuses an id owned by another company.
	ErrIDConflict = errors.New("id belongs to another company")

	// ErrFetchFailed is returned in strict mode when any source category failed.
	ErrFetchFailed = errors.New("workload fetch failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CategoryError records which source category failed during a fetch.
type CategoryError struct {
	Category string
	Err      error
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Category, e.Err)
}

func (e *CategoryError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidWeekCount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidSetting) ||
		errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrCompanyRequired)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrMemberNotFound)
}

// IsConflict returns true if the error is a cross-company id collision.
func IsConflict(err error) bool {
	return errors.Is(err, ErrIDConflict)
}
