/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements workload.Store (Source, Directory, Cleaner) plus the CRUD the
  API needs to populate tenants, members, allocations, leave and holidays.
  In production the same queries run against PostgreSQL with minor dialect
  differences.

INTERFACES IMPLEMENTED:
  workload.Source:    The four aggregation reads
  workload.Directory: Company settings and team members
  workload.Cleaner:   Duplicate-allocation cleanup

KEY TABLES:
  companies:       Tenants and their start_of_work_week
  offices:         Locations referenced by members and holidays
  team_members:    Members with location and weekly capacity
  allocations:     Project hours per member per week (week_start_date)
  annual_leaves:   Day-grained leave
  office_holidays: Date ranges, optionally per location
  other_leaves:    Week-grained leave with a leave_type tag

QUERY PREDICATES:
  allocations      company_id = ?, resource_id IN (...), week_start_date IN (...)
  annual_leaves    company_id = ?, member_id IN (...), date BETWEEN ? AND ?
  office_holidays  company_id = ?, date BETWEEN ? AND ?
  other_leaves     company_id = ?, member_id IN (...), week_start_date IN (...)

DATES:
  Calendar days are stored as TEXT yyyy-MM-dd so BETWEEN and IN compare
  lexically. Audit timestamps are RFC3339Nano.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are limited to
  one connection because every go-sqlite3 connection opens its own
  in-memory database.

USAGE:
  store, err := sqlite.New("./data/staffing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - workload/fetcher.go: Source consumer
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/workload"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ workload.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_of_work_week TEXT NOT NULL DEFAULT 'monday',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS offices (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_offices_company
		ON offices(company_id);

	CREATE TABLE IF NOT EXISTS team_members (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		location_id TEXT,
		weekly_capacity REAL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_team_members_company
		ON team_members(company_id);

	-- No uniqueness on (resource, project, week): duplicates are removed
	-- by the cleanup job, newest row wins.
	CREATE TABLE IF NOT EXISTS allocations (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		project_id TEXT NOT NULL DEFAULT '',
		week_start_date TEXT NOT NULL,
		hours REAL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_company_week
		ON allocations(company_id, week_start_date);
	CREATE INDEX IF NOT EXISTS idx_allocations_slot
		ON allocations(company_id, resource_id, project_id, week_start_date);

	CREATE TABLE IF NOT EXISTS annual_leaves (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hours REAL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_annual_leaves_company_date
		ON annual_leaves(company_id, date);

	CREATE TABLE IF NOT EXISTS office_holidays (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		end_date TEXT,
		location_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_office_holidays_company_date
		ON office_holidays(company_id, date);

	CREATE TABLE IF NOT EXISTS other_leaves (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		week_start_date TEXT NOT NULL,
		hours REAL,
		leave_type TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_other_leaves_company_week
		ON other_leaves(company_id, week_start_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COMPANY STORE (workload.Directory)
// =============================================================================

// SaveCompany inserts or updates a company and its settings.
func (s *Store) SaveCompany(ctx context.Context, c workload.CompanySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO companies (id, name, start_of_work_week, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_of_work_week = excluded.start_of_work_week
	`

	_, err := s.db.ExecContext(ctx, query,
		c.CompanyID, c.Name, generic.WeekdayName(c.StartOfWorkWeek), now(),
	)
	return err
}

// GetCompanySettings retrieves a company by ID. Returns nil, nil if missing.
func (s *Store) GetCompanySettings(ctx context.Context, companyID string) (*workload.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		c       workload.CompanySettings
		weekday string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, start_of_work_week FROM companies WHERE id = ?",
		companyID,
	).Scan(&c.CompanyID, &c.Name, &weekday)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.StartOfWorkWeek, err = generic.ParseWeekday(weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to read company %s: %w", c.CompanyID, err)
	}
	return &c, nil
}

// ListCompanies returns all companies ordered by id.
func (s *Store) ListCompanies(ctx context.Context) ([]workload.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, start_of_work_week FROM companies ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []workload.CompanySettings
	for rows.Next() {
		var (
			c       workload.CompanySettings
			weekday string
		)
		if err := rows.Scan(&c.CompanyID, &c.Name, &weekday); err != nil {
			return nil, err
		}
		if c.StartOfWorkWeek, err = generic.ParseWeekday(weekday); err != nil {
			return nil, fmt.Errorf("failed to scan company %s: %w", c.CompanyID, err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// =============================================================================
// OFFICE STORE
// =============================================================================

// SaveOffice inserts or updates an office.
func (s *Store) SaveOffice(ctx context.Context, o workload.Office) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO offices (id, company_id, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name
		WHERE offices.company_id = excluded.company_id
	`
	return s.upsert(ctx, "office", query, o.ID, o.CompanyID, o.Name, now())
}

// ListOffices returns a company's offices ordered by name.
func (s *Store) ListOffices(ctx context.Context, companyID string) ([]workload.Office, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, company_id, name FROM offices WHERE company_id = ? ORDER BY name",
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offices []workload.Office
	for rows.Next() {
		var o workload.Office
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.Name); err != nil {
			return nil, err
		}
		offices = append(offices, o)
	}
	return offices, rows.Err()
}

// =============================================================================
// TEAM MEMBER STORE
// =============================================================================

// SaveTeamMember inserts or updates a team member.
func (s *Store) SaveTeamMember(ctx context.Context, m workload.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO team_members (id, company_id, name, location_id, weekly_capacity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location_id = excluded.location_id,
			weekly_capacity = excluded.weekly_capacity
		WHERE team_members.company_id = excluded.company_id
	`

	return s.upsert(ctx, "team member", query,
		m.ID, m.CompanyID, m.Name, nullString(m.LocationID), nullFloat(m.WeeklyCapacity), now(),
	)
}

// ListTeamMembers returns a company's members, all of them when memberIDs is empty.
func (s *Store) ListTeamMembers(ctx context.Context, companyID string, memberIDs []string) ([]workload.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, company_id, name, location_id, weekly_capacity FROM team_members WHERE company_id = ?"
	args := []any{companyID}
	if len(memberIDs) > 0 {
		query += " AND id IN (" + placeholders(len(memberIDs)) + ")"
		args = appendStrings(args, memberIDs)
	}
	query += " ORDER BY name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []workload.TeamMember
	for rows.Next() {
		var (
			m        workload.TeamMember
			location sql.NullString
			capacity sql.NullFloat64
		)
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Name, &location, &capacity); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		m.LocationID = location.String
		if capacity.Valid {
			c := capacity.Float64
			m.WeeklyCapacity = &c
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// =============================================================================
// ALLOCATION STORE (workload.Source, workload.Cleaner)
// =============================================================================

// SaveAllocation inserts or updates an allocation. Zero CreatedAt and
// UpdatedAt default to now.
func (s *Store) SaveAllocation(ctx context.Context, a workload.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Hours < 0 {
		return generic.ErrInvalidHours
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO allocations
		(id, company_id, resource_id, project_id, week_start_date, hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hours = excluded.hours,
			project_id = excluded.project_id,
			week_start_date = excluded.week_start_date,
			updated_at = excluded.updated_at
		WHERE allocations.company_id = excluded.company_id
	`

	return s.upsert(ctx, "allocation", query,
		a.ID, a.CompanyID, a.MemberID, a.ProjectID, a.WeekKey, a.Hours,
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
		a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
}

// ListAllocations returns allocations for members in the given weeks.
func (s *Store) ListAllocations(ctx context.Context, companyID string, memberIDs, weekKeys []string) ([]workload.Allocation, error) {
	if len(memberIDs) == 0 || len(weekKeys) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := allocationColumns + `
		WHERE company_id = ?
		  AND resource_id IN (` + placeholders(len(memberIDs)) + `)
		  AND week_start_date IN (` + placeholders(len(weekKeys)) + `)
		ORDER BY week_start_date, resource_id, id
	`
	args := appendStrings(appendStrings([]any{companyID}, memberIDs), weekKeys)
	return s.queryAllocations(ctx, query, args...)
}

// ListCompanyAllocations returns every allocation of a company.
func (s *Store) ListCompanyAllocations(ctx context.Context, companyID string) ([]workload.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := allocationColumns + " WHERE company_id = ? ORDER BY id"
	return s.queryAllocations(ctx, query, companyID)
}

// DeleteAllocations removes allocations by id in a single transaction.
func (s *Store) DeleteAllocations(ctx context.Context, companyID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := "DELETE FROM allocations WHERE company_id = ? AND id IN (" + placeholders(len(ids)) + ")"
	res, err := sqlTx.ExecContext(ctx, query, appendStrings([]any{companyID}, ids)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete allocations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

const allocationColumns = `
		SELECT id, company_id, resource_id, project_id, week_start_date, hours, created_at, updated_at
		FROM allocations`

func (s *Store) queryAllocations(ctx context.Context, query string, args ...any) ([]workload.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var allocations []workload.Allocation
	for rows.Next() {
		var (
			a                    workload.Allocation
			hours                sql.NullFloat64
			createdAt, updatedAt string
		)
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.MemberID, &a.ProjectID, &a.WeekKey, &hours, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		a.Hours = hours.Float64
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan allocation %s created_at: %w", a.ID, err)
		}
		if a.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan allocation %s updated_at: %w", a.ID, err)
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// =============================================================================
// ANNUAL LEAVE STORE (workload.Source)
// =============================================================================

// SaveAnnualLeave inserts or updates a day of annual leave.
func (s *Store) SaveAnnualLeave(ctx context.Context, l workload.AnnualLeave) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.Hours < 0 {
		return generic.ErrInvalidHours
	}

	query := `
		INSERT INTO annual_leaves (id, company_id, member_id, date, hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			hours = excluded.hours
		WHERE annual_leaves.company_id = excluded.company_id
	`
	return s.upsert(ctx, "annual leave", query, l.ID, l.CompanyID, l.MemberID, l.Date.String(), l.Hours, now())
}

// ListAnnualLeave returns leave days in [from, to] for the given members.
func (s *Store) ListAnnualLeave(ctx context.Context, companyID string, memberIDs []string, from, to generic.TimePoint) ([]workload.AnnualLeave, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, member_id, date, hours
		FROM annual_leaves
		WHERE company_id = ?
		  AND member_id IN (` + placeholders(len(memberIDs)) + `)
		  AND date >= ? AND date <= ?
		ORDER BY date, member_id, id
	`
	args := append(appendStrings([]any{companyID}, memberIDs), from.String(), to.String())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query annual leave: %w", err)
	}
	defer rows.Close()

	var leaves []workload.AnnualLeave
	for rows.Next() {
		var (
			l     workload.AnnualLeave
			date  string
			hours sql.NullFloat64
		)
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.MemberID, &date, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan annual leave: %w", err)
		}
		if l.Date, err = generic.ParseDate(date); err != nil {
			return nil, fmt.Errorf("failed to scan annual leave %s: %w", l.ID, err)
		}
		l.Hours = hours.Float64
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

// =============================================================================
// OFFICE HOLIDAY STORE (workload.Source)
// =============================================================================

// SaveOfficeHoliday inserts or updates a holiday.
func (s *Store) SaveOfficeHoliday(ctx context.Context, h workload.OfficeHoliday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var endDate sql.NullString
	if h.EndDate != nil {
		endDate = nullString(h.EndDate.String())
	}

	query := `
		INSERT INTO office_holidays (id, company_id, name, date, end_date, location_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			end_date = excluded.end_date,
			location_id = excluded.location_id
		WHERE office_holidays.company_id = excluded.company_id
	`
	return s.upsert(ctx, "office holiday", query,
		h.ID, h.CompanyID, h.Name, h.Date.String(), endDate, nullString(h.LocationID), now(),
	)
}

// DeleteOfficeHoliday deletes a holiday by ID.
func (s *Store) DeleteOfficeHoliday(ctx context.Context, companyID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM office_holidays WHERE company_id = ? AND id = ?", companyID, id)
	return err
}

// ListOfficeHolidays returns holidays whose start date is in [from, to].
func (s *Store) ListOfficeHolidays(ctx context.Context, companyID string, from, to generic.TimePoint) ([]workload.OfficeHoliday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, name, date, end_date, location_id
		FROM office_holidays
		WHERE company_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id
	`
	return s.queryHolidays(ctx, query, companyID, from.String(), to.String())
}

// ListAllOfficeHolidays returns every holiday of a company (for admin UI).
func (s *Store) ListAllOfficeHolidays(ctx context.Context, companyID string) ([]workload.OfficeHoliday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, name, date, end_date, location_id
		FROM office_holidays
		WHERE company_id = ?
		ORDER BY date, id
	`
	return s.queryHolidays(ctx, query, companyID)
}

func (s *Store) queryHolidays(ctx context.Context, query string, args ...any) ([]workload.OfficeHoliday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query office holidays: %w", err)
	}
	defer rows.Close()

	var holidays []workload.OfficeHoliday
	for rows.Next() {
		var (
			h                 workload.OfficeHoliday
			date              string
			endDate, location sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.Name, &date, &endDate, &location); err != nil {
			return nil, fmt.Errorf("failed to scan office holiday: %w", err)
		}
		if h.Date, err = generic.ParseDate(date); err != nil {
			return nil, fmt.Errorf("failed to scan office holiday %s: %w", h.ID, err)
		}
		if endDate.Valid {
			end, err := generic.ParseDate(endDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to scan office holiday %s end_date: %w", h.ID, err)
			}
			h.EndDate = &end
		}
		h.LocationID = location.String
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// OTHER LEAVE STORE (workload.Source)
// =============================================================================

// SaveOtherLeave inserts or updates a week of other leave.
func (s *Store) SaveOtherLeave(ctx context.Context, l workload.OtherLeave) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.Hours < 0 {
		return generic.ErrInvalidHours
	}

	query := `
		INSERT INTO other_leaves (id, company_id, member_id, week_start_date, hours, leave_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			week_start_date = excluded.week_start_date,
			hours = excluded.hours,
			leave_type = excluded.leave_type
		WHERE other_leaves.company_id = excluded.company_id
	`
	return s.upsert(ctx, "other leave", query, l.ID, l.CompanyID, l.MemberID, l.WeekKey, l.Hours, l.LeaveType, now())
}

// ListOtherLeave returns other leave for members in the given weeks.
func (s *Store) ListOtherLeave(ctx context.Context, companyID string, memberIDs, weekKeys []string) ([]workload.OtherLeave, error) {
	if len(memberIDs) == 0 || len(weekKeys) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, member_id, week_start_date, hours, leave_type
		FROM other_leaves
		WHERE company_id = ?
		  AND member_id IN (` + placeholders(len(memberIDs)) + `)
		  AND week_start_date IN (` + placeholders(len(weekKeys)) + `)
		ORDER BY week_start_date, member_id, id
	`
	args := appendStrings(appendStrings([]any{companyID}, memberIDs), weekKeys)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query other leave: %w", err)
	}
	defer rows.Close()

	var leaves []workload.OtherLeave
	for rows.Next() {
		var (
			l     workload.OtherLeave
			hours sql.NullFloat64
		)
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.MemberID, &l.WeekKey, &hours, &l.LeaveType); err != nil {
			return nil, fmt.Errorf("failed to scan other leave: %w", err)
		}
		l.Hours = hours.Float64
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"other_leaves", "office_holidays", "annual_leaves", "allocations", "team_members", "offices", "companies"}
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("failed to reset %s: %w", t, err)
		}
	}
	return nil
}

// Helper functions

// upsert runs an INSERT ... ON CONFLICT DO UPDATE ... WHERE company_id matches.
// A conflicting id owned by another company updates nothing.
func (s *Store) upsert(ctx context.Context, kind, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("save %s %v: %w", kind, args[0], generic.ErrIDConflict)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func appendStrings(args []any, values []string) []any {
	for _, v := range values {
		args = append(args, v)
	}
	return args
}
