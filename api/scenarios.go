/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a company, members and
	the four kinds of source records that feed the workload breakdown.

AVAILABLE SCENARIOS:

	single-week:     One member, one week, one record per category (40h total)
	sunday-office:   Sunday week start, two offices, location-scoped holidays
	duplicate-rows:  Re-saved allocations that the cleanup job collapses
	team-month:      Four members over the current month with mixed capacity

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create company with its start of work week
 3. Create offices and members
 4. Add allocations, leave and holidays

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "single-week"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to the loaders map

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Workload and record handlers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/workload"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-week",
		Name:        "Single Week",
		Description: "One member, week of 2024-01-01: 20h project, 8h annual leave, 8h holiday, 4h sick",
		CompanyID:   "acme",
	},
	{
		ID:          "sunday-office",
		Name:        "Sunday Office",
		Description: "Weeks start on Sunday; a holiday for one office only and a company-wide two-day closure",
		CompanyID:   "desert",
	},
	{
		ID:          "duplicate-rows",
		Name:        "Duplicate Allocations",
		Description: "Allocations saved twice for the same member, project and week; run cleanup to keep the newest",
		CompanyID:   "dupes",
	},
	{
		ID:          "team-month",
		Name:        "Team Month",
		Description: "Four members with different capacities booked across the next four weeks",
		CompanyID:   "studio",
	},
}

type scenarioLoader func(h *Handler, ctx context.Context) error

var loaders = map[string]scenarioLoader{
	"single-week":    (*Handler).loadSingleWeekScenario,
	"sunday-office":  (*Handler).loadSundayOfficeScenario,
	"duplicate-rows": (*Handler).loadDuplicateRowsScenario,
	"team-month":     (*Handler).loadTeamMonthScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := loaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	h.currentScenario = ""
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := load(h, ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.logger.Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSingleWeekScenario(ctx context.Context) error {
	b := h.seed(ctx, workload.CompanySettings{CompanyID: "acme", Name: "Acme", StartOfWorkWeek: time.Monday})

	b.office(workload.Office{ID: "NYC", Name: "New York"})
	b.member(workload.TeamMember{ID: "m1", Name: "Alice Johnson", LocationID: "NYC", WeeklyCapacity: hours(40)})
	b.allocation(workload.Allocation{ID: "a1", MemberID: "m1", ProjectID: "p1", WeekKey: "2024-01-01", Hours: 20})
	b.annualLeave(workload.AnnualLeave{ID: "al1", MemberID: "m1", Date: generic.MustParseDate("2024-01-02"), Hours: 8})
	b.holiday(workload.OfficeHoliday{ID: "h1", Name: "Company Day", Date: generic.MustParseDate("2024-01-03")})
	b.otherLeave(workload.OtherLeave{ID: "ol1", MemberID: "m1", WeekKey: "2024-01-01", Hours: 4, LeaveType: "sick"})

	return b.err
}

func (h *Handler) loadSundayOfficeScenario(ctx context.Context) error {
	b := h.seed(ctx, workload.CompanySettings{CompanyID: "desert", Name: "Desert Co", StartOfWorkWeek: time.Sunday})

	week := generic.Today().StartOfWeek(time.Sunday)
	key := week.String()
	next := week.AddWeeks(1)

	b.office(workload.Office{ID: "DXB", Name: "Dubai"})
	b.office(workload.Office{ID: "LON", Name: "London"})
	b.member(workload.TeamMember{ID: "omar", Name: "Omar Haddad", LocationID: "DXB", WeeklyCapacity: hours(40)})
	b.member(workload.TeamMember{ID: "emma", Name: "Emma Clarke", LocationID: "LON", WeeklyCapacity: hours(35)})

	b.allocation(workload.Allocation{ID: "d-a1", MemberID: "omar", ProjectID: "tower", WeekKey: key, Hours: 24})
	b.allocation(workload.Allocation{ID: "d-a2", MemberID: "emma", ProjectID: "tower", WeekKey: key, Hours: 28})
	b.allocation(workload.Allocation{ID: "d-a3", MemberID: "emma", ProjectID: "bridge", WeekKey: next.String(), Hours: 30})

	// Tuesday of the current week, Dubai office only.
	b.holiday(workload.OfficeHoliday{ID: "d-h1", Name: "National Day", Date: week.AddDays(2), LocationID: "DXB"})

	// Monday and Tuesday of next week, everyone.
	end := next.AddDays(2)
	b.holiday(workload.OfficeHoliday{ID: "d-h2", Name: "Offsite", Date: next.AddDays(1), EndDate: &end})

	// Thursday annual leave lands in the Sunday-started week.
	b.annualLeave(workload.AnnualLeave{ID: "d-al1", MemberID: "emma", Date: week.AddDays(4), Hours: 7})

	return b.err
}

func (h *Handler) loadDuplicateRowsScenario(ctx context.Context) error {
	b := h.seed(ctx, workload.CompanySettings{CompanyID: "dupes", Name: "Dupes Inc", StartOfWorkWeek: time.Monday})

	key := generic.Today().StartOfWeek(time.Monday).String()
	base := time.Now().UTC().Add(-48 * time.Hour)

	b.member(workload.TeamMember{ID: "sam", Name: "Sam Lee", WeeklyCapacity: hours(40)})
	for i, hrs := range []float64{10, 16, 12} {
		stamp := base.Add(time.Duration(i) * time.Hour)
		b.allocation(workload.Allocation{
			ID:        fmt.Sprintf("dup-%d", i+1),
			MemberID:  "sam",
			ProjectID: "atlas",
			WeekKey:   key,
			Hours:     hrs,
			CreatedAt: stamp,
			UpdatedAt: stamp,
		})
	}
	b.allocation(workload.Allocation{ID: "solo", MemberID: "sam", ProjectID: "zephyr", WeekKey: key, Hours: 8})

	return b.err
}

func (h *Handler) loadTeamMonthScenario(ctx context.Context) error {
	b := h.seed(ctx, workload.CompanySettings{CompanyID: "studio", Name: "Studio", StartOfWorkWeek: time.Monday})

	weeks, err := workload.GenerateWeekStartDates(generic.Today(), 4, time.Monday)
	if err != nil {
		return err
	}

	b.office(workload.Office{ID: "BER", Name: "Berlin"})
	b.member(workload.TeamMember{ID: "ana", Name: "Ana Silva", LocationID: "BER", WeeklyCapacity: hours(40)})
	b.member(workload.TeamMember{ID: "ben", Name: "Ben Okafor", LocationID: "BER", WeeklyCapacity: hours(30)})
	b.member(workload.TeamMember{ID: "cho", Name: "Cho Min", LocationID: "BER"})
	b.member(workload.TeamMember{ID: "dev", Name: "Dev Patel", LocationID: "BER", WeeklyCapacity: hours(20)})

	plan := map[string][]float64{
		"ana": {32, 36, 40, 20},
		"ben": {30, 24, 12, 0},
		"cho": {16, 16, 16, 16},
		"dev": {20, 20, 10, 10},
	}
	for member, booked := range plan {
		for i, hrs := range booked {
			if hrs == 0 {
				continue
			}
			b.allocation(workload.Allocation{
				ID:        fmt.Sprintf("%s-w%d", member, i+1),
				MemberID:  member,
				ProjectID: "launch",
				WeekKey:   weeks[i].Key,
				Hours:     hrs,
			})
		}
	}

	b.annualLeave(workload.AnnualLeave{ID: "ana-al", MemberID: "ana", Date: weeks[3].Date.AddDays(2), Hours: 8})
	b.otherLeave(workload.OtherLeave{ID: "ben-ol", MemberID: "ben", WeekKey: weeks[3].Key, Hours: 12, LeaveType: "training"})
	b.holiday(workload.OfficeHoliday{ID: "ber-h", Name: "Berlin Holiday", Date: weeks[2].Date.AddDays(4), LocationID: "BER"})

	return b.err
}

// =============================================================================
// HELPERS
// =============================================================================

// seeder writes scenario rows for one company and keeps the first error.
type seeder struct {
	ctx       context.Context
	h         *Handler
	companyID string
	err       error
}

func (h *Handler) seed(ctx context.Context, c workload.CompanySettings) *seeder {
	b := &seeder{ctx: ctx, h: h, companyID: c.CompanyID}
	b.do(func() error { return h.Store.SaveCompany(ctx, c) })
	return b
}

func (b *seeder) do(fn func() error) {
	if b.err == nil {
		b.err = fn()
	}
}

func (b *seeder) office(o workload.Office) {
	o.CompanyID = b.companyID
	b.do(func() error { return b.h.Store.SaveOffice(b.ctx, o) })
}

func (b *seeder) member(m workload.TeamMember) {
	m.CompanyID = b.companyID
	b.do(func() error { return b.h.Store.SaveTeamMember(b.ctx, m) })
}

func (b *seeder) allocation(a workload.Allocation) {
	a.CompanyID = b.companyID
	b.do(func() error { return b.h.Store.SaveAllocation(b.ctx, a) })
}

func (b *seeder) annualLeave(l workload.AnnualLeave) {
	l.CompanyID = b.companyID
	b.do(func() error { return b.h.Store.SaveAnnualLeave(b.ctx, l) })
}

func (b *seeder) holiday(hol workload.OfficeHoliday) {
	hol.CompanyID = b.companyID
	b.do(func() error { return b.h.Store.SaveOfficeHoliday(b.ctx, hol) })
}

func (b *seeder) otherLeave(l workload.OtherLeave) {
	l.CompanyID = b.companyID
	b.do(func() error { return b.h.Store.SaveOtherLeave(b.ctx, l) })
}

func hours(f float64) *float64 {
	return &f
}
