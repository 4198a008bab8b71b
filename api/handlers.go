/*
handlers.go - HTTP API handlers for the staffing engine

PURPOSE:
  Exposes the workload engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the store and workload.Service.

ENDPOINTS:
  Companies:
    GET    /api/companies                          List companies
    POST   /api/companies                          Create company
    GET    /api/companies/{companyID}/settings     Get settings
    PUT    /api/companies/{companyID}/settings     Update settings

  Members / offices:
    GET|POST /api/companies/{companyID}/members
    GET|POST /api/companies/{companyID}/offices

  Source records:
    GET|POST /api/companies/{companyID}/allocations    (?week=YYYY-MM-DD)
    POST     /api/companies/{companyID}/allocations/cleanup
    POST     /api/companies/{companyID}/annual-leave
    GET|POST /api/companies/{companyID}/holidays
    DELETE   /api/companies/{companyID}/holidays/{id}
    POST     /api/companies/{companyID}/other-leave

  Workload:
    GET /api/companies/{companyID}/workload?start=YYYY-MM-DD&weeks=N&members=a,b

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Company or member not found
  - 409: Id already used by another company
  - 502: Strict-mode fetch failure
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/store/sqlite"
	"github.com/warp/staffing-engine/workload"
)

const (
	defaultWeeks = 4
	maxWeeks     = 104
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Service *workload.Service
	logger  zerolog.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and service.
func NewHandler(store *sqlite.Store, service *workload.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:   store,
		Service: service,
		logger:  logger,
	}
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// ListCompanies returns all companies.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}

	dtos := make([]CompanyDTO, len(companies))
	for i, c := range companies {
		dtos[i] = toCompanyDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCompany creates a company with its settings.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	weekStart, err := generic.ParseWeekday(strings.ToLower(req.StartOfWorkWeek))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_of_work_week", err)
		return
	}

	c := workload.CompanySettings{CompanyID: orNewID(req.ID), Name: req.Name, StartOfWorkWeek: weekStart}
	if err := h.Store.SaveCompany(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create company", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCompanyDTO(c))
}

// GetSettings returns a company's settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(*c))
}

// UpdateSettings changes name and/or start of work week.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.StartOfWorkWeek != "" {
		weekStart, err := generic.ParseWeekday(strings.ToLower(req.StartOfWorkWeek))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_of_work_week", err)
			return
		}
		c.StartOfWorkWeek = weekStart
	}

	if err := h.Store.SaveCompany(r.Context(), *c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(*c))
}

// =============================================================================
// OFFICE HANDLERS
// =============================================================================

// ListOffices returns a company's offices.
func (h *Handler) ListOffices(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	offices, err := h.Store.ListOffices(r.Context(), c.CompanyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list offices", err)
		return
	}
	dtos := make([]OfficeDTO, len(offices))
	for i, o := range offices {
		dtos[i] = OfficeDTO{ID: o.ID, Name: o.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateOffice creates an office.
func (h *Handler) CreateOffice(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	var req CreateOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	o := workload.Office{ID: orNewID(req.ID), CompanyID: c.CompanyID, Name: req.Name}
	if err := h.Store.SaveOffice(r.Context(), o); err != nil {
		writeStoreError(w, "Failed to create office", err)
		return
	}
	writeJSON(w, http.StatusCreated, OfficeDTO{ID: o.ID, Name: o.Name})
}

// =============================================================================
// MEMBER HANDLERS
// =============================================================================

// ListMembers returns a company's team members.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	members, err := h.Store.ListTeamMembers(r.Context(), c.CompanyID, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list members", err)
		return
	}
	dtos := make([]MemberDTO, len(members))
	for i, m := range members {
		dtos[i] = toMemberDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMember creates a team member.
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.WeeklyCapacity != nil && *req.WeeklyCapacity < 0 {
		writeError(w, http.StatusBadRequest, "weekly_capacity must not be negative", nil)
		return
	}

	m := workload.TeamMember{
		ID:             orNewID(req.ID),
		CompanyID:      c.CompanyID,
		Name:           req.Name,
		LocationID:     req.LocationID,
		WeeklyCapacity: req.WeeklyCapacity,
	}
	if err := h.Store.SaveTeamMember(r.Context(), m); err != nil {
		writeStoreError(w, "Failed to create member", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberDTO(m))
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// ListAllocations returns allocations, optionally for a single week.
func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	rows, err := h.Store.ListCompanyAllocations(r.Context(), c.CompanyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}

	week := r.URL.Query().Get("week")
	dtos := []AllocationDTO{}
	for _, a := range rows {
		if week != "" && a.WeekKey != week {
			continue
		}
		dtos = append(dtos, toAllocationDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAllocation records project hours for a member-week. The week date is
// normalized to the company's start of work week.
func (h *Handler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	var req CreateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ResourceID == "" {
		writeError(w, http.StatusBadRequest, "resource_id is required", nil)
		return
	}
	week, err := generic.ParseDate(req.WeekStartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week_start_date format (use YYYY-MM-DD)", err)
		return
	}
	if !h.member(w, r, c.CompanyID, req.ResourceID) {
		return
	}

	a := workload.Allocation{
		ID:        orNewID(req.ID),
		CompanyID: c.CompanyID,
		MemberID:  req.ResourceID,
		ProjectID: req.ProjectID,
		WeekKey:   workload.WeekKeyFor(week, c.StartOfWorkWeek),
		Hours:     valueOrZero(req.Hours),
	}
	if err := h.Store.SaveAllocation(r.Context(), a); err != nil {
		writeStoreError(w, "Failed to create allocation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAllocationDTO(a))
}

// CleanupAllocations deletes duplicate allocations, keeping the newest.
func (h *Handler) CleanupAllocations(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	result, err := h.Service.CleanupDuplicates(r.Context(), c.CompanyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clean up allocations", err)
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{
		CompanyID: result.CompanyID,
		Scanned:   result.Scanned,
		Groups:    result.Groups,
		Deleted:   result.Deleted,
	})
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// CreateAnnualLeave records a day of annual leave.
func (h *Handler) CreateAnnualLeave(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	var req CreateAnnualLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.MemberID == "" {
		writeError(w, http.StatusBadRequest, "member_id is required", nil)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if !h.member(w, r, c.CompanyID, req.MemberID) {
		return
	}

	l := workload.AnnualLeave{
		ID:        orNewID(req.ID),
		CompanyID: c.CompanyID,
		MemberID:  req.MemberID,
		Date:      date,
		Hours:     valueOrZero(req.Hours),
	}
	if err := h.Store.SaveAnnualLeave(r.Context(), l); err != nil {
		writeStoreError(w, "Failed to create annual leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": l.ID, "member_id": l.MemberID, "date": l.Date.String(), "hours": l.Hours,
	})
}

// CreateOtherLeave records week-grained leave.
func (h *Handler) CreateOtherLeave(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	var req CreateOtherLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.MemberID == "" {
		writeError(w, http.StatusBadRequest, "member_id is required", nil)
		return
	}
	week, err := generic.ParseDate(req.WeekStartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week_start_date format (use YYYY-MM-DD)", err)
		return
	}
	if !h.member(w, r, c.CompanyID, req.MemberID) {
		return
	}

	l := workload.OtherLeave{
		ID:        orNewID(req.ID),
		CompanyID: c.CompanyID,
		MemberID:  req.MemberID,
		WeekKey:   workload.WeekKeyFor(week, c.StartOfWorkWeek),
		Hours:     valueOrZero(req.Hours),
		LeaveType: req.LeaveType,
	}
	if err := h.Store.SaveOtherLeave(r.Context(), l); err != nil {
		writeStoreError(w, "Failed to create other leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": l.ID, "member_id": l.MemberID, "week_start_date": l.WeekKey, "hours": l.Hours, "leave_type": l.LeaveType,
	})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays for a company.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	holidays, err := h.Store.ListAllOfficeHolidays(r.Context(), c.CompanyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayDTO(hol)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday creates an office holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	hol := workload.OfficeHoliday{
		ID:        orNewID(req.ID),
		CompanyID: c.CompanyID,
		Name:      req.Name,
		Date:      date,
	}
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := generic.ParseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
			return
		}
		if end.Before(date) {
			writeError(w, http.StatusBadRequest, "end_date must not be before date", nil)
			return
		}
		hol.EndDate = &end
	}
	if req.LocationID != nil {
		hol.LocationID = *req.LocationID
	}

	if err := h.Store.SaveOfficeHoliday(r.Context(), hol); err != nil {
		writeStoreError(w, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(hol))
}

// DeleteHoliday deletes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	c, ok := h.company(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteOfficeHoliday(r.Context(), c.CompanyID, chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// WORKLOAD HANDLER
// =============================================================================

// GetWorkload returns the dense per-member-per-week breakdown.
//
// Query parameters:
//   - start:   anchor date (default today), normalized to the start of its week
//   - weeks:   horizon length (default 4, max 104)
//   - members: comma-separated member ids (default all members)
func (h *Handler) GetWorkload(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	q := r.URL.Query()

	req := workload.Request{CompanyID: companyID, Weeks: defaultWeeks}

	if s := q.Get("start"); s != "" {
		anchor, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start format (use YYYY-MM-DD)", err)
			return
		}
		req.Anchor = anchor
	}
	if s := q.Get("weeks"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxWeeks {
			writeError(w, http.StatusBadRequest, "weeks must be between 1 and 104", err)
			return
		}
		req.Weeks = n
	}
	if s := q.Get("members"); s != "" {
		for _, id := range strings.Split(s, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.MemberIDs = append(req.MemberIDs, id)
			}
		}
	}

	rep, err := h.Service.Workload(r.Context(), req)
	if err != nil {
		var fetchErr *workload.FetchError
		if errors.As(err, &fetchErr) {
			h.logger.Error().Err(err).Str("company_id", companyID).Msg("workload fetch failed")
		}
		writeStoreError(w, "Failed to compute workload", err)
		return
	}
	for c, ferr := range rep.Failures {
		h.logger.Warn().Err(ferr).Str("company_id", companyID).Str("category", string(c)).Msg("workload category degraded")
	}
	writeJSON(w, http.StatusOK, toWorkloadResponse(rep))
}

// =============================================================================
// HELPERS
// =============================================================================

// company loads the {companyID} path company or writes 404.
func (h *Handler) company(w http.ResponseWriter, r *http.Request) (*workload.CompanySettings, bool) {
	id := chi.URLParam(r, "companyID")
	c, err := h.Store.GetCompanySettings(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get company", err)
		return nil, false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Company not found", nil)
		return nil, false
	}
	return c, true
}

// member checks that memberID is a team member of companyID or writes 404.
func (h *Handler) member(w http.ResponseWriter, r *http.Request, companyID, memberID string) bool {
	found, err := h.Store.ListTeamMembers(r.Context(), companyID, []string{memberID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get member", err)
		return false
	}
	if len(found) == 0 {
		writeStoreError(w, "Member not found", fmt.Errorf("%w: %s", generic.ErrMemberNotFound, memberID))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps strict fetch failures to 502, generic errors to
// 400/404/409, everything else to 500. Fetch failures only name the failed
// categories. The backend error is logged by the caller.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	var fetchErr *workload.FetchError
	switch {
	case errors.As(err, &fetchErr):
		writeError(w, http.StatusBadGateway, message, errors.New("failed categories: "+strings.Join(failedCategories(fetchErr.Errs), ", ")))
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func valueOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
