/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  workload types from the external contract. Field names follow the
  backing table columns (week_start_date, resource_id, ...).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/workload"
)

// =============================================================================
// COMPANIES
// =============================================================================

type CompanyDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartOfWorkWeek string `json:"start_of_work_week"`
}

type CreateCompanyRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartOfWorkWeek string `json:"start_of_work_week"`
}

type UpdateSettingsRequest struct {
	Name            string `json:"name"`
	StartOfWorkWeek string `json:"start_of_work_week"`
}

type OfficeDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateOfficeRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// MEMBERS
// =============================================================================

type MemberDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	LocationID     string   `json:"location_id,omitempty"`
	WeeklyCapacity *float64 `json:"weekly_capacity"`
}

type CreateMemberRequest struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	LocationID     string   `json:"location_id"`
	WeeklyCapacity *float64 `json:"weekly_capacity"`
}

// =============================================================================
// SOURCE RECORDS
// =============================================================================

type AllocationDTO struct {
	ID            string  `json:"id"`
	ResourceID    string  `json:"resource_id"`
	ProjectID     string  `json:"project_id"`
	WeekStartDate string  `json:"week_start_date"`
	Hours         float64 `json:"hours"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

type CreateAllocationRequest struct {
	ID            string   `json:"id"`
	ResourceID    string   `json:"resource_id"`
	ProjectID     string   `json:"project_id"`
	WeekStartDate string   `json:"week_start_date"`
	Hours         *float64 `json:"hours"`
}

type CreateAnnualLeaveRequest struct {
	ID       string   `json:"id"`
	MemberID string   `json:"member_id"`
	Date     string   `json:"date"`
	Hours    *float64 `json:"hours"`
}

type HolidayDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	EndDate    *string `json:"end_date"`
	LocationID *string `json:"location_id"`
}

type CreateHolidayRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	EndDate    *string `json:"end_date"`
	LocationID *string `json:"location_id"`
}

type CreateOtherLeaveRequest struct {
	ID            string   `json:"id"`
	MemberID      string   `json:"member_id"`
	WeekStartDate string   `json:"week_start_date"`
	Hours         *float64 `json:"hours"`
	LeaveType     string   `json:"leave_type"`
}

// =============================================================================
// WORKLOAD
// =============================================================================

// BreakdownDTO mirrors workload.WeeklyBreakdown.
type BreakdownDTO struct {
	ProjectHours   float64 `json:"projectHours"`
	AnnualLeave    float64 `json:"annualLeave"`
	OfficeHolidays float64 `json:"officeHolidays"`
	OtherLeave     float64 `json:"otherLeave"`
	Total          float64 `json:"total"`
}

type MemberSummaryDTO struct {
	MemberID    string  `json:"member_id"`
	Capacity    float64 `json:"capacity"`
	Booked      float64 `json:"booked"`
	Available   float64 `json:"available"`
	Utilization float64 `json:"utilization"`
}

type WeekDTO struct {
	Key  string `json:"key"`
	Date string `json:"date"`
}

// WorkloadResponse is the processed structure: member id -> week key -> breakdown.
type WorkloadResponse struct {
	CompanyID       string                             `json:"company_id"`
	StartOfWorkWeek string                             `json:"start_of_work_week"`
	Weeks           []WeekDTO                          `json:"weeks"`
	Members         []MemberDTO                        `json:"members"`
	Data            map[string]map[string]BreakdownDTO `json:"data"`
	Summaries       []MemberSummaryDTO                 `json:"summaries"`
	Failures        map[string]string                  `json:"failures,omitempty"`
}

type CleanupResponse struct {
	CompanyID string `json:"company_id"`
	Scanned   int    `json:"scanned"`
	Groups    int    `json:"groups"`
	Deleted   int    `json:"deleted"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CompanyID   string `json:"company_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toCompanyDTO(c workload.CompanySettings) CompanyDTO {
	return CompanyDTO{ID: c.CompanyID, Name: c.Name, StartOfWorkWeek: generic.WeekdayName(c.StartOfWorkWeek)}
}

func toMemberDTO(m workload.TeamMember) MemberDTO {
	return MemberDTO{ID: m.ID, Name: m.Name, LocationID: m.LocationID, WeeklyCapacity: m.WeeklyCapacity}
}

func toAllocationDTO(a workload.Allocation) AllocationDTO {
	dto := AllocationDTO{
		ID:            a.ID,
		ResourceID:    a.MemberID,
		ProjectID:     a.ProjectID,
		WeekStartDate: a.WeekKey,
		Hours:         a.Hours,
	}
	if !a.UpdatedAt.IsZero() {
		dto.UpdatedAt = a.UpdatedAt.Format("2006-01-02T15:04:05.000Z07:00")
	}
	return dto
}

func toHolidayDTO(h workload.OfficeHoliday) HolidayDTO {
	dto := HolidayDTO{ID: h.ID, Name: h.Name, Date: h.Date.String()}
	if h.EndDate != nil {
		dto.EndDate = strPtr(h.EndDate.String())
	}
	if h.LocationID != "" {
		dto.LocationID = strPtr(h.LocationID)
	}
	return dto
}

func toBreakdownDTO(b *workload.WeeklyBreakdown) BreakdownDTO {
	return BreakdownDTO{
		ProjectHours:   b.ProjectHours.Float64(),
		AnnualLeave:    b.AnnualLeave.Float64(),
		OfficeHolidays: b.OfficeHolidays.Float64(),
		OtherLeave:     b.OtherLeave.Float64(),
		Total:          b.Total.Float64(),
	}
}

func toWorkloadResponse(rep *workload.Report) WorkloadResponse {
	resp := WorkloadResponse{
		CompanyID:       rep.CompanyID,
		StartOfWorkWeek: generic.WeekdayName(rep.WeekStart),
		Weeks:           make([]WeekDTO, len(rep.Weeks)),
		Members:         make([]MemberDTO, len(rep.Members)),
		Data:            make(map[string]map[string]BreakdownDTO, len(rep.Data)),
		Summaries:       make([]MemberSummaryDTO, len(rep.Summaries)),
	}

	for i, w := range rep.Weeks {
		resp.Weeks[i] = WeekDTO{Key: w.Key, Date: w.Date.String()}
	}
	for i, m := range rep.Members {
		resp.Members[i] = toMemberDTO(m)
	}
	for memberID, weeks := range rep.Data {
		cells := make(map[string]BreakdownDTO, len(weeks))
		for key, cell := range weeks {
			cells[key] = toBreakdownDTO(cell)
		}
		resp.Data[memberID] = cells
	}
	for i, s := range rep.Summaries {
		utilization, _ := s.Utilization.Float64()
		resp.Summaries[i] = MemberSummaryDTO{
			MemberID:    s.MemberID,
			Capacity:    s.Capacity.Float64(),
			Booked:      s.Booked.Float64(),
			Available:   s.Available.Float64(),
			Utilization: utilization,
		}
	}
	if len(rep.Failures) > 0 {
		resp.Failures = make(map[string]string, len(rep.Failures))
		for _, c := range failedCategories(rep.Failures) {
			resp.Failures[c] = failureMessage
		}
	}
	return resp
}

// failureMessage replaces backend error text in responses. Details are logged.
const failureMessage = "source unavailable"

// failedCategories returns the failed category names in fetch order.
func failedCategories(errs map[workload.Category]error) []string {
	var names []string
	for _, c := range workload.Categories {
		if _, ok := errs[c]; ok {
			names = append(names, string(c))
		}
	}
	return names
}

func strPtr(s string) *string {
	return &s
}
