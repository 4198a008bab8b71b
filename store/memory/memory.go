// Package memory provides an in-memory workload.Store for tests and dev.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/workload"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	companies   map[string]workload.CompanySettings
	members     map[string][]workload.TeamMember
	allocations []workload.Allocation
	annual      []workload.AnnualLeave
	holidays    []workload.OfficeHoliday
	other       []workload.OtherLeave

	// Fail makes the read of a category return the given error.
	Fail map[workload.Category]error

	// Calls counts reads per category.
	Calls map[workload.Category]int
}

var _ workload.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		companies: make(map[string]workload.CompanySettings),
		members:   make(map[string][]workload.TeamMember),
		Fail:      make(map[workload.Category]error),
		Calls:     make(map[workload.Category]int),
	}
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) AddCompany(c workload.CompanySettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.CompanyID] = c
}

func (m *Memory) AddMember(tm workload.TeamMember) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[tm.CompanyID] = append(m.members[tm.CompanyID], tm)
}

func (m *Memory) AddAllocation(a workload.Allocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations = append(m.allocations, a)
}

func (m *Memory) AddAnnualLeave(l workload.AnnualLeave) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.annual = append(m.annual, l)
}

func (m *Memory) AddOfficeHoliday(h workload.OfficeHoliday) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays = append(m.holidays, h)
}

func (m *Memory) AddOtherLeave(l workload.OtherLeave) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.other = append(m.other, l)
}

// fail records the call and returns the injected error. Caller holds the lock.
func (m *Memory) fail(c workload.Category) error {
	m.Calls[c]++
	return m.Fail[c]
}

// =============================================================================
// SOURCE (workload.Source)
// =============================================================================

func (m *Memory) ListAllocations(_ context.Context, companyID string, memberIDs, weekKeys []string) ([]workload.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(workload.CategoryAllocations); err != nil {
		return nil, err
	}

	var result []workload.Allocation
	for _, a := range m.allocations {
		if a.CompanyID == companyID && slices.Contains(memberIDs, a.MemberID) && slices.Contains(weekKeys, a.WeekKey) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *Memory) ListAnnualLeave(_ context.Context, companyID string, memberIDs []string, from, to generic.TimePoint) ([]workload.AnnualLeave, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(workload.CategoryAnnualLeave); err != nil {
		return nil, err
	}

	span := generic.Period{Start: from, End: to}
	var result []workload.AnnualLeave
	for _, l := range m.annual {
		if l.CompanyID == companyID && slices.Contains(memberIDs, l.MemberID) && span.Contains(l.Date) {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *Memory) ListOfficeHolidays(_ context.Context, companyID string, from, to generic.TimePoint) ([]workload.OfficeHoliday, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(workload.CategoryOfficeHolidays); err != nil {
		return nil, err
	}

	span := generic.Period{Start: from, End: to}
	var result []workload.OfficeHoliday
	for _, h := range m.holidays {
		if h.CompanyID == companyID && span.Contains(h.Date) {
			result = append(result, h)
		}
	}
	return result, nil
}

func (m *Memory) ListOtherLeave(_ context.Context, companyID string, memberIDs, weekKeys []string) ([]workload.OtherLeave, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(workload.CategoryOtherLeave); err != nil {
		return nil, err
	}

	var result []workload.OtherLeave
	for _, l := range m.other {
		if l.CompanyID == companyID && slices.Contains(memberIDs, l.MemberID) && slices.Contains(weekKeys, l.WeekKey) {
			result = append(result, l)
		}
	}
	return result, nil
}

// =============================================================================
// DIRECTORY (workload.Directory)
// =============================================================================

func (m *Memory) GetCompanySettings(_ context.Context, companyID string) (*workload.CompanySettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[companyID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) ListTeamMembers(_ context.Context, companyID string, memberIDs []string) ([]workload.TeamMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []workload.TeamMember
	for _, tm := range m.members[companyID] {
		if len(memberIDs) == 0 || slices.Contains(memberIDs, tm.ID) {
			result = append(result, tm)
		}
	}
	return result, nil
}

func (m *Memory) ListCompanies(_ context.Context) ([]workload.CompanySettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]workload.CompanySettings, 0, len(m.companies))
	for _, c := range m.companies {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CompanyID < result[j].CompanyID })
	return result, nil
}

// =============================================================================
// CLEANER (workload.Cleaner)
// =============================================================================

func (m *Memory) ListCompanyAllocations(_ context.Context, companyID string) ([]workload.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []workload.Allocation
	for _, a := range m.allocations {
		if a.CompanyID == companyID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *Memory) DeleteAllocations(_ context.Context, companyID string, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.allocations)
	m.allocations = slices.DeleteFunc(m.allocations, func(a workload.Allocation) bool {
		return a.CompanyID == companyID && slices.Contains(ids, a.ID)
	})
	return before - len(m.allocations), nil
}
