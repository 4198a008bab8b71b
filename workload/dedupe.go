package workload

import (
	"sort"
)

// allocationKey identifies one logical allocation slot.
type allocationKey struct {
	CompanyID string
	MemberID  string
	ProjectID string
	WeekKey   string
}

// FindDuplicateAllocations groups rows by (company, member, project, week),
// keeps the newest row of each group and returns the rest, sorted by id.
// Newest means latest UpdatedAt, then latest CreatedAt, then largest ID.
func FindDuplicateAllocations(rows []Allocation) (duplicates []Allocation, groups int) {
	byKey := make(map[allocationKey][]Allocation)
	for _, a := range rows {
		k := allocationKey{CompanyID: a.CompanyID, MemberID: a.MemberID, ProjectID: a.ProjectID, WeekKey: a.WeekKey}
		byKey[k] = append(byKey[k], a)
	}

	for _, group := range byKey {
		if len(group) < 2 {
			continue
		}
		groups++
		sort.Slice(group, func(i, j int) bool { return newer(group[i], group[j]) })
		duplicates = append(duplicates, group[1:]...)
	}

	sort.Slice(duplicates, func(i, j int) bool { return duplicates[i].ID < duplicates[j].ID })
	return duplicates, groups
}

func newer(a, b Allocation) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// IDs returns the ids of rows in order.
func IDs(rows []Allocation) []string {
	ids := make([]string, len(rows))
	for i, a := range rows {
		ids[i] = a.ID
	}
	return ids
}
