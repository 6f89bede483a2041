package views

import (
	"testing"

	"github.com/MarcoPoloResearchLab/studyhub/internal/plans"
)

func planIDs(items []plans.Plan) []string {
	ids := make([]string, 0, len(items))
	for _, plan := range items {
		ids = append(ids, plan.ID)
	}
	return ids
}

func assertIDs(t *testing.T, got []plans.Plan, expected ...string) {
	t.Helper()
	ids := planIDs(got)
	if len(ids) != len(expected) {
		t.Fatalf("got %v, want %v", ids, expected)
	}
	for index := range ids {
		if ids[index] != expected[index] {
			t.Fatalf("got %v, want %v", ids, expected)
		}
	}
}

func TestFilterAndSortPlansOrdersByDeadline(t *testing.T) {
	inputs := [][]plans.Plan{
		{{ID: "none"}, {ID: "2024", Deadline: "2024-01-01"}, {ID: "2023", Deadline: "2023-06-01"}},
		{{ID: "2023", Deadline: "2023-06-01"}, {ID: "none"}, {ID: "2024", Deadline: "2024-01-01"}},
		{{ID: "2024", Deadline: "2024-01-01"}, {ID: "2023", Deadline: "2023-06-01"}, {ID: "none"}},
	}
	for _, input := range inputs {
		assertIDs(t, FilterAndSortPlans(input, PlanFilter{}), "2023", "2024", "none")
	}
}

func TestFilterAndSortPlansTieBreakers(t *testing.T) {
	items := []plans.Plan{
		{ID: "done", Title: "Alpha", Deadline: "2024-03-01", Completed: true},
		{ID: "zeta", Title: "zeta", Deadline: "2024-03-01"},
		{ID: "beta", Title: "Beta", Deadline: "2024-03-01"},
		{ID: "garbage", Title: "Aardvark", Deadline: "someday"},
		{ID: "open", Title: "Open", Deadline: "2024-03-01T08:00:00Z"},
	}
	assertIDs(t, FilterAndSortPlans(items, PlanFilter{}), "beta", "zeta", "done", "open", "garbage")
}

func TestFilterAndSortPlansFilters(t *testing.T) {
	items := []plans.Plan{
		{ID: "a", Title: "A", Subject: "General", Priority: plans.PriorityHigh},
		{ID: "b", Title: "B", Subject: "Math", Priority: plans.PriorityLow, Completed: true},
		{ID: "c", Title: "C", Subject: "math", Priority: plans.PriorityHigh},
		{ID: "d", Title: "D", Subject: "", Priority: plans.PriorityMedium},
	}
	testCases := []struct {
		name     string
		filter   PlanFilter
		expected []string
	}{
		{name: "all", filter: PlanFilter{Subject: "all", Priority: "all", Status: "all"}, expected: []string{"a", "c", "d", "b"}},
		{name: "subject ignores case", filter: PlanFilter{Subject: "MATH"}, expected: []string{"c", "b"}},
		{name: "blank subject means general", filter: PlanFilter{Subject: "general"}, expected: []string{"a", "d"}},
		{name: "priority", filter: PlanFilter{Priority: "high"}, expected: []string{"a", "c"}},
		{name: "active", filter: PlanFilter{Status: StatusActive}, expected: []string{"a", "c", "d"}},
		{name: "completed", filter: PlanFilter{Status: StatusCompleted}, expected: []string{"b"}},
		{name: "conjunction", filter: PlanFilter{Subject: "math", Priority: "high", Status: StatusActive}, expected: []string{"c"}},
		{name: "no match", filter: PlanFilter{Subject: "Art"}, expected: []string{}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assertIDs(t, FilterAndSortPlans(items, testCase.filter), testCase.expected...)
		})
	}
}
