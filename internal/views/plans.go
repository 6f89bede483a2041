package views

import (
	"math"
	"sort"
	"strings"

	"github.com/MarcoPoloResearchLab/studyhub/internal/clock"
	"github.com/MarcoPoloResearchLab/studyhub/internal/plans"
)

// FilterAll matches every value of a filter dimension.
const FilterAll = "all"

// Status filter values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// PlanFilter narrows the plan list. Empty fields and FilterAll match anything.
type PlanFilter struct {
	Subject  string `form:"subject" json:"subject"`
	Priority string `form:"priority" json:"priority"`
	Status   string `form:"status" json:"status"`
}

// FilterAndSortPlans returns the plans matching filter ordered by deadline,
// plans without a deadline last, then completed plans after open ones, then
// by title.
func FilterAndSortPlans(items []plans.Plan, filter PlanFilter) []plans.Plan {
	matched := make([]plans.Plan, 0, len(items))
	for _, plan := range items {
		if filter.matches(plan) {
			matched = append(matched, plan)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		left, right := matched[i], matched[j]
		leftDeadline, rightDeadline := deadlineKey(left), deadlineKey(right)
		if leftDeadline != rightDeadline {
			return leftDeadline < rightDeadline
		}
		if left.Completed != right.Completed {
			return !left.Completed
		}
		return strings.ToLower(left.Title) < strings.ToLower(right.Title)
	})
	return matched
}

func (f PlanFilter) matches(plan plans.Plan) bool {
	if !isAny(f.Subject) && !strings.EqualFold(plans.NormalizeSubject(f.Subject), plans.NormalizeSubject(plan.Subject)) {
		return false
	}
	if !isAny(f.Priority) && !strings.EqualFold(strings.TrimSpace(f.Priority), string(plan.Priority)) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case StatusActive:
		return !plan.Completed
	case StatusCompleted:
		return plan.Completed
	default:
		return true
	}
}

func isAny(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || strings.EqualFold(trimmed, FilterAll)
}

// deadlineKey orders missing or unreadable deadlines after every real one.
func deadlineKey(plan plans.Plan) int64 {
	if !plan.HasDeadline() {
		return math.MaxInt64
	}
	parsed, ok := clock.ParseISO(plan.Deadline)
	if !ok {
		return math.MaxInt64
	}
	return parsed.UnixMilli()
}
