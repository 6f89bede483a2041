package plans

import "strings"

// Priority ranks a plan.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	// DefaultTitle replaces a blank plan title at save time.
	DefaultTitle = "Untitled plan"
	// DefaultSubject replaces a blank plan subject at save time.
	DefaultSubject = "General"
)

// ParsePriority maps raw to a Priority, reporting false for unknown values.
func ParsePriority(raw string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	default:
		return "", false
	}
}

// NormalizePriority maps unknown values to PriorityMedium.
func NormalizePriority(raw string) Priority {
	if priority, ok := ParsePriority(raw); ok {
		return priority
	}
	return PriorityMedium
}

// Plan is a persisted task with an optional deadline.
type Plan struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Deadline    string   `json:"deadline"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
}

// EntityID returns the plan identifier.
func (p Plan) EntityID() string {
	return p.ID
}

// HasDeadline reports whether a deadline was set.
func (p Plan) HasDeadline() bool {
	return p.Deadline != ""
}

// PlanInput is the form submitted on save. An empty ID creates a new plan. A
// nil Completed keeps the stored completion state.
type PlanInput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	Priority    string `json:"priority"`
	Completed   *bool  `json:"completed,omitempty"`
}

func (in PlanInput) toPlan(id string, completed bool) Plan {
	if in.Completed != nil {
		completed = *in.Completed
	}
	return Plan{
		ID:          id,
		Title:       defaultIfBlank(in.Title, DefaultTitle),
		Subject:     NormalizeSubject(in.Subject),
		Description: in.Description,
		Deadline:    strings.TrimSpace(in.Deadline),
		Priority:    NormalizePriority(in.Priority),
		Completed:   completed,
	}
}

// NormalizeSubject trims raw and maps blank to DefaultSubject.
func NormalizeSubject(raw string) string {
	return defaultIfBlank(raw, DefaultSubject)
}

func defaultIfBlank(raw, fallback string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
