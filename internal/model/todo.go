package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	DefaultPriority = PriorityMedium
)

func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("priority must be low, medium, or high, got %q", s)
	}
	return p, nil
}

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxCategoryLength    = 50
)

type Todo struct {
	ID          string     `json:"_id"`
	UserID      string     `json:"user,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Normalize trims free-text fields. An empty priority is left for
// Validate to reject.
func (t *Todo) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Category = strings.TrimSpace(t.Category)
}

// Validate reports every rule the todo violates. An empty result means the
// todo may be persisted.
func (t Todo) Validate() []string {
	var msgs []string
	switch {
	case strings.TrimSpace(t.Title) == "":
		msgs = append(msgs, "Please add a title")
	case utf8.RuneCountInString(t.Title) > MaxTitleLength:
		msgs = append(msgs, fmt.Sprintf("Title cannot be more than %d characters", MaxTitleLength))
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		msgs = append(msgs, fmt.Sprintf("Description cannot be more than %d characters", MaxDescriptionLength))
	}
	if utf8.RuneCountInString(t.Category) > MaxCategoryLength {
		msgs = append(msgs, fmt.Sprintf("Category cannot be more than %d characters", MaxCategoryLength))
	}
	if !t.Priority.IsValid() {
		msgs = append(msgs, "Priority must be low, medium, or high")
	}
	return msgs
}

const dateOnly = "2006-01-02"

// ParseDueDate accepts an RFC3339 timestamp or a bare YYYY-MM-DD date, the
// latter being what date inputs in the browser produce.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: expected RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// TodoFilter selects todos for a list query. Nil fields are not constrained.
type TodoFilter struct {
	Owner     string
	Completed *bool
	Priority  *Priority
	Category  *string
	Sort      SortSpec
}

func (f TodoFilter) Matches(t Todo) bool {
	if f.Owner != "" && t.UserID != f.Owner {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	return true
}
