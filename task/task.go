// Package task defines the domain model shared by the API client, the
// in-memory cache, and the CLI front-end.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies what area of life a task belongs to.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryUrgent   Category = "urgent"
	CategoryOther    Category = "other"
)

// Categories lists all valid categories in display order.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryShopping,
	CategoryHealth,
	CategoryLearning,
	CategoryUrgent,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes s to a known category. Unknown or empty values
// fall back to CategoryOther, matching the server's behavior on create.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists all valid priorities from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority normalizes s to a known priority. Unknown or empty values
// fall back to PriorityMedium, matching the server's behavior on create.
func ParsePriority(s string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p
	}
	return PriorityMedium
}

// Task is a single to-do item as served by the API. IDs are server-assigned
// and unique within a fetched collection.
type Task struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
	DueDate     *Time    `json:"due_date,omitempty"`
	UserID      int      `json:"user_id,omitempty"`
	CreatedAt   Time     `json:"created_at"`
	CompletedAt *Time    `json:"completed_at,omitempty"`
}

// User is the profile returned by the auth endpoints.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt *Time  `json:"created_at,omitempty"`
}

// Statistics is the server-computed aggregate view of a user's tasks.
// It is always fetched fresh, never derived from the local cache.
type Statistics struct {
	Total          int              `json:"total"`
	Completed      int              `json:"completed"`
	Pending        int              `json:"pending"`
	CompletionRate float64          `json:"completion_rate"`
	CategoryStats  map[Category]int `json:"category_stats"`
	PriorityStats  map[Priority]int `json:"priority_stats"`
}

// Time wraps time.Time to tolerate the server's timestamp format.
// The backend emits naive ISO 8601 (no zone, microsecond precision); we
// accept that as UTC alongside RFC 3339, and always emit RFC 3339.
type Time struct {
	time.Time
}

// naiveLayout is Python's datetime.isoformat() output without a zone.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// NewTime returns a Time for t.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// UnmarshalJSON decodes RFC 3339 or zone-less ISO 8601 timestamps.
// null decodes to the zero Time.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON encodes the timestamp as RFC 3339, or null when zero.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}
