// Package cache holds the last-fetched task collection and statistics in
// memory and derives filtered views without re-fetching. Replacements are
// tagged with a monotonically increasing generation so a stale in-flight
// response can never overwrite newer state.
package cache

import (
	"strings"
	"sync"

	"github.com/c360studio/taskdeck/task"
)

// Status restricts a view by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status filter.
func (s Status) Valid() bool {
	switch s {
	case StatusAll, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// Filter is a view restriction over the cached collection. Status and
// Search compose into one predicate; an empty Search matches everything.
// Filters are transient view state and are never persisted.
type Filter struct {
	Status Status
	Search string
}

// matches evaluates the combined predicate against a single task.
func (f Filter) matches(t task.Task) bool {
	switch f.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// Cache is the in-memory mirror of server state. It is entirely replaced
// on every fetch; there is no merge or reconciliation logic, so it
// reflects server state only immediately after a fetch.
type Cache struct {
	mu sync.RWMutex

	issued       uint64
	tasksApplied uint64
	statsApplied uint64

	tasks []task.Task
	stats *task.Statistics
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{}
}

// NextGen issues the generation for a fetch about to start. Responses are
// applied in issue order: a replacement carrying an older generation than
// one already applied is discarded.
func (c *Cache) NextGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// ReplaceTasks destructively overwrites the task collection. It reports
// whether the replacement was applied; a stale generation is discarded.
func (c *Cache) ReplaceTasks(gen uint64, tasks []task.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.tasksApplied {
		return false
	}
	c.tasksApplied = gen
	c.tasks = make([]task.Task, len(tasks))
	copy(c.tasks, tasks)
	return true
}

// ReplaceStats overwrites the statistics snapshot, subject to the same
// staleness rule as ReplaceTasks. Task and statistics fetches are
// unordered relative to each other, so they track separate generations.
func (c *Cache) ReplaceStats(gen uint64, stats *task.Statistics) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.statsApplied {
		return false
	}
	c.statsApplied = gen
	c.stats = stats
	return true
}

// Task looks up a task by id. The collection is unordered by id, so this
// is a linear scan; fine at to-do-list scale.
func (c *Cache) Task(id int) (task.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Match returns the tasks satisfying the filter, preserving the original
// relative order.
func (c *Cache) Match(f Filter) []task.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]task.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// ByStatus returns the tasks matching a completion-state filter.
func (c *Cache) ByStatus(s Status) []task.Task {
	return c.Match(Filter{Status: s})
}

// Search returns the tasks whose title or description contains term,
// case-insensitively. An empty term returns everything.
func (c *Cache) Search(term string) []task.Task {
	return c.Match(Filter{Status: StatusAll, Search: term})
}

// Statistics returns the last-applied statistics snapshot, or nil before
// the first fetch.
func (c *Cache) Statistics() *task.Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Len returns the size of the cached collection.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// Invalidate discards all cached state and marks every generation issued
// so far as applied, so an in-flight fetch from before the invalidation
// cannot resurrect the discarded data.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasksApplied = c.issued
	c.statsApplied = c.issued
	c.tasks = nil
	c.stats = nil
}
