package model

import (
	"fmt"
	"math"
	"strings"
)

// StatusFilter restricts the view by completion state
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

// Filters lists the status filters in display order
var Filters = []StatusFilter{FilterAll, FilterActive, FilterCompleted}

// Next cycles all -> active -> completed -> all
func (f StatusFilter) Next() StatusFilter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// EmptyMessage returns the headline and hint shown when nothing matches f
func (f StatusFilter) EmptyMessage() (string, string) {
	switch f {
	case FilterActive:
		return "No active tasks", "Try another filter"
	case FilterCompleted:
		return "No completed tasks", "Try another filter"
	default:
		return "Your list is empty", "Add your first task"
	}
}

// ParseStatusFilter parses a filter name
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return FilterAll, nil
	case "active", "open", "pending":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// SortMode selects the comparator used for the visible list
type SortMode string

const (
	SortCreated      SortMode = "created"
	SortPriority     SortMode = "priority"
	SortDueDate      SortMode = "dueDate"
	SortAlphabetical SortMode = "alphabetical"
)

// SortModes lists sort modes in display order
var SortModes = []SortMode{SortCreated, SortPriority, SortDueDate, SortAlphabetical}

// Next cycles through SortModes
func (m SortMode) Next() SortMode {
	for i, s := range SortModes {
		if s == m {
			return SortModes[(i+1)%len(SortModes)]
		}
	}
	return SortCreated
}

// ParseSortMode parses a sort mode name
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created", "":
		return SortCreated, nil
	case "priority", "pri", "p":
		return SortPriority, nil
	case "duedate", "due", "d":
		return SortDueDate, nil
	case "alphabetical", "alpha", "title", "a":
		return SortAlphabetical, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// ViewSettings controls which tasks are visible and in what order.
// It is never persisted.
type ViewSettings struct {
	StatusFilter  StatusFilter
	SearchQuery   string
	SortMode      SortMode
	ShowCompleted bool
}

// DefaultViewSettings returns all tasks, newest first, completed included
func DefaultViewSettings() ViewSettings {
	return ViewSettings{
		StatusFilter:  FilterAll,
		SortMode:      SortCreated,
		ShowCompleted: true,
	}
}

// EmptyState returns the headline and hint for a view with no visible tasks
func (vs ViewSettings) EmptyState() (string, string) {
	title, hint := vs.StatusFilter.EmptyMessage()
	if vs.SearchQuery != "" {
		hint = fmt.Sprintf("Nothing matches %q", vs.SearchQuery)
	}
	if vs.StatusFilter == FilterCompleted && !vs.ShowCompleted {
		hint = "Completed tasks are hidden"
	}
	return title, hint
}

// Stats are aggregate counts over the whole collection
type Stats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Completed    int `json:"completed"`
	HighPriority int `json:"highPriority"`
}

// CompletionRate returns the completed share as a rounded percentage
func (s Stats) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
}
