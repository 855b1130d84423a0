package task

import (
	"slices"
	"strings"
	"time"
)

// Filter selects a subset of an already fetched task list.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterOverdue   Filter = "overdue"
	FilterUpcoming  Filter = "upcoming"
)

// SortKey orders an already fetched task list.
type SortKey string

const (
	SortByCreated  SortKey = "created"
	SortByPriority SortKey = "priority"
	SortByDueDate  SortKey = "dueDate"
	SortByTitle    SortKey = "title"
)

// UpcomingWindow is how far ahead a due date counts as upcoming.
const UpcomingWindow = 7 * 24 * time.Hour

// FilterTasks returns the tasks matching filter. Unknown filters behave like FilterAll.
func FilterTasks(tasks []Task, filter Filter, now time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		if matches(&tasks[i], filter, now) {
			out = append(out, tasks[i])
		}
	}
	return out
}

func matches(t *Task, filter Filter, now time.Time) bool {
	switch filter {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	case FilterOverdue:
		return t.IsOverdue(now)
	case FilterUpcoming:
		return isUpcoming(t, now)
	default:
		return true
	}
}

func isUpcoming(t *Task, now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return !t.DueDate.Before(now) && !t.DueDate.After(now.Add(UpcomingWindow))
}

// SortTasks returns a sorted copy of tasks. The input slice is left untouched.
//
// created sorts newest first, priority sorts high to low, dueDate sorts
// soonest first with undated tasks last, and title sorts case-insensitively.
// Ties keep creation order, newest first.
func SortTasks(tasks []Task, key SortKey) []Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b Task) int {
		if c := compareBy(&a, &b, key); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func compareBy(a, b *Task, key SortKey) int {
	switch key {
	case SortByPriority:
		return b.Priority.Rank() - a.Priority.Rank()
	case SortByDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return 0
	}
}

// Apply filters then sorts, which is what a task list view does on every change.
func Apply(tasks []Task, filter Filter, key SortKey, now time.Time) []Task {
	return SortTasks(FilterTasks(tasks, filter, now), key)
}

// Summary holds dashboard counters derived from a fetched list.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	Upcoming  int `json:"upcoming"`
}

// Summarize counts tasks for a dashboard view.
func Summarize(tasks []Task, now time.Time) Summary {
	s := Summary{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		if t.Completed {
			s.Completed++
		} else {
			s.Pending++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
		if isUpcoming(t, now) {
			s.Upcoming++
		}
	}
	return s
}
