package task

import (
	"time"
)

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities: high > medium > low > unknown.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task represents a unit of work owned by exactly one user.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	UserID      string     `gorm:"index;not null;type:text" json:"user"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:1000" json:"description"`
	Completed   bool       `gorm:"index;not null" json:"completed"`
	Priority    Priority   `gorm:"type:text;index;not null" json:"priority"`
	DueDate     *time.Time `gorm:"index" json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
	Tags        []string   `gorm:"serializer:json" json:"tags"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Task) TableName() string {
	return "tasks"
}

// IsOverdue reports whether the task has a due date before now and is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return now.After(*t.DueDate)
}

// SetCompleted updates the completion flag and keeps CompletedAt in step:
// it is stamped when a task becomes completed and cleared when reopened.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	if completed {
		if !t.Completed || t.CompletedAt == nil {
			stamp := now
			t.CompletedAt = &stamp
		}
	} else {
		t.CompletedAt = nil
	}
	t.Completed = completed
}

// ToggleComplete flips the completion flag.
func (t *Task) ToggleComplete(now time.Time) {
	t.SetCompleted(!t.Completed, now)
}

// Stats aggregates an owner's tasks.
type Stats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
	High      int64 `json:"high"`
	Medium    int64 `json:"medium"`
	Low       int64 `json:"low"`
	Overdue   int64 `json:"overdue"`
}
