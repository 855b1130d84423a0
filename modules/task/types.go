package task

import (
	"context"
	"time"

	"github.com/amichai1/task-manager-app/domain/apperr"
	domain "github.com/amichai1/task-manager-app/domain/task"
)

// Service names registered by the task module.
const (
	ServiceListTasks  = "list-tasks"
	ServiceGetTask    = "get-task"
	ServiceCreateTask = "create-task"
	ServiceUpdateTask = "update-task"
	ServiceToggleTask = "toggle-task"
	ServiceDeleteTask = "delete-task"
	ServiceTaskStats  = "task-stats"
)

// ListTasksRequest is the request for listing an owner's tasks.
type ListTasksRequest struct {
	OwnerID   string `json:"owner_id"`
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Completed *bool  `json:"completed,omitempty"`
	Priority  string `json:"priority,omitempty"`
	Search    string `json:"search,omitempty"`
}

// ListTasksResponse is one page of tasks.
type ListTasksResponse struct {
	Tasks   []TaskResponse `json:"tasks"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Total   int64          `json:"total"`
	Pages   int            `json:"pages"`
	Failure *apperr.Error  `json:"failure,omitempty"`
}

// TaskRequest addresses a single task on behalf of its owner.
type TaskRequest struct {
	OwnerID string `json:"owner_id"`
	TaskID  string `json:"task_id"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// UpdateTaskRequest is a partial update; nil fields are left unchanged.
// ClearDueDate removes the due date and wins over DueDate.
type UpdateTaskRequest struct {
	OwnerID      string     `json:"owner_id"`
	TaskID       string     `json:"task_id"`
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
	Tags         *[]string  `json:"tags,omitempty"`
}

// TaskResponse is a task as returned to clients.
type TaskResponse struct {
	domain.Task
	IsOverdue bool `json:"isOverdue"`
}

// TaskReply wraps a single task or the reason it could not be returned.
type TaskReply struct {
	Task    *TaskResponse `json:"task,omitempty"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// StatsRequest is the request for an owner's task statistics.
type StatsRequest struct {
	OwnerID string `json:"owner_id"`
}

// StatsResponse carries aggregate counts.
type StatsResponse struct {
	Stats   *domain.Stats `json:"stats,omitempty"`
	Cached  bool          `json:"cached"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// TaskPort defines the task operations available to driving adapters
// such as the HTTP API.
type TaskPort interface {
	ListTasks(ctx context.Context, req ListTasksRequest) (*ListTasksResponse, error)
	GetTask(ctx context.Context, ownerID, taskID string) (*TaskResponse, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*TaskResponse, error)
	ToggleTask(ctx context.Context, ownerID, taskID string) (*TaskResponse, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
	Stats(ctx context.Context, ownerID string) (*domain.Stats, error)
}

func toTaskResponse(task *domain.Task, now time.Time) TaskResponse {
	return TaskResponse{
		Task:      *task,
		IsOverdue: task.IsOverdue(now),
	}
}
