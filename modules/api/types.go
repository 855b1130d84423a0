package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/amichai1/task-manager-app/modules/task"
)

// MsgInvalidDueDate is returned when dueDate is not a date.
const MsgInvalidDueDate = "Please provide a valid due date"

var errInvalidDate = errors.New("invalid date")

// dateLayouts are the accepted dueDate formats.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// optionalDate records whether dueDate was present in the body and whether
// it was null.
type optionalDate struct {
	Set   bool
	Value *time.Time
}

func (d *optionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	d.Value = nil
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errInvalidDate
	}
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Value = &t
			return nil
		}
	}
	return errInvalidDate
}

// SuccessResponse wraps successful payloads.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Pagination describes one page of a list.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// TaskListResponse is the body of GET /api/tasks.
type TaskListResponse struct {
	Success    bool                `json:"success"`
	Count      int                 `json:"count"`
	Data       []task.TaskResponse `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// RegisterBody is the body of POST /api/users/register.
type RegisterBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginBody is the body of POST /api/users/login.
type LoginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskBody is the body of POST /api/tasks.
type CreateTaskBody struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    string       `json:"priority"`
	DueDate     optionalDate `json:"dueDate"`
	Tags        []string     `json:"tags"`
}

// UpdateTaskBody is the body of PUT /api/tasks/:id. Absent fields are left
// unchanged; a null dueDate clears it.
type UpdateTaskBody struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Completed   *bool        `json:"completed"`
	Priority    *string      `json:"priority"`
	DueDate     optionalDate `json:"dueDate"`
	Tags        *[]string    `json:"tags"`
}

func (b UpdateTaskBody) toRequest(ownerID, taskID string) task.UpdateTaskRequest {
	req := task.UpdateTaskRequest{
		OwnerID:     ownerID,
		TaskID:      taskID,
		Title:       b.Title,
		Description: b.Description,
		Completed:   b.Completed,
		Priority:    b.Priority,
		Tags:        b.Tags,
	}
	if b.DueDate.Set {
		if b.DueDate.Value == nil {
			req.ClearDueDate = true
		} else {
			req.DueDate = b.DueDate.Value
		}
	}
	return req
}
