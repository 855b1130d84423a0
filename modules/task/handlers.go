package task

import (
	"context"
	"log"

	"github.com/amichai1/task-manager-app/domain/apperr"
	domain "github.com/amichai1/task-manager-app/domain/task"
	"github.com/amichai1/task-manager-app/events"
	"github.com/go-monolith/mono"
)

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	page, err := m.service.List(ctx, req.OwnerID, Query{
		Page:      req.Page,
		Limit:     req.Limit,
		Completed: req.Completed,
		Priority:  req.Priority,
		Search:    req.Search,
	})
	if err != nil {
		return ListTasksResponse{Failure: apperr.From(err)}, nil
	}

	now := m.service.now()
	resp := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(page.Tasks)),
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
		Pages: page.Pages,
	}
	for i := range page.Tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(&page.Tasks[i], now))
	}
	return resp, nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskReply, error) {
	task, err := m.service.Get(ctx, req.OwnerID, req.TaskID)
	if err != nil {
		return TaskReply{Failure: apperr.From(err)}, nil
	}
	return m.reply(task), nil
}

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	task, err := m.service.Create(ctx, req.OwnerID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		return TaskReply{Failure: apperr.From(err)}, nil
	}

	m.publish(func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			TaskID:    task.ID,
			UserID:    task.UserID,
			Title:     task.Title,
			Priority:  string(task.Priority),
			CreatedAt: task.CreatedAt,
		}, nil)
	}, "TaskCreated", task.ID)

	return m.reply(task), nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	change, err := m.service.Update(ctx, req.OwnerID, req.TaskID, Patch{
		Title:        req.Title,
		Description:  req.Description,
		Completed:    req.Completed,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Tags:         req.Tags,
	})
	if err != nil {
		return TaskReply{Failure: apperr.From(err)}, nil
	}

	m.publishChange(change)
	return m.reply(change.Task), nil
}

// toggleTask handles the toggle-task service request.
func (m *TaskModule) toggleTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskReply, error) {
	change, err := m.service.Toggle(ctx, req.OwnerID, req.TaskID)
	if err != nil {
		return TaskReply{Failure: apperr.From(err)}, nil
	}

	m.publishChange(change)
	return m.reply(change.Task), nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	task, err := m.service.Delete(ctx, req.OwnerID, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{Failure: apperr.From(err)}, nil
	}

	m.publish(func(bus mono.EventBus) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			TaskID:    task.ID,
			UserID:    task.UserID,
			DeletedAt: m.service.now(),
		}, nil)
	}, "TaskDeleted", task.ID)

	return DeleteTaskResponse{Deleted: true}, nil
}

// taskStats handles the task-stats service request.
func (m *TaskModule) taskStats(ctx context.Context, req StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	stats, cached, err := m.service.Stats(ctx, req.OwnerID)
	if err != nil {
		return StatsResponse{Failure: apperr.From(err)}, nil
	}
	return StatsResponse{Stats: stats, Cached: cached}, nil
}

func (m *TaskModule) reply(task *domain.Task) TaskReply {
	resp := toTaskResponse(task, m.service.now())
	return TaskReply{Task: &resp}
}

// publishChange emits TaskUpdated and, on a completion transition,
// TaskCompleted or TaskReopened.
func (m *TaskModule) publishChange(change *Change) {
	task := change.Task

	m.publish(func(bus mono.EventBus) error {
		return events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{
			TaskID:    task.ID,
			UserID:    task.UserID,
			Fields:    change.Fields,
			UpdatedAt: task.UpdatedAt,
		}, nil)
	}, "TaskUpdated", task.ID)

	switch {
	case change.Completed():
		m.publish(func(bus mono.EventBus) error {
			return events.TaskCompletedV1.Publish(bus, events.TaskCompletedEvent{
				TaskID:      task.ID,
				UserID:      task.UserID,
				CompletedAt: *task.CompletedAt,
			}, nil)
		}, "TaskCompleted", task.ID)
	case change.Reopened():
		m.publish(func(bus mono.EventBus) error {
			return events.TaskReopenedV1.Publish(bus, events.TaskReopenedEvent{
				TaskID:     task.ID,
				UserID:     task.UserID,
				ReopenedAt: task.UpdatedAt,
			}, nil)
		}, "TaskReopened", task.ID)
	}
}

// publish emits an event best-effort; failures are logged and never fail the request.
func (m *TaskModule) publish(emit func(mono.EventBus) error, name, taskID string) {
	if m.eventBus == nil {
		return
	}
	if err := emit(m.eventBus); err != nil {
		log.Printf("[task] Warning: failed to publish %s event for task %s: %v", name, taskID, err)
	}
}
