package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amichai1/task-manager-app/domain/apperr"
	domain "github.com/amichai1/task-manager-app/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the service container.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskPort for the task module's ServiceContainer,
// as received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx, container, service, json.Marshal, json.Unmarshal, req, resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// ListTasks returns one page of the owner's tasks.
func (a *taskAdapter) ListTasks(ctx context.Context, req ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := call(ctx, a.container, ServiceListTasks, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return &resp, nil
}

func (a *taskAdapter) GetTask(ctx context.Context, ownerID, taskID string) (*TaskResponse, error) {
	return single(ctx, a, ServiceGetTask, &TaskRequest{OwnerID: ownerID, TaskID: taskID})
}

func (a *taskAdapter) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	return single(ctx, a, ServiceCreateTask, &req)
}

func (a *taskAdapter) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*TaskResponse, error) {
	return single(ctx, a, ServiceUpdateTask, &req)
}

func (a *taskAdapter) ToggleTask(ctx context.Context, ownerID, taskID string) (*TaskResponse, error) {
	return single(ctx, a, ServiceToggleTask, &TaskRequest{OwnerID: ownerID, TaskID: taskID})
}

// DeleteTask removes a task owned by ownerID.
func (a *taskAdapter) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	req := TaskRequest{OwnerID: ownerID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, ServiceDeleteTask, &req, &resp); err != nil {
		return err
	}
	if resp.Failure != nil {
		return resp.Failure
	}
	if !resp.Deleted {
		return apperr.Internal(fmt.Errorf("task not deleted: %s", taskID))
	}
	return nil
}

// Stats returns the owner's aggregate counts.
func (a *taskAdapter) Stats(ctx context.Context, ownerID string) (*domain.Stats, error) {
	req := StatsRequest{OwnerID: ownerID}
	var resp StatsResponse
	if err := call(ctx, a.container, ServiceTaskStats, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return resp.Stats, nil
}

func single[Req any](ctx context.Context, a *taskAdapter, service string, req *Req) (*TaskResponse, error) {
	var resp TaskReply
	if err := call(ctx, a.container, service, req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return resp.Task, nil
}
