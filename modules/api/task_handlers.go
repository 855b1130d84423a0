package api

import (
	"strconv"

	"github.com/amichai1/task-manager-app/modules/task"
	"github.com/gofiber/fiber/v2"
)

// ListTasks handles GET /api/tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	req := task.ListTasksRequest{
		OwnerID:  currentUser(c).ID,
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", task.DefaultLimit),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	}
	if v := c.Query("completed"); v != "" {
		if completed, err := strconv.ParseBool(v); err == nil {
			req.Completed = &completed
		}
	}

	resp, err := h.tasks.ListTasks(c.UserContext(), req)
	if err != nil {
		return err
	}

	tasks := resp.Tasks
	if tasks == nil {
		tasks = []task.TaskResponse{}
	}
	return c.JSON(TaskListResponse{
		Success: true,
		Count:   len(tasks),
		Data:    tasks,
		Pagination: Pagination{
			Page:  resp.Page,
			Limit: resp.Limit,
			Total: resp.Total,
			Pages: resp.Pages,
		},
	})
}

// TaskStats handles GET /api/tasks/stats.
func (h *Handlers) TaskStats(c *fiber.Ctx) error {
	stats, err := h.tasks.Stats(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse{Success: true, Data: stats})
}

// GetTask handles GET /api/tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	t, err := h.tasks.GetTask(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse{Success: true, Data: t})
}

// CreateTask handles POST /api/tasks. The owner is always the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var body CreateTaskBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	t, err := h.tasks.CreateTask(c.UserContext(), task.CreateTaskRequest{
		OwnerID:     currentUser(c).ID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		DueDate:     body.DueDate.Value,
		Tags:        body.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(SuccessResponse{Success: true, Data: t})
}

// UpdateTask handles PUT /api/tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var body UpdateTaskBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), body.toRequest(currentUser(c).ID, c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse{Success: true, Data: t})
}

// ToggleTask handles PATCH /api/tasks/:id/toggle.
func (h *Handlers) ToggleTask(c *fiber.Ctx) error {
	t, err := h.tasks.ToggleTask(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse{Success: true, Data: t})
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.tasks.DeleteTask(c.UserContext(), currentUser(c).ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(SuccessResponse{Success: true, Message: "Task removed"})
}
