package api

import (
	"context"
	"time"

	"github.com/amichai1/task-manager-app/config"
	"github.com/amichai1/task-manager-app/domain/apperr"
	"github.com/amichai1/task-manager-app/modules/activity"
	"github.com/amichai1/task-manager-app/modules/auth"
	"github.com/amichai1/task-manager-app/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the HTTP handlers.
type Handlers struct {
	cfg      *config.Config
	auth     auth.AuthPort
	tasks    task.TaskPort
	activity activity.ActivityPort
	health   func(ctx context.Context) map[string]mono.HealthStatus
	now      func() time.Time
}

// availableRoutes is reported with 404 responses.
var availableRoutes = []string{"/api/users", "/api/tasks", "/api/health"}

// Register handles POST /api/users/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var body RegisterBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	resp, err := h.auth.Register(c.UserContext(), auth.RegisterRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(SuccessResponse{Success: true, Data: resp})
}

// Login handles POST /api/users/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var body LoginBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	resp, err := h.auth.Login(c.UserContext(), auth.LoginRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(SuccessResponse{Success: true, Data: resp})
}

// Profile handles GET /api/users/profile.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	return c.JSON(SuccessResponse{Success: true, Data: currentUser(c)})
}

// Activity handles GET /api/users/activity.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	entries, err := h.activity.Recent(c.UserContext(), currentUser(c).ID, limit)
	if err != nil {
		return err
	}
	count := len(entries)
	return c.JSON(SuccessResponse{Success: true, Count: &count, Data: entries})
}

// notImplemented answers a route that exists without behavior.
func notImplemented(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return apperr.NotImplemented(feature + " not implemented yet")
	}
}

// Health handles GET /api/health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	modules := map[string]mono.HealthStatus{}
	if h.health != nil {
		modules = h.health(c.UserContext())
	}

	status := "OK"
	for _, m := range modules {
		if !m.Healthy {
			status = "DEGRADED"
			break
		}
	}

	return c.JSON(fiber.Map{
		"status":      status,
		"message":     "Task Manager API is running",
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"environment": h.cfg.Env,
		"version":     h.cfg.Version,
		"modules":     modules,
	})
}

// Info handles GET /api.
func (h *Handlers) Info(c *fiber.Ctx) error {
	info := fiber.Map{
		"name":        "Task Manager API",
		"version":     h.cfg.Version,
		"description": "RESTful API for task management",
		"endpoints": fiber.Map{
			"auth": fiber.Map{
				"register": "POST /api/users/register",
				"login":    "POST /api/users/login",
				"profile":  "GET /api/users/profile",
				"activity": "GET /api/users/activity",
			},
			"tasks": fiber.Map{
				"list":   "GET /api/tasks",
				"get":    "GET /api/tasks/:id",
				"create": "POST /api/tasks",
				"update": "PUT /api/tasks/:id",
				"toggle": "PATCH /api/tasks/:id/toggle",
				"delete": "DELETE /api/tasks/:id",
				"stats":  "GET /api/tasks/stats",
			},
		},
	}
	if user := currentUser(c); user != nil {
		info["user"] = fiber.Map{"id": user.ID, "name": user.Name}
	}
	return c.JSON(info)
}

// RouteNotFound answers every unmatched route.
func (h *Handlers) RouteNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success":         false,
		"message":         "Route not found",
		"path":            c.OriginalURL(),
		"availableRoutes": availableRoutes,
	})
}
