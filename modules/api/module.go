// Package api exposes the auth, task and activity modules over HTTP.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amichai1/task-manager-app/config"
	"github.com/amichai1/task-manager-app/modules/activity"
	"github.com/amichai1/task-manager-app/modules/auth"
	"github.com/amichai1/task-manager-app/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	nanoid "github.com/jaevor/go-nanoid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BodyLimit is the largest accepted request body.
const BodyLimit = 10 * 1024 * 1024

// HealthChecker is a module whose status is reported by /api/health.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// APIModule is the HTTP API module.
type APIModule struct {
	cfg    *config.Config
	logger types.Logger
	app    *fiber.App

	authPort     auth.AuthPort
	taskPort     task.TaskPort
	activityPort activity.ActivityPort

	generalLimit fiber.Handler
	authLimit    fiber.Handler
	checkers     []HealthChecker
}

var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// Option configures an APIModule.
type Option func(*APIModule)

// WithRateLimits installs the general /api limiter and the stricter limiter
// for register and login.
func WithRateLimits(general, authAttempts fiber.Handler) Option {
	return func(m *APIModule) {
		m.generalLimit = general
		m.authLimit = authAttempts
	}
}

// WithHealthChecks adds modules to the /api/health report.
func WithHealthChecks(checkers ...HealthChecker) Option {
	return func(m *APIModule) {
		m.checkers = append(m.checkers, checkers...)
	}
}

// NewModule creates a new APIModule.
func NewModule(cfg *config.Config, moduleLogger types.Logger, opts ...Option) *APIModule {
	m := &APIModule{
		cfg:    cfg,
		logger: moduleLogger.WithModule("api"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	case "activity":
		m.activityPort = activity.NewActivityAdapter(container)
	}
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(_ context.Context) error {
	if m.authPort == nil || m.taskPort == nil || m.activityPort == nil {
		return fmt.Errorf("auth, task and activity dependencies must be set")
	}

	app, err := m.newApp()
	if err != nil {
		return err
	}
	m.app = app

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", addr, "environment", m.cfg.Env)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":        m.cfg.Port,
			"rate_limits": m.generalLimit != nil,
		},
	}
}

func (m *APIModule) newApp() (*fiber.App, error) {
	newID, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to create request id generator: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Task Manager API",
		DisableStartupMessage: true,
		BodyLimit:             BodyLimit,
		ErrorHandler:          m.errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: newID,
	}))
	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; " +
			"img-src 'self' data: https:; connect-src 'self'; font-src 'self'; object-src 'none'; " +
			"media-src 'self'; frame-src 'none'",
		CrossOriginEmbedderPolicy: "unsafe-none",
		HSTSMaxAge:                31536000,
		HSTSPreloadEnabled:        true,
	}))
	if m.cfg.IsDevelopment() {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${ip}\n",
		}))
	}
	app.Use(cors.New(corsConfig(m.cfg.CORS.AllowedOrigins)))
	app.Use(Sanitize())

	m.setupRoutes(app)
	return app, nil
}

func corsConfig(origins []string) cors.Config {
	allowOrigins := strings.Join(origins, ",")
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	return cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: allowOrigins != "*",
	}
}

func (m *APIModule) collectHealth(ctx context.Context) map[string]mono.HealthStatus {
	out := make(map[string]mono.HealthStatus, len(m.checkers)+1)
	out[m.Name()] = mono.HealthStatus{Healthy: true, Message: "operational"}
	for _, checker := range m.checkers {
		out[checker.Name()] = checker.Health(ctx)
	}
	return out
}

// setupRoutes configures all routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	h := &Handlers{
		cfg:      m.cfg,
		auth:     m.authPort,
		tasks:    m.taskPort,
		activity: m.activityPort,
		health:   m.collectHealth,
		now:      time.Now,
	}
	protect := Protect(m.authPort, m.logger)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	if m.generalLimit != nil {
		api.Use(m.generalLimit)
	}
	api.Get("/", OptionalAuth(m.authPort), h.Info)
	api.Get("/health", h.Health)

	authLimit := m.authLimit
	if authLimit == nil {
		authLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	users := api.Group("/users")
	users.Post("/register", authLimit, h.Register)
	users.Post("/login", authLimit, h.Login)
	users.Get("/profile", protect, h.Profile)
	users.Put("/profile", protect, notImplemented("Update User Profile"))
	users.Get("/activity", protect, h.Activity)
	users.Get("/admin/users", protect, notImplemented("Get All Users"))
	users.Delete("/admin/users/:id", protect, notImplemented("Delete User"))

	// protect is attached per route so unknown paths under /api/tasks reach
	// the 404 handler.
	tasks := api.Group("/tasks")
	tasks.Get("/", protect, h.ListTasks)
	tasks.Post("/", protect, h.CreateTask)
	tasks.Get("/stats", protect, h.TaskStats)
	tasks.Get("/:id", protect, h.GetTask)
	tasks.Put("/:id", protect, h.UpdateTask)
	tasks.Delete("/:id", protect, h.DeleteTask)
	tasks.Patch("/:id/toggle", protect, h.ToggleTask)

	app.Use(h.RouteNotFound)
}
