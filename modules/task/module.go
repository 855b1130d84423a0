package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/amichai1/task-manager-app/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// TaskModule provides task management services.
type TaskModule struct {
	db       *gorm.DB
	cache    StatsCache
	service  *TaskService
	eventBus mono.EventBus
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)

// Option configures a TaskModule.
type Option func(*TaskModule)

// WithStatsCache enables caching of per-owner statistics.
func WithStatsCache(cache StatsCache) Option {
	return func(m *TaskModule) {
		m.cache = cache
	}
}

// NewModule creates a new TaskModule backed by db.
func NewModule(db *gorm.DB, opts ...Option) *TaskModule {
	m := &TaskModule{db: db}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskReopenedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetTask, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceToggleTask, json.Unmarshal, json.Marshal, m.toggleTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceToggleTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceTaskStats, json.Unmarshal, json.Marshal, m.taskStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceTaskStats, err)
	}

	log.Printf("[task] Registered services: %s, %s, %s, %s, %s, %s, %s",
		ServiceListTasks, ServiceGetTask, ServiceCreateTask, ServiceUpdateTask,
		ServiceToggleTask, ServiceDeleteTask, ServiceTaskStats)
	return nil
}

// Start migrates the tasks table and wires the service.
func (m *TaskModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}

	repo := NewTaskRepository(m.db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	m.service = NewTaskService(repo, m.cache)

	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}
	log.Printf("[task] Module started (stats cache: %t)", m.cache != nil)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}

// Health reports whether the module has been started.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"stats_cache": m.cache != nil,
		},
	}
}
